package service

import (
	"time"

	"github.com/courseflow/courseflow-api/internal/dto"
	"github.com/courseflow/courseflow-api/internal/models"
)

// NextStatus decides the course-level status from a summary. It returns the
// updated aggregate and whether anything changed.
//
// The only automatic transition is in_progress → completed, taken when every
// trackable item is done and there is at least one. An already-completed
// course is returned untouched, so completed-at is written exactly once and a
// curriculum that grows afterwards does not silently strip the learner's
// completion. A course with nothing to complete never completes.
func NextStatus(progress models.CourseProgress, summary dto.ProgressSummary, now time.Time) (models.CourseProgress, bool) {
	if progress.IsCompleted() {
		return progress, false
	}
	if summary.Overall.Total == 0 || summary.Overall.Pending > 0 {
		return progress, false
	}

	completedAt := now.UTC()
	progress.Status = models.ProgressStatusCompleted
	progress.CompletedAt = &completedAt
	return progress, true
}
