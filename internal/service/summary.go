package service

import (
	"github.com/courseflow/courseflow-api/internal/dto"
	"github.com/courseflow/courseflow-api/internal/models"
)

// Summarize folds the curriculum and the owner's item records into per-type
// and overall completion counts. The curriculum is the denominator: records
// for items no longer in the curriculum are ignored. Pure; both storage
// variants must produce identical output through it.
func Summarize(curriculum []models.CurriculumItem, items []models.CourseProgressItem) dto.ProgressSummary {
	completed := make(map[uint]string, len(items))
	for _, item := range items {
		if item.Completed {
			completed[item.ItemID] = item.ItemType
		}
	}

	var summary dto.ProgressSummary
	for _, entry := range curriculum {
		counts := counterFor(&summary, entry.Type)
		if counts == nil {
			continue
		}
		counts.Total++
		if completed[entry.ID] == entry.Type {
			counts.Completed++
		}
	}

	summary.Lessons.Pending = summary.Lessons.Total - summary.Lessons.Completed
	summary.Quizzes.Pending = summary.Quizzes.Total - summary.Quizzes.Completed

	summary.Overall.Total = summary.Lessons.Total + summary.Quizzes.Total
	summary.Overall.Completed = summary.Lessons.Completed + summary.Quizzes.Completed
	summary.Overall.Pending = summary.Lessons.Pending + summary.Quizzes.Pending

	return summary
}

func counterFor(summary *dto.ProgressSummary, itemType string) *dto.TypeSummary {
	switch itemType {
	case models.ItemTypeLesson:
		return &summary.Lessons
	case models.ItemTypeQuiz:
		return &summary.Quizzes
	default:
		return nil
	}
}
