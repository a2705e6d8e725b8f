package dto

import (
	"time"

	"github.com/courseflow/courseflow-api/internal/models"
)

// TypeSummary counts completion state for one trackable item type.
type TypeSummary struct {
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Total     int `json:"total"`
}

// ProgressSummary is the derived per-type and overall completion view. It is
// recomputed on every read and never cached beyond a single request.
type ProgressSummary struct {
	Lessons TypeSummary `json:"lesson"`
	Quizzes TypeSummary `json:"quiz"`
	Overall TypeSummary `json:"overall"`
}

// RecordItemProgressRequest reports a learner's interaction with one lesson or
// quiz. Clients may re-send the same payload (e.g. video heartbeats); the
// engine upserts.
type RecordItemProgressRequest struct {
	ItemID         uint   `json:"item_id" validate:"required"`
	ItemType       string `json:"item_type" validate:"required,oneof=lesson quiz"`
	Completed      bool   `json:"completed"`
	ResumePosition int    `json:"resume_position" validate:"min=0"`
	Note           string `json:"note" validate:"max=4000"`
}

// CourseProgressView serializes the aggregate record. Started distinguishes a
// real record from the synthetic view returned before the first interaction.
type CourseProgressView struct {
	CourseID    uint       `json:"course_id"`
	Status      string     `json:"status"`
	Started     bool       `json:"started"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	ModifiedAt  *time.Time `json:"modified_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CurriculumItemView is a curriculum entry enriched with the learner's state.
type CurriculumItemView struct {
	ID             uint                   `json:"id"`
	Type           string                 `json:"type"`
	Title          string                 `json:"title"`
	SectionID      uint                   `json:"section_id"`
	SectionTitle   string                 `json:"section_title"`
	Attributes     map[string]interface{} `json:"attributes,omitempty"`
	Completed      bool                   `json:"completed"`
	CompletedAt    *time.Time             `json:"completed_at,omitempty"`
	ResumePosition int                    `json:"resume_position,omitempty"`
}

// CourseProgressResponse is the composed read view for one owner and course.
type CourseProgressResponse struct {
	Progress   CourseProgressView   `json:"progress"`
	Summary    ProgressSummary      `json:"summary"`
	Curriculum []CurriculumItemView `json:"curriculum"`
}

// ProgressItemResponse is returned after an item-level write, together with
// the re-derived aggregate state.
type ProgressItemResponse struct {
	Item     ProgressItemView   `json:"item"`
	Summary  ProgressSummary    `json:"summary"`
	Progress CourseProgressView `json:"progress"`
}

// ProgressItemView serializes one item-completion record.
type ProgressItemView struct {
	CourseID       uint       `json:"course_id"`
	ItemID         uint       `json:"item_id"`
	ItemType       string     `json:"item_type"`
	Completed      bool       `json:"completed"`
	StartedAt      time.Time  `json:"started_at"`
	ModifiedAt     time.Time  `json:"modified_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	ResumePosition int        `json:"resume_position,omitempty"`
	Note           string     `json:"note,omitempty"`
}

// NewCourseProgressView converts an aggregate record into its response shape.
func NewCourseProgressView(progress models.CourseProgress, started bool) CourseProgressView {
	view := CourseProgressView{
		CourseID:    progress.CourseID,
		Status:      progress.Status,
		Started:     started,
		CompletedAt: progress.CompletedAt,
	}
	if view.Status == "" {
		view.Status = models.ProgressStatusInProgress
	}
	if started {
		startedAt := progress.StartedAt
		modifiedAt := progress.ModifiedAt
		view.StartedAt = &startedAt
		view.ModifiedAt = &modifiedAt
	}
	return view
}

// NewProgressItemView converts an item record into its response shape.
func NewProgressItemView(item models.CourseProgressItem) ProgressItemView {
	return ProgressItemView{
		CourseID:       item.CourseID,
		ItemID:         item.ItemID,
		ItemType:       item.ItemType,
		Completed:      item.Completed,
		StartedAt:      item.StartedAt,
		ModifiedAt:     item.ModifiedAt,
		CompletedAt:    item.CompletedAt,
		ResumePosition: item.ResumePosition,
		Note:           item.Note,
	}
}
