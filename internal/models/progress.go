package models

import "time"

// Course-level progress states. The forward transition is automatic; reverting
// a completed course is an explicit administrative action, never done here.
const (
	ProgressStatusInProgress = "in_progress"
	ProgressStatusCompleted  = "completed"
)

// Trackable item types, mirroring the content node types they track.
const (
	ItemTypeLesson = NodeTypeLesson
	ItemTypeQuiz   = NodeTypeQuiz
)

// CourseProgress is the aggregate record for one (owner, course) pair. Exactly
// one exists per pair; the owner is either UserID or SessionID, never both.
type CourseProgress struct {
	ID          uint       `json:"id,omitempty"`
	UserID      uint       `json:"user_id,omitempty"`
	SessionID   string     `json:"session_id,omitempty"`
	CourseID    uint       `json:"course_id"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	ModifiedAt  time.Time  `json:"modified_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// IsCompleted reports whether the aggregate reached the terminal state.
func (p CourseProgress) IsCompleted() bool {
	return p.Status == ProgressStatusCompleted
}

// CourseProgressItem records one learner's state for a single lesson or quiz.
// Unique per (owner, course, item); repeated writes update in place.
type CourseProgressItem struct {
	ID             uint       `json:"id,omitempty"`
	UserID         uint       `json:"user_id,omitempty"`
	SessionID      string     `json:"session_id,omitempty"`
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
