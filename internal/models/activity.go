package models

import "time"

// Activity type recorded for the course-level aggregate. Item rows reuse the
// curriculum item type (lesson or quiz) as their activity type.
const ActivityTypeCourseProgress = "course_progress"

// Activity meta keys for auxiliary fields that are not first-class columns.
const (
	MetaKeyResumePosition = "resume_position"
	MetaKeyNote           = "note"
)

// Activity is the durable progress row for authenticated learners. The course
// aggregate is an activity row with ParentID 0; item rows parent to it.
// Uniqueness is the (ItemID, UserID, ActivityType, ParentID) tuple; writers
// probe before inserting so repeated reports never duplicate rows.
type Activity struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ItemID       uint       `gorm:"not null;uniqueIndex:idx_activity_key,priority:1" json:"item_id"`
	UserID       uint       `gorm:"not null;uniqueIndex:idx_activity_key,priority:2" json:"user_id"`
	ActivityType string     `gorm:"size:32;not null;uniqueIndex:idx_activity_key,priority:3" json:"activity_type"`
	ParentID     uint       `gorm:"not null;default:0;uniqueIndex:idx_activity_key,priority:4;index" json:"parent_id"`
	Status       string     `gorm:"size:32;not null;default:'in_progress'" json:"status"`
	Completed    bool       `gorm:"not null;default:false" json:"completed"`
	StartedAt    time.Time  `json:"started_at"`
	ModifiedAt   time.Time  `json:"modified_at"`
	CompletedAt  *time.Time `json:"completed_at"`
}

// ActivityMeta is a key/value side row for auxiliary activity fields such as
// resume position and freeform notes. Unique per (activity, key); updates
// target the existing row rather than inserting a second one.
type ActivityMeta struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ActivityID uint   `gorm:"not null;uniqueIndex:idx_activity_meta_key,priority:1" json:"activity_id"`
	MetaKey    string `gorm:"size:64;not null;uniqueIndex:idx_activity_meta_key,priority:2" json:"meta_key"`
	MetaValue  string `gorm:"type:text" json:"meta_value"`
}
