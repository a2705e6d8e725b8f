package models

import (
	"time"

	"gorm.io/datatypes"
)

// Content node types stored by the authoring side. Only lessons and quizzes
// carry completion state; sections group them and courses root the tree.
const (
	NodeTypeCourse  = "course"
	NodeTypeSection = "section"
	NodeTypeLesson  = "lesson"
	NodeTypeQuiz    = "quiz"
)

// ContentNode is one row of the course-authoring content tree. The progress
// engine reads these rows but never writes them.
type ContentNode struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ParentID   uint              `gorm:"index;not null;default:0" json:"parent_id"`
	Type       string            `gorm:"size:32;not null;index" json:"type"`
	Title      string            `gorm:"size:255;not null" json:"title"`
	MenuOrder  int               `gorm:"not null;default:0" json:"menu_order"`
	Published  bool              `gorm:"not null;default:false" json:"published"`
	Attributes datatypes.JSONMap `gorm:"type:json" json:"attributes"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// IsTrackable reports whether the node type can carry completion state.
func (n ContentNode) IsTrackable() bool {
	return n.Type == NodeTypeLesson || n.Type == NodeTypeQuiz
}

// CurriculumItem is a trackable node positioned in course order. It is derived
// from content nodes on demand and never persisted.
type CurriculumItem struct {
	ID           uint                   `json:"id"`
	Type         string                 `json:"type"`
	Title        string                 `json:"title"`
	SectionID    uint                   `json:"section_id"`
	SectionTitle string                 `json:"section_title"`
	SectionOrder int                    `json:"section_order"`
	ItemOrder    int                    `json:"item_order"`
	Attributes   map[string]interface{} `json:"attributes,omitempty"`
}
