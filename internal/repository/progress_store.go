package repository

import (
	"context"

	"github.com/courseflow/courseflow-api/internal/identity"
	"github.com/courseflow/courseflow-api/internal/models"
)

// ProgressStore is the contract both progress backends satisfy: durable
// activity rows for authenticated learners and session-scoped Redis state for
// anonymous visitors. Callers must not be able to tell the variants apart.
//
// All writes are upserts: PutProgress is keyed by (owner, course) and PutItem
// by (owner, course, item). Absence is reported through the boolean return,
// never as an error.
type ProgressStore interface {
	GetProgress(ctx context.Context, owner identity.Identity, courseID uint) (models.CourseProgress, bool, error)
	PutProgress(ctx context.Context, owner identity.Identity, progress models.CourseProgress) (models.CourseProgress, error)
	GetItems(ctx context.Context, owner identity.Identity, courseID uint) ([]models.CourseProgressItem, error)
	GetItem(ctx context.Context, owner identity.Identity, courseID, itemID uint) (models.CourseProgressItem, bool, error)
	PutItem(ctx context.Context, owner identity.Identity, item models.CourseProgressItem) (models.CourseProgressItem, error)
}
