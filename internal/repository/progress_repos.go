package repository

import (
	"context"
	"time"

	"github.com/courseflow/courseflow-api/internal/identity"
	"github.com/courseflow/courseflow-api/internal/models"
)

// ProgressItemRepository applies the item-level timestamp rules on top of
// whichever ProgressStore the caller selected. It is storage-agnostic; the
// store is chosen per request by the progress service.
type ProgressItemRepository struct {
	now func() time.Time
}

// NewProgressItemRepository constructs the item repository.
func NewProgressItemRepository() *ProgressItemRepository {
	return &ProgressItemRepository{now: time.Now}
}

// LoadItems returns every item record for the owner and course.
func (r *ProgressItemRepository) LoadItems(ctx context.Context, store ProgressStore, owner identity.Identity, courseID uint) ([]models.CourseProgressItem, error) {
	return store.GetItems(ctx, owner, courseID)
}

// SaveItem upserts one item record. A false→true completion transition stamps
// completed-at; re-reporting true leaves the stamp untouched; reverting to
// false clears it. Started-at survives every update.
func (r *ProgressItemRepository) SaveItem(ctx context.Context, store ProgressStore, owner identity.Identity, item models.CourseProgressItem) (models.CourseProgressItem, error) {
	existing, found, err := store.GetItem(ctx, owner, item.CourseID, item.ItemID)
	if err != nil {
		return models.CourseProgressItem{}, err
	}

	now := r.now().UTC()
	if found {
		item.ID = existing.ID
		item.StartedAt = existing.StartedAt
		switch {
		case item.Completed && existing.Completed:
			item.CompletedAt = existing.CompletedAt
		case item.Completed:
			completedAt := now
			item.CompletedAt = &completedAt
		default:
			item.CompletedAt = nil
		}
	} else {
		item.StartedAt = now
		item.CompletedAt = nil
		if item.Completed {
			completedAt := now
			item.CompletedAt = &completedAt
		}
	}
	item.ModifiedAt = now

	return store.PutItem(ctx, owner, item)
}

// ProgressAggregateRepository manages the course-level record lifecycle:
// started-at on first save, modified-at on every save. It never decides
// status; that is the status engine's single-writer concern.
type ProgressAggregateRepository struct {
	now func() time.Time
}

// NewProgressAggregateRepository constructs the aggregate repository.
func NewProgressAggregateRepository() *ProgressAggregateRepository {
	return &ProgressAggregateRepository{now: time.Now}
}

// Load returns the aggregate for the owner and course, if one exists.
func (r *ProgressAggregateRepository) Load(ctx context.Context, store ProgressStore, owner identity.Identity, courseID uint) (models.CourseProgress, bool, error) {
	return store.GetProgress(ctx, owner, courseID)
}

// Save upserts the aggregate, initialising it on first write.
func (r *ProgressAggregateRepository) Save(ctx context.Context, store ProgressStore, owner identity.Identity, progress models.CourseProgress) (models.CourseProgress, error) {
	now := r.now().UTC()
	if progress.StartedAt.IsZero() {
		progress.StartedAt = now
	}
	if progress.Status == "" {
		progress.Status = models.ProgressStatusInProgress
	}
	progress.ModifiedAt = now

	return store.PutProgress(ctx, owner, progress)
}
