package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/courseflow/courseflow-api/internal/identity"
	"github.com/courseflow/courseflow-api/internal/models"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestSaveItemStampsCompletedAtOnTransition(t *testing.T) {
	db := setupTestDB(t)
	store := NewActivityStore(db)
	owner := identity.Authenticated(42)

	repo := NewProgressItemRepository()
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo.now = fixedClock(first)

	saved, err := repo.SaveItem(context.Background(), store, owner, models.CourseProgressItem{
		CourseID: 10, ItemID: 101, ItemType: models.ItemTypeLesson,
	})
	require.NoError(t, err)
	require.False(t, saved.Completed)
	require.Nil(t, saved.CompletedAt)
	require.True(t, saved.StartedAt.Equal(first))

	second := first.Add(10 * time.Minute)
	repo.now = fixedClock(second)
	saved, err = repo.SaveItem(context.Background(), store, owner, models.CourseProgressItem{
		CourseID: 10, ItemID: 101, ItemType: models.ItemTypeLesson, Completed: true,
	})
	require.NoError(t, err)
	require.True(t, saved.Completed)
	require.NotNil(t, saved.CompletedAt)
	require.True(t, saved.CompletedAt.Equal(second))
	require.True(t, saved.StartedAt.Equal(first), "started-at must survive updates")
}

func TestSaveItemKeepsCompletedAtOnRepeat(t *testing.T) {
	db := setupTestDB(t)
	store := NewActivityStore(db)
	owner := identity.Authenticated(42)

	repo := NewProgressItemRepository()
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo.now = fixedClock(first)

	item := models.CourseProgressItem{CourseID: 10, ItemID: 101, ItemType: models.ItemTypeLesson, Completed: true}
	saved, err := repo.SaveItem(context.Background(), store, owner, item)
	require.NoError(t, err)
	require.NotNil(t, saved.CompletedAt)

	repo.now = fixedClock(first.Add(time.Hour))
	again, err := repo.SaveItem(context.Background(), store, owner, item)
	require.NoError(t, err)
	require.NotNil(t, again.CompletedAt)
	require.True(t, again.CompletedAt.Equal(*saved.CompletedAt), "re-reporting completion must not move the stamp")

	items, err := repo.LoadItems(context.Background(), store, owner, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestSaveItemClearsCompletedAtOnReopen(t *testing.T) {
	db := setupTestDB(t)
	store := NewActivityStore(db)
	owner := identity.Authenticated(42)

	repo := NewProgressItemRepository()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo.now = fixedClock(start)

	_, err := repo.SaveItem(context.Background(), store, owner, models.CourseProgressItem{
		CourseID: 10, ItemID: 101, ItemType: models.ItemTypeQuiz, Completed: true,
	})
	require.NoError(t, err)

	repo.now = fixedClock(start.Add(time.Hour))
	reopened, err := repo.SaveItem(context.Background(), store, owner, models.CourseProgressItem{
		CourseID: 10, ItemID: 101, ItemType: models.ItemTypeQuiz, Completed: false,
	})
	require.NoError(t, err)
	require.False(t, reopened.Completed)
	require.Nil(t, reopened.CompletedAt)
	require.True(t, reopened.StartedAt.Equal(start))
}

func TestAggregateSaveInitialisesLifecycle(t *testing.T) {
	db := setupTestDB(t)
	store := NewActivityStore(db)
	owner := identity.Authenticated(42)

	repo := NewProgressAggregateRepository()
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo.now = fixedClock(first)

	_, found, err := repo.Load(context.Background(), store, owner, 10)
	require.NoError(t, err)
	require.False(t, found)

	saved, err := repo.Save(context.Background(), store, owner, models.CourseProgress{CourseID: 10})
	require.NoError(t, err)
	require.Equal(t, models.ProgressStatusInProgress, saved.Status)
	require.True(t, saved.StartedAt.Equal(first))
	require.True(t, saved.ModifiedAt.Equal(first))

	second := first.Add(30 * time.Minute)
	repo.now = fixedClock(second)
	refreshed, err := repo.Save(context.Background(), store, owner, saved)
	require.NoError(t, err)
	require.True(t, refreshed.StartedAt.Equal(first), "started-at set once")
	require.True(t, refreshed.ModifiedAt.Equal(second), "modified-at refreshed on every save")
}
