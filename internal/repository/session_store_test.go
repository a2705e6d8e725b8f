package repository

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/courseflow/courseflow-api/internal/identity"
	"github.com/courseflow/courseflow-api/internal/models"
)

func setupSessionStore(t *testing.T) (*miniredis.Miniredis, ProgressStore) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewSessionStore(client, time.Hour)
}

func TestSessionStoreRoundTrip(t *testing.T) {
	_, store := setupSessionStore(t)
	owner := identity.Anonymous("visitor-a")
	now := time.Now().UTC().Truncate(time.Second)

	_, found, err := store.GetProgress(context.Background(), owner, 10)
	require.NoError(t, err)
	require.False(t, found)

	saved, err := store.PutProgress(context.Background(), owner, models.CourseProgress{
		CourseID: 10, Status: models.ProgressStatusInProgress, StartedAt: now, ModifiedAt: now,
	})
	require.NoError(t, err)
	require.Equal(t, "visitor-a", saved.SessionID)

	loaded, found, err := store.GetProgress(context.Background(), owner, 10)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, models.ProgressStatusInProgress, loaded.Status)
	require.True(t, loaded.StartedAt.Equal(now))
}

func TestSessionStoreItemsSortedByID(t *testing.T) {
	_, store := setupSessionStore(t)
	owner := identity.Anonymous("visitor-a")
	now := time.Now().UTC()

	for _, id := range []uint{303, 101, 202} {
		_, err := store.PutItem(context.Background(), owner, models.CourseProgressItem{
			CourseID: 10, ItemID: id, ItemType: models.ItemTypeLesson, StartedAt: now, ModifiedAt: now,
		})
		require.NoError(t, err)
	}

	items, err := store.GetItems(context.Background(), owner, 10)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, uint(101), items[0].ItemID)
	require.Equal(t, uint(202), items[1].ItemID)
	require.Equal(t, uint(303), items[2].ItemID)
}

func TestSessionStoreUpsertsByItemKey(t *testing.T) {
	_, store := setupSessionStore(t)
	owner := identity.Anonymous("visitor-a")
	now := time.Now().UTC()

	item := models.CourseProgressItem{CourseID: 10, ItemID: 101, ItemType: models.ItemTypeLesson, StartedAt: now, ModifiedAt: now}
	_, err := store.PutItem(context.Background(), owner, item)
	require.NoError(t, err)

	item.Completed = true
	_, err = store.PutItem(context.Background(), owner, item)
	require.NoError(t, err)

	items, err := store.GetItems(context.Background(), owner, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.True(t, items[0].Completed)
}

func TestSessionStoreExpiresWithSession(t *testing.T) {
	mr, store := setupSessionStore(t)
	owner := identity.Anonymous("visitor-a")
	now := time.Now().UTC()

	_, err := store.PutItem(context.Background(), owner, models.CourseProgressItem{
		CourseID: 10, ItemID: 101, ItemType: models.ItemTypeLesson, StartedAt: now, ModifiedAt: now,
	})
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	items, err := store.GetItems(context.Background(), owner, 10)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestSessionStoreIsolatesSessions(t *testing.T) {
	_, store := setupSessionStore(t)
	now := time.Now().UTC()

	_, err := store.PutItem(context.Background(), identity.Anonymous("visitor-a"), models.CourseProgressItem{
		CourseID: 10, ItemID: 101, ItemType: models.ItemTypeLesson, Completed: true, StartedAt: now, ModifiedAt: now,
	})
	require.NoError(t, err)

	items, err := store.GetItems(context.Background(), identity.Anonymous("visitor-b"), 10)
	require.NoError(t, err)
	require.Empty(t, items)
}
