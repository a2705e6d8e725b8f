package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/courseflow/courseflow-api/internal/identity"
	"github.com/courseflow/courseflow-api/internal/models"
)

const defaultSessionTTL = 24 * time.Hour

// sessionStore is the ephemeral ProgressStore variant for anonymous visitors.
// Records are serialized JSON under keys scoped to one session handle, with a
// TTL refreshed on every write so state dies with the session. Nothing here is
// shared across sessions; isolation is purely the key structure.
type sessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore constructs the session-scoped progress store.
func NewSessionStore(client *redis.Client, ttl time.Duration) ProgressStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &sessionStore{client: client, ttl: ttl}
}

func (s *sessionStore) GetProgress(ctx context.Context, owner identity.Identity, courseID uint) (models.CourseProgress, bool, error) {
	payload, err := s.client.Get(ctx, s.progressKey(owner, courseID)).Result()
	if err == redis.Nil {
		return models.CourseProgress{}, false, nil
	}
	if err != nil {
		return models.CourseProgress{}, false, err
	}

	var progress models.CourseProgress
	if err := json.Unmarshal([]byte(payload), &progress); err != nil {
		return models.CourseProgress{}, false, err
	}
	return progress, true, nil
}

func (s *sessionStore) PutProgress(ctx context.Context, owner identity.Identity, progress models.CourseProgress) (models.CourseProgress, error) {
	progress.UserID = 0
	progress.SessionID = owner.Session()

	payload, err := json.Marshal(progress)
	if err != nil {
		return models.CourseProgress{}, err
	}
	if err := s.client.Set(ctx, s.progressKey(owner, progress.CourseID), payload, s.ttl).Err(); err != nil {
		return models.CourseProgress{}, err
	}
	s.refreshItems(ctx, owner, progress.CourseID)
	return progress, nil
}

func (s *sessionStore) GetItems(ctx context.Context, owner identity.Identity, courseID uint) ([]models.CourseProgressItem, error) {
	fields, err := s.client.HGetAll(ctx, s.itemsKey(owner, courseID)).Result()
	if err != nil {
		return nil, err
	}

	items := make([]models.CourseProgressItem, 0, len(fields))
	for _, payload := range fields {
		var item models.CourseProgressItem
		if err := json.Unmarshal([]byte(payload), &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	// Hash iteration order is unspecified; keep reads deterministic.
	sort.Slice(items, func(i, j int) bool { return items[i].ItemID < items[j].ItemID })
	return items, nil
}

func (s *sessionStore) GetItem(ctx context.Context, owner identity.Identity, courseID, itemID uint) (models.CourseProgressItem, bool, error) {
	payload, err := s.client.HGet(ctx, s.itemsKey(owner, courseID), s.itemField(itemID)).Result()
	if err == redis.Nil {
		return models.CourseProgressItem{}, false, nil
	}
	if err != nil {
		return models.CourseProgressItem{}, false, err
	}

	var item models.CourseProgressItem
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		return models.CourseProgressItem{}, false, err
	}
	return item, true, nil
}

func (s *sessionStore) PutItem(ctx context.Context, owner identity.Identity, item models.CourseProgressItem) (models.CourseProgressItem, error) {
	item.UserID = 0
	item.SessionID = owner.Session()

	payload, err := json.Marshal(item)
	if err != nil {
		return models.CourseProgressItem{}, err
	}

	key := s.itemsKey(owner, item.CourseID)
	if err := s.client.HSet(ctx, key, s.itemField(item.ItemID), payload).Err(); err != nil {
		return models.CourseProgressItem{}, err
	}
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		return models.CourseProgressItem{}, err
	}
	return item, nil
}

// refreshItems re-arms the item hash TTL alongside aggregate writes so both
// keys expire together.
func (s *sessionStore) refreshItems(ctx context.Context, owner identity.Identity, courseID uint) {
	s.client.Expire(ctx, s.itemsKey(owner, courseID), s.ttl)
}

func (s *sessionStore) progressKey(owner identity.Identity, courseID uint) string {
	return fmt.Sprintf("progress:session:%s:course:%d", owner.Session(), courseID)
}

func (s *sessionStore) itemsKey(owner identity.Identity, courseID uint) string {
	return fmt.Sprintf("progress:session:%s:course:%d:items", owner.Session(), courseID)
}

func (s *sessionStore) itemField(itemID uint) string {
	return fmt.Sprintf("%d", itemID)
}
