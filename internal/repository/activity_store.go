package repository

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/courseflow/courseflow-api/internal/identity"
	"github.com/courseflow/courseflow-api/internal/models"
)

// activityStore is the durable ProgressStore variant for authenticated
// learners. The aggregate is an activity row with ParentID 0 whose ItemID is
// the course id; item rows parent to it and use the curriculum item type as
// their activity type. Auxiliary fields live in the activity meta table.
type activityStore struct {
	db *gorm.DB
}

// NewActivityStore constructs the persistent progress store.
func NewActivityStore(db *gorm.DB) ProgressStore {
	return &activityStore{db: db}
}

func (s *activityStore) GetProgress(ctx context.Context, owner identity.Identity, courseID uint) (models.CourseProgress, bool, error) {
	row, found, err := s.aggregateRow(ctx, owner.UserID(), courseID)
	if err != nil || !found {
		return models.CourseProgress{}, false, err
	}
	return aggregateToProgress(row), true, nil
}

func (s *activityStore) PutProgress(ctx context.Context, owner identity.Identity, progress models.CourseProgress) (models.CourseProgress, error) {
	row, found, err := s.aggregateRow(ctx, owner.UserID(), progress.CourseID)
	if err != nil {
		return models.CourseProgress{}, err
	}

	if !found {
		row = models.Activity{
			ItemID:       progress.CourseID,
			UserID:       owner.UserID(),
			ActivityType: models.ActivityTypeCourseProgress,
			ParentID:     0,
		}
	}

	row.Status = progress.Status
	row.Completed = progress.IsCompleted()
	row.StartedAt = progress.StartedAt
	row.ModifiedAt = progress.ModifiedAt
	row.CompletedAt = progress.CompletedAt

	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return models.CourseProgress{}, err
	}
	return aggregateToProgress(row), nil
}

func (s *activityStore) GetItems(ctx context.Context, owner identity.Identity, courseID uint) ([]models.CourseProgressItem, error) {
	aggregate, found, err := s.aggregateRow(ctx, owner.UserID(), courseID)
	if err != nil {
		return nil, err
	}
	if !found {
		return []models.CourseProgressItem{}, nil
	}

	var rows []models.Activity
	if err := s.db.WithContext(ctx).
		Where("parent_id = ? AND user_id = ?", aggregate.ID, owner.UserID()).
		Order("item_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	metas, err := s.loadMetas(ctx, rows)
	if err != nil {
		return nil, err
	}

	items := make([]models.CourseProgressItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, itemRowToItem(row, courseID, metas[row.ID]))
	}
	return items, nil
}

func (s *activityStore) GetItem(ctx context.Context, owner identity.Identity, courseID, itemID uint) (models.CourseProgressItem, bool, error) {
	aggregate, found, err := s.aggregateRow(ctx, owner.UserID(), courseID)
	if err != nil || !found {
		return models.CourseProgressItem{}, false, err
	}

	var row models.Activity
	err = s.db.WithContext(ctx).
		Where("item_id = ? AND user_id = ? AND parent_id = ?", itemID, owner.UserID(), aggregate.ID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.CourseProgressItem{}, false, nil
	}
	if err != nil {
		return models.CourseProgressItem{}, false, err
	}

	metas, err := s.loadMetas(ctx, []models.Activity{row})
	if err != nil {
		return models.CourseProgressItem{}, false, err
	}
	return itemRowToItem(row, courseID, metas[row.ID]), true, nil
}

func (s *activityStore) PutItem(ctx context.Context, owner identity.Identity, item models.CourseProgressItem) (models.CourseProgressItem, error) {
	aggregate, err := s.ensureAggregateRow(ctx, owner.UserID(), item.CourseID, item)
	if err != nil {
		return models.CourseProgressItem{}, err
	}

	var row models.Activity
	err = s.db.WithContext(ctx).
		Where("item_id = ? AND user_id = ? AND activity_type = ? AND parent_id = ?",
			item.ItemID, owner.UserID(), item.ItemType, aggregate.ID).
		First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.Activity{
			ItemID:       item.ItemID,
			UserID:       owner.UserID(),
			ActivityType: item.ItemType,
			ParentID:     aggregate.ID,
		}
	case err != nil:
		return models.CourseProgressItem{}, err
	}

	row.Completed = item.Completed
	row.Status = models.ProgressStatusInProgress
	if item.Completed {
		row.Status = models.ProgressStatusCompleted
	}
	row.StartedAt = item.StartedAt
	row.ModifiedAt = item.ModifiedAt
	row.CompletedAt = item.CompletedAt

	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return models.CourseProgressItem{}, err
	}

	if err := s.upsertMeta(ctx, row.ID, models.MetaKeyResumePosition, strconv.Itoa(item.ResumePosition)); err != nil {
		return models.CourseProgressItem{}, err
	}
	if err := s.upsertMeta(ctx, row.ID, models.MetaKeyNote, item.Note); err != nil {
		return models.CourseProgressItem{}, err
	}

	saved := itemRowToItem(row, item.CourseID, map[string]string{
		models.MetaKeyResumePosition: strconv.Itoa(item.ResumePosition),
		models.MetaKeyNote:           item.Note,
	})
	return saved, nil
}

func (s *activityStore) aggregateRow(ctx context.Context, userID, courseID uint) (models.Activity, bool, error) {
	var row models.Activity
	err := s.db.WithContext(ctx).
		Where("item_id = ? AND user_id = ? AND activity_type = ? AND parent_id = 0",
			courseID, userID, models.ActivityTypeCourseProgress).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Activity{}, false, nil
	}
	if err != nil {
		return models.Activity{}, false, err
	}
	return row, true, nil
}

// ensureAggregateRow guarantees a parent row exists before an item row is
// written. Item writes can precede the aggregate save in the record flow.
func (s *activityStore) ensureAggregateRow(ctx context.Context, userID, courseID uint, item models.CourseProgressItem) (models.Activity, error) {
	row, found, err := s.aggregateRow(ctx, userID, courseID)
	if err != nil {
		return models.Activity{}, err
	}
	if found {
		return row, nil
	}

	row = models.Activity{
		ItemID:       courseID,
		UserID:       userID,
		ActivityType: models.ActivityTypeCourseProgress,
		ParentID:     0,
		Status:       models.ProgressStatusInProgress,
		StartedAt:    item.StartedAt,
		ModifiedAt:   item.ModifiedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.Activity{}, err
	}
	return row, nil
}

// upsertMeta updates the existing meta row for (activity, key) or inserts one.
// Empty values are only written when a row already exists, so clearing a note
// does not litter the table.
func (s *activityStore) upsertMeta(ctx context.Context, activityID uint, key, value string) error {
	var meta models.ActivityMeta
	err := s.db.WithContext(ctx).
		Where("activity_id = ? AND meta_key = ?", activityID, key).
		First(&meta).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if value == "" {
			return nil
		}
		meta = models.ActivityMeta{ActivityID: activityID, MetaKey: key, MetaValue: value}
		return s.db.WithContext(ctx).Create(&meta).Error
	case err != nil:
		return err
	}

	meta.MetaValue = value
	return s.db.WithContext(ctx).Save(&meta).Error
}

func (s *activityStore) loadMetas(ctx context.Context, rows []models.Activity) (map[uint]map[string]string, error) {
	result := make(map[uint]map[string]string, len(rows))
	if len(rows) == 0 {
		return result, nil
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var metas []models.ActivityMeta
	if err := s.db.WithContext(ctx).Where("activity_id IN ?", ids).Find(&metas).Error; err != nil {
		return nil, err
	}

	for _, meta := range metas {
		if result[meta.ActivityID] == nil {
			result[meta.ActivityID] = make(map[string]string)
		}
		result[meta.ActivityID][meta.MetaKey] = meta.MetaValue
	}
	return result, nil
}

func aggregateToProgress(row models.Activity) models.CourseProgress {
	return models.CourseProgress{
		ID:          row.ID,
		UserID:      row.UserID,
		CourseID:    row.ItemID,
		Status:      row.Status,
		StartedAt:   row.StartedAt,
		ModifiedAt:  row.ModifiedAt,
		CompletedAt: row.CompletedAt,
	}
}

func itemRowToItem(row models.Activity, courseID uint, metas map[string]string) models.CourseProgressItem {
	item := models.CourseProgressItem{
		ID:          row.ID,
		UserID:      row.UserID,
		CourseID:    courseID,
		ItemID:      row.ItemID,
		ItemType:    row.ActivityType,
		Completed:   row.Completed,
		StartedAt:   row.StartedAt,
		ModifiedAt:  row.ModifiedAt,
		CompletedAt: row.CompletedAt,
	}
	if raw, ok := metas[models.MetaKeyResumePosition]; ok {
		if position, err := strconv.Atoi(raw); err == nil {
			item.ResumePosition = position
		}
	}
	item.Note = metas[models.MetaKeyNote]
	return item
}
