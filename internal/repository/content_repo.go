package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/courseflow/courseflow-api/internal/models"
)

// ContentRepository exposes read access to the course-authoring content tree.
// The progress engine never writes through this repository.
type ContentRepository interface {
	GetNode(ctx context.Context, id uint) (models.ContentNode, error)
	GetChildren(ctx context.Context, parentID uint) ([]models.ContentNode, error)
	ListChildren(ctx context.Context, parentIDs []uint) ([]models.ContentNode, error)
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository constructs a repository over the content node table.
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) GetNode(ctx context.Context, id uint) (models.ContentNode, error) {
	var node models.ContentNode
	if err := r.db.WithContext(ctx).First(&node, id).Error; err != nil {
		return models.ContentNode{}, err
	}
	return node, nil
}

func (r *contentRepository) GetChildren(ctx context.Context, parentID uint) ([]models.ContentNode, error) {
	var nodes []models.ContentNode
	if err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("menu_order ASC, id ASC").
		Find(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

func (r *contentRepository) ListChildren(ctx context.Context, parentIDs []uint) ([]models.ContentNode, error) {
	if len(parentIDs) == 0 {
		return []models.ContentNode{}, nil
	}

	var nodes []models.ContentNode
	if err := r.db.WithContext(ctx).
		Where("parent_id IN ?", parentIDs).
		Order("menu_order ASC, id ASC").
		Find(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}
