package service

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/courseflow/courseflow-api/internal/models"
	"github.com/courseflow/courseflow-api/internal/repository"
)

// CurriculumService resolves a course into its ordered trackable items.
type CurriculumService interface {
	// Resolve returns the published lessons and quizzes of the course in
	// curriculum order. A missing course yields an empty list, not an error.
	Resolve(ctx context.Context, courseID uint) ([]models.CurriculumItem, error)
	// CourseExists reports whether the id resolves to a course node.
	CourseExists(ctx context.Context, courseID uint) (bool, error)
}

type curriculumService struct {
	content repository.ContentRepository
	logger  zerolog.Logger
}

// NewCurriculumService constructs the resolver.
func NewCurriculumService(content repository.ContentRepository, logger zerolog.Logger) CurriculumService {
	return &curriculumService{
		content: content,
		logger:  logger.With().Str("component", "curriculum_service").Logger(),
	}
}

func (s *curriculumService) CourseExists(ctx context.Context, courseID uint) (bool, error) {
	node, err := s.content.GetNode(ctx, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return node.Type == models.NodeTypeCourse, nil
}

func (s *curriculumService) Resolve(ctx context.Context, courseID uint) ([]models.CurriculumItem, error) {
	children, err := s.content.GetChildren(ctx, courseID)
	if err != nil {
		return nil, err
	}

	sections := make([]models.ContentNode, 0, len(children))
	for _, child := range children {
		if child.Type == models.NodeTypeSection {
			sections = append(sections, child)
		}
	}
	sortNodes(sections)

	sectionIDs := make([]uint, 0, len(sections))
	for _, section := range sections {
		sectionIDs = append(sectionIDs, section.ID)
	}

	nodes, err := s.content.ListChildren(ctx, sectionIDs)
	if err != nil {
		return nil, err
	}

	bySection := make(map[uint][]models.ContentNode, len(sections))
	for _, node := range nodes {
		if !node.IsTrackable() || !node.Published {
			continue
		}
		bySection[node.ParentID] = append(bySection[node.ParentID], node)
	}

	curriculum := make([]models.CurriculumItem, 0, len(nodes))
	for _, section := range sections {
		items := bySection[section.ID]
		sortNodes(items)
		for _, node := range items {
			curriculum = append(curriculum, models.CurriculumItem{
				ID:           node.ID,
				Type:         node.Type,
				Title:        node.Title,
				SectionID:    section.ID,
				SectionTitle: section.Title,
				SectionOrder: section.MenuOrder,
				ItemOrder:    node.MenuOrder,
				Attributes:   node.Attributes,
			})
		}
	}

	return curriculum, nil
}

// sortNodes orders siblings by their order key, ties broken by id, so the
// resolved curriculum is identical across calls.
func sortNodes(nodes []models.ContentNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].MenuOrder != nodes[j].MenuOrder {
			return nodes[i].MenuOrder < nodes[j].MenuOrder
		}
		return nodes[i].ID < nodes[j].ID
	})
}
