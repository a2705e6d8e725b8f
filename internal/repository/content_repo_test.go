package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/courseflow/courseflow-api/internal/models"
)

func TestContentRepositoryGetChildrenOrders(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContentRepository(db)

	course := models.ContentNode{Type: models.NodeTypeCourse, Title: "Go Basics", Published: true}
	require.NoError(t, db.Create(&course).Error)

	second := models.ContentNode{ParentID: course.ID, Type: models.NodeTypeSection, Title: "Advanced", MenuOrder: 2}
	first := models.ContentNode{ParentID: course.ID, Type: models.NodeTypeSection, Title: "Intro", MenuOrder: 1}
	require.NoError(t, db.Create(&second).Error)
	require.NoError(t, db.Create(&first).Error)

	children, err := repo.GetChildren(context.Background(), course.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	require.Equal(t, "Intro", children[0].Title)
	require.Equal(t, "Advanced", children[1].Title)
}

func TestContentRepositoryGetChildrenTieBreaksByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContentRepository(db)

	a := models.ContentNode{ParentID: 7, Type: models.NodeTypeLesson, Title: "A", MenuOrder: 1, Published: true}
	b := models.ContentNode{ParentID: 7, Type: models.NodeTypeLesson, Title: "B", MenuOrder: 1, Published: true}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	children, err := repo.GetChildren(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, children, 2)
	require.Equal(t, a.ID, children[0].ID)
	require.Equal(t, b.ID, children[1].ID)
}

func TestContentRepositoryListChildrenEmptyParents(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContentRepository(db)

	nodes, err := repo.ListChildren(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, nodes)
}

func TestContentRepositoryGetNodeMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContentRepository(db)

	_, err := repo.GetNode(context.Background(), 999)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ContentNode{}, &models.Activity{}, &models.ActivityMeta{}))
	return db
}
