package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms-service/internal/mocks"
	"lms-service/internal/models"
	"lms-service/internal/service"
)

func newCategoryService(repo *mocks.MockCategoryRepository, cache *mocks.MockCatalogCache) *service.CategoryService {
	return service.NewCategoryService(repo, cache, service.NewValidator())
}

func TestSaveCategory(t *testing.T) {
	repo := mocks.NewMockCategoryRepository()
	cache := mocks.NewMockCatalogCache()

	var saved *models.Category
	repo.UpsertCategoryFunc = func(ctx context.Context, category *models.Category) error {
		category.CategoryID = "cat-1"
		saved = category
		return nil
	}
	invalidated := false
	cache.InvalidateCategoriesFunc = func(ctx context.Context, year int) error {
		invalidated = true
		return nil
	}

	svc := newCategoryService(repo, cache)
	category, err := svc.SaveCategory(context.Background(), "", &service.CategoryRequest{
		Year: 2027, Name: "Science Stream", Position: 2,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, category.CategoryID)
	assert.Equal(t, saved, category)
	assert.True(t, invalidated)
}

func TestSaveCategory_RejectsShortName(t *testing.T) {
	svc := newCategoryService(mocks.NewMockCategoryRepository(), mocks.NewMockCatalogCache())
	_, err := svc.SaveCategory(context.Background(), "", &service.CategoryRequest{Year: 2027, Name: "X"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestListCategories_CacheMissPopulates(t *testing.T) {
	repo := mocks.NewMockCategoryRepository()
	repo.ListCategoriesFunc = func(ctx context.Context, year int) ([]*models.Category, error) {
		return []*models.Category{
			{CategoryID: "a", Position: 0},
			{CategoryID: "b", Position: 1},
		}, nil
	}

	cache := mocks.NewMockCatalogCache()
	var cached []*models.Category
	cache.SetCategoriesFunc = func(ctx context.Context, year int, categories []*models.Category, ttl time.Duration) error {
		cached = categories
		return nil
	}

	svc := newCategoryService(repo, cache)
	categories, err := svc.ListCategories(context.Background(), 2027)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Len(t, cached, 2)
}

func TestListCategories_CacheHit(t *testing.T) {
	cache := mocks.NewMockCatalogCache()
	cache.GetCategoriesFunc = func(ctx context.Context, year int) ([]*models.Category, error) {
		return []*models.Category{{CategoryID: "cached"}}, nil
	}

	repoRead := false
	repo := mocks.NewMockCategoryRepository()
	repo.ListCategoriesFunc = func(ctx context.Context, year int) ([]*models.Category, error) {
		repoRead = true
		return nil, nil
	}

	svc := newCategoryService(repo, cache)
	categories, err := svc.ListCategories(context.Background(), 2027)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "cached", categories[0].CategoryID)
	assert.False(t, repoRead)
}

func TestReorderCategories(t *testing.T) {
	repo := mocks.NewMockCategoryRepository()
	repo.ListCategoriesFunc = func(ctx context.Context, year int) ([]*models.Category, error) {
		return []*models.Category{
			{CategoryID: "a", Position: 0},
			{CategoryID: "b", Position: 1},
		}, nil
	}

	positions := make(map[string]int)
	repo.UpsertCategoryFunc = func(ctx context.Context, category *models.Category) error {
		positions[category.CategoryID] = category.Position
		return nil
	}

	svc := newCategoryService(repo, mocks.NewMockCatalogCache())
	require.NoError(t, svc.ReorderCategories(context.Background(), 2027, []string{"b", "a"}))
	assert.Equal(t, 0, positions["b"])
	assert.Equal(t, 1, positions["a"])
}

func TestReorderCategories_UnknownID(t *testing.T) {
	repo := mocks.NewMockCategoryRepository()
	repo.ListCategoriesFunc = func(ctx context.Context, year int) ([]*models.Category, error) {
		return []*models.Category{{CategoryID: "a"}}, nil
	}

	svc := newCategoryService(repo, mocks.NewMockCatalogCache())
	err := svc.ReorderCategories(context.Background(), 2027, []string{"a", "ghost"})
	assert.ErrorIs(t, err, service.ErrCategoryNotFound)
}
