package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"lms-service/internal/models"
	"lms-service/internal/repository/redis"
	"lms-service/internal/repository/scylla"
	"lms-service/internal/util"
)

type CategoryRequest struct {
	Year     int    `json:"year" validate:"required,examyear"`
	Name     string `json:"name" validate:"required,min=2,max=60"`
	Position int    `json:"position" validate:"gte=0"`
}

// CategoryService manages the per-year category list shown on the catalog
// landing page, including display ordering.
type CategoryService struct {
	categoryRepo scylla.CategoryRepositoryInterface
	cache        redis.CatalogCacheInterface
	validate     *validator.Validate
}

func NewCategoryService(
	categoryRepo scylla.CategoryRepositoryInterface,
	cache redis.CatalogCacheInterface,
	validate *validator.Validate,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		cache:        cache,
		validate:     validate,
	}
}

func (s *CategoryService) SaveCategory(ctx context.Context, categoryID string, req *CategoryRequest) (*models.Category, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	category := &models.Category{
		CategoryID: categoryID,
		Year:       req.Year,
		Name:       util.SanitizeInput(req.Name),
		Position:   req.Position,
	}
	if err := s.categoryRepo.UpsertCategory(ctx, category); err != nil {
		return nil, err
	}
	s.invalidate(ctx, req.Year)
	return category, nil
}

func (s *CategoryService) ListCategories(ctx context.Context, year int) ([]*models.Category, error) {
	if cached, err := s.cache.GetCategories(ctx, year); err == nil {
		return cached, nil
	} else if !errors.Is(err, redis.ErrCacheMiss) {
		util.Warn("Category cache read failed, falling back to store", zap.Error(err))
	}

	categories, err := s.categoryRepo.ListCategories(ctx, year)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetCategories(ctx, year, categories, catalogCacheTTL); err != nil {
		util.Warn("Failed to populate category cache", zap.Error(err))
	}
	return categories, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, year int, categoryID string) error {
	if err := s.categoryRepo.DeleteCategory(ctx, year, categoryID); err != nil {
		return err
	}
	s.invalidate(ctx, year)
	return nil
}

// ReorderCategories rewrites positions to match the given id order.
// Unknown ids are rejected so a stale client cannot scramble the list.
func (s *CategoryService) ReorderCategories(ctx context.Context, year int, orderedIDs []string) error {
	existing, err := s.categoryRepo.ListCategories(ctx, year)
	if err != nil {
		return err
	}

	byID := make(map[string]*models.Category, len(existing))
	for _, category := range existing {
		byID[category.CategoryID] = category
	}

	for position, id := range orderedIDs {
		category, ok := byID[id]
		if !ok {
			return ErrCategoryNotFound
		}
		category.Position = position
		if err := s.categoryRepo.UpsertCategory(ctx, category); err != nil {
			return err
		}
	}

	s.invalidate(ctx, year)
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context, year int) {
	if err := s.cache.InvalidateCategories(ctx, year); err != nil {
		util.Warn("Failed to invalidate category cache", zap.Error(err))
	}
}
