package scylla

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"lms-service/internal/models"
)

type CategoryRepositoryInterface interface {
	UpsertCategory(ctx context.Context, category *models.Category) error
	ListCategories(ctx context.Context, year int) ([]*models.Category, error)
	DeleteCategory(ctx context.Context, year int, categoryID string) error
}

type CategoryRepository struct {
	client *ScyllaClient
}

var _ CategoryRepositoryInterface = (*CategoryRepository)(nil)

func NewCategoryRepository(client *ScyllaClient) *CategoryRepository {
	return &CategoryRepository{client: client}
}

func (r *CategoryRepository) UpsertCategory(ctx context.Context, category *models.Category) error {
	if category.CategoryID == "" {
		category.CategoryID = uuid.New().String()
		category.CreatedAt = time.Now().UTC()
	}

	query := r.client.Prepared.UpsertCategory.Bind(
		category.Year, category.CategoryID, category.Name,
		category.Position, category.CreatedAt,
	).WithContext(ctx)

	if err := r.client.ExecuteWithRetry(query, 2); err != nil {
		return fmt.Errorf("failed to upsert category: %w", err)
	}
	return nil
}

// ListCategories returns categories ordered by their display position.
func (r *CategoryRepository) ListCategories(ctx context.Context, year int) ([]*models.Category, error) {
	iter := r.client.Prepared.ListCategories.Bind(year).WithContext(ctx).Iter()

	var categories []*models.Category
	for {
		category := &models.Category{}
		ok := iter.Scan(
			&category.Year, &category.CategoryID, &category.Name,
			&category.Position, &category.CreatedAt)
		if !ok {
			break
		}
		categories = append(categories, category)
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list categories for year %d: %w", year, err)
	}

	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Position < categories[j].Position
	})
	return categories, nil
}

func (r *CategoryRepository) DeleteCategory(ctx context.Context, year int, categoryID string) error {
	query := r.client.Prepared.DeleteCategory.Bind(year, categoryID).WithContext(ctx)
	if err := r.client.ExecuteWithRetry(query, 2); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
