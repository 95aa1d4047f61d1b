package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lms-service/internal/client"
	"lms-service/internal/models"
	"lms-service/internal/util"
)

var ErrCacheMiss = errors.New("cache miss")

type CatalogCacheInterface interface {
	GetCourses(ctx context.Context, year int) ([]*models.Course, error)
	SetCourses(ctx context.Context, year int, courses []*models.Course, ttl time.Duration) error
	InvalidateCourses(ctx context.Context, year int) error
	GetCategories(ctx context.Context, year int) ([]*models.Category, error)
	SetCategories(ctx context.Context, year int, categories []*models.Category, ttl time.Duration) error
	InvalidateCategories(ctx context.Context, year int) error
}

// CatalogCache holds the per-year course and category listings as JSON
// blobs. Writes to the catalog invalidate the year so the next read
// repopulates from the store.
type CatalogCache struct {
	client *client.RedisClient
}

var _ CatalogCacheInterface = (*CatalogCache)(nil)

func NewCatalogCache(client *client.RedisClient) *CatalogCache {
	return &CatalogCache{client: client}
}

func (c *CatalogCache) GetCourses(ctx context.Context, year int) ([]*models.Course, error) {
	raw, err := c.client.Get(ctx, coursesKey(year))
	if err != nil {
		if errors.Is(err, client.ErrKeyNotFound) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cached courses: %w", err)
	}

	var courses []*models.Course
	if err := json.Unmarshal([]byte(raw), &courses); err != nil {
		// A corrupt entry behaves like a miss so the caller repopulates.
		util.Warn("Dropping corrupt course cache entry",
			zap.Int("year", year),
			zap.Error(err))
		_ = c.client.Del(ctx, coursesKey(year))
		return nil, ErrCacheMiss
	}
	return courses, nil
}

func (c *CatalogCache) SetCourses(ctx context.Context, year int, courses []*models.Course, ttl time.Duration) error {
	payload, err := json.Marshal(courses)
	if err != nil {
		return fmt.Errorf("failed to marshal courses: %w", err)
	}
	if err := c.client.Set(ctx, coursesKey(year), payload, ttl); err != nil {
		return fmt.Errorf("failed to cache courses: %w", err)
	}

	util.Debug("Course listing cached",
		zap.Int("year", year),
		zap.Int("count", len(courses)))
	return nil
}

func (c *CatalogCache) InvalidateCourses(ctx context.Context, year int) error {
	if err := c.client.Del(ctx, coursesKey(year)); err != nil {
		return fmt.Errorf("failed to invalidate course cache: %w", err)
	}
	return nil
}

func (c *CatalogCache) GetCategories(ctx context.Context, year int) ([]*models.Category, error) {
	raw, err := c.client.Get(ctx, categoriesKey(year))
	if err != nil {
		if errors.Is(err, client.ErrKeyNotFound) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cached categories: %w", err)
	}

	var categories []*models.Category
	if err := json.Unmarshal([]byte(raw), &categories); err != nil {
		util.Warn("Dropping corrupt category cache entry",
			zap.Int("year", year),
			zap.Error(err))
		_ = c.client.Del(ctx, categoriesKey(year))
		return nil, ErrCacheMiss
	}
	return categories, nil
}

func (c *CatalogCache) SetCategories(ctx context.Context, year int, categories []*models.Category, ttl time.Duration) error {
	payload, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}
	if err := c.client.Set(ctx, categoriesKey(year), payload, ttl); err != nil {
		return fmt.Errorf("failed to cache categories: %w", err)
	}
	return nil
}

func (c *CatalogCache) InvalidateCategories(ctx context.Context, year int) error {
	if err := c.client.Del(ctx, categoriesKey(year)); err != nil {
		return fmt.Errorf("failed to invalidate category cache: %w", err)
	}
	return nil
}
