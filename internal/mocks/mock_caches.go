package mocks

import (
	"context"
	"time"

	"lms-service/internal/models"
	"lms-service/internal/repository/redis"
)

// MockSessionStore implements redis.SessionStoreInterface for testing
type MockSessionStore struct {
	SaveFunc            func(ctx context.Context, sessionID string, claims *models.SessionClaims, ttl time.Duration) error
	GetFunc             func(ctx context.Context, sessionID string) (*models.SessionClaims, error)
	ActiveSessionIDFunc func(ctx context.Context, userID string) (string, error)
	DeleteSessionFunc   func(ctx context.Context, sessionID string) error
	DestroyFunc         func(ctx context.Context, sessionID, userID string) error
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{}
}

func (m *MockSessionStore) Save(ctx context.Context, sessionID string, claims *models.SessionClaims, ttl time.Duration) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, sessionID, claims, ttl)
	}
	return nil
}

func (m *MockSessionStore) Get(ctx context.Context, sessionID string) (*models.SessionClaims, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, sessionID)
	}
	return nil, redis.ErrSessionNotFound
}

func (m *MockSessionStore) ActiveSessionID(ctx context.Context, userID string) (string, error) {
	if m.ActiveSessionIDFunc != nil {
		return m.ActiveSessionIDFunc(ctx, userID)
	}
	return "", redis.ErrSessionNotFound
}

func (m *MockSessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockSessionStore) Destroy(ctx context.Context, sessionID, userID string) error {
	if m.DestroyFunc != nil {
		return m.DestroyFunc(ctx, sessionID, userID)
	}
	return nil
}

var _ redis.SessionStoreInterface = (*MockSessionStore)(nil)

// MockRateLimiter implements redis.RateLimiterInterface for testing
type MockRateLimiter struct {
	AllowFunc func(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	ResetFunc func(ctx context.Context, key string) error
}

func NewMockRateLimiter() *MockRateLimiter {
	return &MockRateLimiter{}
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if m.AllowFunc != nil {
		return m.AllowFunc(ctx, key, limit, window)
	}
	return true, nil
}

func (m *MockRateLimiter) Reset(ctx context.Context, key string) error {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, key)
	}
	return nil
}

var _ redis.RateLimiterInterface = (*MockRateLimiter)(nil)

// MockCatalogCache implements redis.CatalogCacheInterface for testing
type MockCatalogCache struct {
	GetCoursesFunc           func(ctx context.Context, year int) ([]*models.Course, error)
	SetCoursesFunc           func(ctx context.Context, year int, courses []*models.Course, ttl time.Duration) error
	InvalidateCoursesFunc    func(ctx context.Context, year int) error
	GetCategoriesFunc        func(ctx context.Context, year int) ([]*models.Category, error)
	SetCategoriesFunc        func(ctx context.Context, year int, categories []*models.Category, ttl time.Duration) error
	InvalidateCategoriesFunc func(ctx context.Context, year int) error
}

func NewMockCatalogCache() *MockCatalogCache {
	return &MockCatalogCache{}
}

func (m *MockCatalogCache) GetCourses(ctx context.Context, year int) ([]*models.Course, error) {
	if m.GetCoursesFunc != nil {
		return m.GetCoursesFunc(ctx, year)
	}
	return nil, redis.ErrCacheMiss
}

func (m *MockCatalogCache) SetCourses(ctx context.Context, year int, courses []*models.Course, ttl time.Duration) error {
	if m.SetCoursesFunc != nil {
		return m.SetCoursesFunc(ctx, year, courses, ttl)
	}
	return nil
}

func (m *MockCatalogCache) InvalidateCourses(ctx context.Context, year int) error {
	if m.InvalidateCoursesFunc != nil {
		return m.InvalidateCoursesFunc(ctx, year)
	}
	return nil
}

func (m *MockCatalogCache) GetCategories(ctx context.Context, year int) ([]*models.Category, error) {
	if m.GetCategoriesFunc != nil {
		return m.GetCategoriesFunc(ctx, year)
	}
	return nil, redis.ErrCacheMiss
}

func (m *MockCatalogCache) SetCategories(ctx context.Context, year int, categories []*models.Category, ttl time.Duration) error {
	if m.SetCategoriesFunc != nil {
		return m.SetCategoriesFunc(ctx, year, categories, ttl)
	}
	return nil
}

func (m *MockCatalogCache) InvalidateCategories(ctx context.Context, year int) error {
	if m.InvalidateCategoriesFunc != nil {
		return m.InvalidateCategoriesFunc(ctx, year)
	}
	return nil
}

var _ redis.CatalogCacheInterface = (*MockCatalogCache)(nil)
