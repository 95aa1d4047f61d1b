package mocks

import (
	"context"

	"lms-service/internal/models"
	"lms-service/internal/repository/scylla"
)

// MockCourseRepository implements scylla.CourseRepositoryInterface for testing
type MockCourseRepository struct {
	UpsertCourseFunc      func(ctx context.Context, course *models.Course) error
	GetCourseFunc         func(ctx context.Context, year int, courseID string) (*models.Course, error)
	ListCoursesByYearFunc func(ctx context.Context, year int) ([]*models.Course, error)
	DeleteCourseFunc      func(ctx context.Context, year int, courseID string) error
}

func NewMockCourseRepository() *MockCourseRepository {
	return &MockCourseRepository{}
}

func (m *MockCourseRepository) UpsertCourse(ctx context.Context, course *models.Course) error {
	if m.UpsertCourseFunc != nil {
		return m.UpsertCourseFunc(ctx, course)
	}
	return nil
}

func (m *MockCourseRepository) GetCourse(ctx context.Context, year int, courseID string) (*models.Course, error) {
	if m.GetCourseFunc != nil {
		return m.GetCourseFunc(ctx, year, courseID)
	}
	return nil, scylla.ErrNotFound
}

func (m *MockCourseRepository) ListCoursesByYear(ctx context.Context, year int) ([]*models.Course, error) {
	if m.ListCoursesByYearFunc != nil {
		return m.ListCoursesByYearFunc(ctx, year)
	}
	return nil, nil
}

func (m *MockCourseRepository) DeleteCourse(ctx context.Context, year int, courseID string) error {
	if m.DeleteCourseFunc != nil {
		return m.DeleteCourseFunc(ctx, year, courseID)
	}
	return nil
}

var _ scylla.CourseRepositoryInterface = (*MockCourseRepository)(nil)

// MockCategoryRepository implements scylla.CategoryRepositoryInterface for testing
type MockCategoryRepository struct {
	UpsertCategoryFunc func(ctx context.Context, category *models.Category) error
	ListCategoriesFunc func(ctx context.Context, year int) ([]*models.Category, error)
	DeleteCategoryFunc func(ctx context.Context, year int, categoryID string) error
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{}
}

func (m *MockCategoryRepository) UpsertCategory(ctx context.Context, category *models.Category) error {
	if m.UpsertCategoryFunc != nil {
		return m.UpsertCategoryFunc(ctx, category)
	}
	return nil
}

func (m *MockCategoryRepository) ListCategories(ctx context.Context, year int) ([]*models.Category, error) {
	if m.ListCategoriesFunc != nil {
		return m.ListCategoriesFunc(ctx, year)
	}
	return nil, nil
}

func (m *MockCategoryRepository) DeleteCategory(ctx context.Context, year int, categoryID string) error {
	if m.DeleteCategoryFunc != nil {
		return m.DeleteCategoryFunc(ctx, year, categoryID)
	}
	return nil
}

var _ scylla.CategoryRepositoryInterface = (*MockCategoryRepository)(nil)

// MockEnrollmentRepository implements scylla.EnrollmentRepositoryInterface for testing
type MockEnrollmentRepository struct {
	UpsertEnrollmentFunc        func(ctx context.Context, enrollment *models.Enrollment) error
	GetEnrollmentFunc           func(ctx context.Context, userID, courseID string) (*models.Enrollment, error)
	ListEnrollmentsByUserFunc   func(ctx context.Context, userID string) ([]*models.Enrollment, error)
	ListEnrollmentsByCourseFunc func(ctx context.Context, courseID string) ([]*models.Enrollment, error)
	DeleteEnrollmentFunc        func(ctx context.Context, userID, courseID string) error
}

func NewMockEnrollmentRepository() *MockEnrollmentRepository {
	return &MockEnrollmentRepository{}
}

func (m *MockEnrollmentRepository) UpsertEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	if m.UpsertEnrollmentFunc != nil {
		return m.UpsertEnrollmentFunc(ctx, enrollment)
	}
	return nil
}

func (m *MockEnrollmentRepository) GetEnrollment(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	if m.GetEnrollmentFunc != nil {
		return m.GetEnrollmentFunc(ctx, userID, courseID)
	}
	return nil, scylla.ErrNotFound
}

func (m *MockEnrollmentRepository) ListEnrollmentsByUser(ctx context.Context, userID string) ([]*models.Enrollment, error) {
	if m.ListEnrollmentsByUserFunc != nil {
		return m.ListEnrollmentsByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockEnrollmentRepository) ListEnrollmentsByCourse(ctx context.Context, courseID string) ([]*models.Enrollment, error) {
	if m.ListEnrollmentsByCourseFunc != nil {
		return m.ListEnrollmentsByCourseFunc(ctx, courseID)
	}
	return nil, nil
}

func (m *MockEnrollmentRepository) DeleteEnrollment(ctx context.Context, userID, courseID string) error {
	if m.DeleteEnrollmentFunc != nil {
		return m.DeleteEnrollmentFunc(ctx, userID, courseID)
	}
	return nil
}

var _ scylla.EnrollmentRepositoryInterface = (*MockEnrollmentRepository)(nil)

// MockPaymentRepository implements scylla.PaymentRepositoryInterface for testing
type MockPaymentRepository struct {
	CreatePaymentFunc       func(ctx context.Context, payment *models.Payment) error
	GetPaymentFunc          func(ctx context.Context, year int, paymentID string) (*models.Payment, error)
	UpdatePaymentStatusFunc func(ctx context.Context, payment *models.Payment, status string) error
	ListPaymentsByYearFunc  func(ctx context.Context, year int) ([]*models.Payment, error)
	ListPaymentsByUserFunc  func(ctx context.Context, userID string) ([]*models.Payment, error)
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{}
}

func (m *MockPaymentRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if m.CreatePaymentFunc != nil {
		return m.CreatePaymentFunc(ctx, payment)
	}
	return nil
}

func (m *MockPaymentRepository) GetPayment(ctx context.Context, year int, paymentID string) (*models.Payment, error) {
	if m.GetPaymentFunc != nil {
		return m.GetPaymentFunc(ctx, year, paymentID)
	}
	return nil, scylla.ErrNotFound
}

func (m *MockPaymentRepository) UpdatePaymentStatus(ctx context.Context, payment *models.Payment, status string) error {
	if m.UpdatePaymentStatusFunc != nil {
		return m.UpdatePaymentStatusFunc(ctx, payment, status)
	}
	payment.Status = status
	return nil
}

func (m *MockPaymentRepository) ListPaymentsByYear(ctx context.Context, year int) ([]*models.Payment, error) {
	if m.ListPaymentsByYearFunc != nil {
		return m.ListPaymentsByYearFunc(ctx, year)
	}
	return nil, nil
}

func (m *MockPaymentRepository) ListPaymentsByUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	if m.ListPaymentsByUserFunc != nil {
		return m.ListPaymentsByUserFunc(ctx, userID)
	}
	return nil, nil
}

var _ scylla.PaymentRepositoryInterface = (*MockPaymentRepository)(nil)
