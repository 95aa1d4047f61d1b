package mocks

import (
	"context"
	"time"

	"lms-service/internal/models"
	"lms-service/internal/repository/scylla"
)

// MockUserRepository implements scylla.UserRepositoryInterface for testing
type MockUserRepository struct {
	CreateUserFunc          func(ctx context.Context, user *models.User) error
	GetUserByIDFunc         func(ctx context.Context, userID string) (*models.User, error)
	GetUserByPhoneFunc      func(ctx context.Context, phoneNumber string) (*models.User, error)
	GetUserByNICHashFunc    func(ctx context.Context, nicHash string) (*models.User, error)
	UpdateVerifyOTPFunc     func(ctx context.Context, userID, code string, expiresAt *time.Time) error
	UpdateResetOTPFunc      func(ctx context.Context, userID, code string, expiresAt *time.Time) error
	MarkVerifiedFunc        func(ctx context.Context, userID string) error
	UpdatePasswordFunc      func(ctx context.Context, userID, passwordHash string) error
	UpdateBlockedFunc       func(ctx context.Context, userID string, blocked bool) error
	UpdateRoleFunc          func(ctx context.Context, userID, role string, isAdmin bool) error
	DeleteUserFunc          func(ctx context.Context, user *models.User) error
	ListUsersByExamYearFunc func(ctx context.Context, examYear int) ([]*models.User, error)
	HealthCheckFunc         func(ctx context.Context) error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	if m.GetUserByIDFunc != nil {
		return m.GetUserByIDFunc(ctx, userID)
	}
	return nil, scylla.ErrNotFound
}

func (m *MockUserRepository) GetUserByPhone(ctx context.Context, phoneNumber string) (*models.User, error) {
	if m.GetUserByPhoneFunc != nil {
		return m.GetUserByPhoneFunc(ctx, phoneNumber)
	}
	return nil, scylla.ErrNotFound
}

func (m *MockUserRepository) GetUserByNICHash(ctx context.Context, nicHash string) (*models.User, error) {
	if m.GetUserByNICHashFunc != nil {
		return m.GetUserByNICHashFunc(ctx, nicHash)
	}
	return nil, scylla.ErrNotFound
}

func (m *MockUserRepository) UpdateVerifyOTP(ctx context.Context, userID, code string, expiresAt *time.Time) error {
	if m.UpdateVerifyOTPFunc != nil {
		return m.UpdateVerifyOTPFunc(ctx, userID, code, expiresAt)
	}
	return nil
}

func (m *MockUserRepository) UpdateResetOTP(ctx context.Context, userID, code string, expiresAt *time.Time) error {
	if m.UpdateResetOTPFunc != nil {
		return m.UpdateResetOTPFunc(ctx, userID, code, expiresAt)
	}
	return nil
}

func (m *MockUserRepository) MarkVerified(ctx context.Context, userID string) error {
	if m.MarkVerifiedFunc != nil {
		return m.MarkVerifiedFunc(ctx, userID)
	}
	return nil
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, userID, passwordHash)
	}
	return nil
}

func (m *MockUserRepository) UpdateBlocked(ctx context.Context, userID string, blocked bool) error {
	if m.UpdateBlockedFunc != nil {
		return m.UpdateBlockedFunc(ctx, userID, blocked)
	}
	return nil
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, userID, role string, isAdmin bool) error {
	if m.UpdateRoleFunc != nil {
		return m.UpdateRoleFunc(ctx, userID, role, isAdmin)
	}
	return nil
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, user *models.User) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) ListUsersByExamYear(ctx context.Context, examYear int) ([]*models.User, error) {
	if m.ListUsersByExamYearFunc != nil {
		return m.ListUsersByExamYearFunc(ctx, examYear)
	}
	return nil, nil
}

func (m *MockUserRepository) HealthCheck(ctx context.Context) error {
	if m.HealthCheckFunc != nil {
		return m.HealthCheckFunc(ctx)
	}
	return nil
}

var _ scylla.UserRepositoryInterface = (*MockUserRepository)(nil)
