package scylla

import (
	"context"
	"time"

	"lms-service/internal/models"
)

// UserRepositoryInterface abstracts user persistence so services can be
// tested against mocks.
type UserRepositoryInterface interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByPhone(ctx context.Context, phoneNumber string) (*models.User, error)
	GetUserByNICHash(ctx context.Context, nicHash string) (*models.User, error)
	UpdateVerifyOTP(ctx context.Context, userID, code string, expiresAt *time.Time) error
	UpdateResetOTP(ctx context.Context, userID, code string, expiresAt *time.Time) error
	MarkVerified(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateBlocked(ctx context.Context, userID string, blocked bool) error
	UpdateRole(ctx context.Context, userID, role string, isAdmin bool) error
	DeleteUser(ctx context.Context, user *models.User) error
	ListUsersByExamYear(ctx context.Context, examYear int) ([]*models.User, error)
	HealthCheck(ctx context.Context) error
}
