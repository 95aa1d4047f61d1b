package scylla

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"lms-service/internal/bucketing"
	"lms-service/internal/models"
	"lms-service/internal/util"
)

type UserRepository struct {
	client    *ScyllaClient
	bucketing *bucketing.BucketingManager
}

var _ UserRepositoryInterface = (*UserRepository)(nil)

func NewUserRepository(client *ScyllaClient, bucketing *bucketing.BucketingManager) *UserRepository {
	return &UserRepository{
		client:    client,
		bucketing: bucketing,
	}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	user.UserBucket = r.bucketing.GetUserBucket(user.UserID)

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	// Main row plus the phone and nic lookup rows go in one logged batch
	// so a partial write cannot leave a dangling index entry.
	batch := r.client.Session.NewBatch(gocql.LoggedBatch).WithContext(ctx)

	batch.Query(r.client.Prepared.CreateUser.Statement(),
		user.UserBucket, user.UserID, user.PhoneNumber, user.NICHash, user.NICEncrypted, user.NICKeyID,
		user.FirstName, user.LastName, user.PasswordHash, user.Gender, user.BirthDate,
		user.ExamYear, user.School, user.District,
		user.Role, user.IsAdmin, user.IsAccountVerified, user.IsBlocked,
		user.VerifyOTPCode, user.VerifyOTPExpiresAt, user.ResetOTPCode, user.ResetOTPExpiresAt,
		user.CreatedAt, user.UpdatedAt)

	batch.Query(r.client.Prepared.CreatePhoneIndex.Statement(),
		user.PhoneNumber, user.UserBucket, user.UserID, user.CreatedAt)

	batch.Query(r.client.Prepared.CreateNICIndex.Statement(),
		user.NICHash, user.UserBucket, user.UserID, user.CreatedAt)

	if err := r.client.ExecuteBatch(batch); err != nil {
		util.Error("Failed to create user",
			zap.String("user_id", user.UserID),
			zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	util.Info("User created",
		zap.String("user_id", user.UserID),
		zap.Int("exam_year", user.ExamYear))

	return nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	bucket := r.bucketing.GetUserBucket(userID)
	query := r.client.Prepared.GetUserByID.Bind(bucket, userID).WithContext(ctx)

	user, err := r.scanUser(query)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		util.Error("Failed to get user by ID",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetUserByPhone(ctx context.Context, phoneNumber string) (*models.User, error) {
	var bucket int
	var userID string

	query := r.client.Prepared.GetPhoneIndex.Bind(phoneNumber).WithContext(ctx)
	if err := r.client.ScanWithRetry(query, &bucket, &userID); err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, fmt.Errorf("phone lookup: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to resolve phone number: %w", err)
	}

	return r.GetUserByID(ctx, userID)
}

func (r *UserRepository) GetUserByNICHash(ctx context.Context, nicHash string) (*models.User, error) {
	var bucket int
	var userID string

	query := r.client.Prepared.GetNICIndex.Bind(nicHash).WithContext(ctx)
	if err := r.client.ScanWithRetry(query, &bucket, &userID); err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, fmt.Errorf("nic lookup: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to resolve national id: %w", err)
	}

	return r.GetUserByID(ctx, userID)
}

func (r *UserRepository) UpdateVerifyOTP(ctx context.Context, userID, code string, expiresAt *time.Time) error {
	bucket := r.bucketing.GetUserBucket(userID)
	query := r.client.Prepared.UpdateVerifyOTP.
		Bind(code, expiresAt, time.Now().UTC(), bucket, userID).WithContext(ctx)

	if err := r.client.ExecuteWithRetry(query, 2); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateResetOTP(ctx context.Context, userID, code string, expiresAt *time.Time) error {
	bucket := r.bucketing.GetUserBucket(userID)
	query := r.client.Prepared.UpdateResetOTP.
		Bind(code, expiresAt, time.Now().UTC(), bucket, userID).WithContext(ctx)

	if err := r.client.ExecuteWithRetry(query, 2); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}
	return nil
}

// MarkVerified flips the verified flag and clears the consumed code.
func (r *UserRepository) MarkVerified(ctx context.Context, userID string) error {
	bucket := r.bucketing.GetUserBucket(userID)
	query := r.client.Prepared.MarkVerified.
		Bind(true, "", nil, time.Now().UTC(), bucket, userID).WithContext(ctx)

	if err := r.client.ExecuteWithRetry(query, 2); err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}

	util.Info("User account verified", zap.String("user_id", userID))
	return nil
}

// UpdatePassword swaps the hash and clears the reset code slot in one write.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	bucket := r.bucketing.GetUserBucket(userID)
	query := r.client.Prepared.UpdatePassword.
		Bind(passwordHash, "", nil, time.Now().UTC(), bucket, userID).WithContext(ctx)

	if err := r.client.ExecuteWithRetry(query, 2); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateBlocked(ctx context.Context, userID string, blocked bool) error {
	bucket := r.bucketing.GetUserBucket(userID)
	query := r.client.Prepared.UpdateBlocked.
		Bind(blocked, time.Now().UTC(), bucket, userID).WithContext(ctx)

	if err := r.client.ExecuteWithRetry(query, 2); err != nil {
		return fmt.Errorf("failed to update blocked flag: %w", err)
	}

	util.Info("User blocked flag updated",
		zap.String("user_id", userID),
		zap.Bool("blocked", blocked))
	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, userID, role string, isAdmin bool) error {
	bucket := r.bucketing.GetUserBucket(userID)
	query := r.client.Prepared.UpdateRole.
		Bind(role, isAdmin, time.Now().UTC(), bucket, userID).WithContext(ctx)

	if err := r.client.ExecuteWithRetry(query, 2); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	return nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, user *models.User) error {
	bucket := r.bucketing.GetUserBucket(user.UserID)

	batch := r.client.Session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(r.client.Prepared.DeleteUser.Statement(), bucket, user.UserID)
	batch.Query(r.client.Prepared.DeletePhoneIndex.Statement(), user.PhoneNumber)
	batch.Query(r.client.Prepared.DeleteNICIndex.Statement(), user.NICHash)

	if err := r.client.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	util.Info("User deleted", zap.String("user_id", user.UserID))
	return nil
}

// ListUsersByExamYear is an admin-only scan used by exports. ALLOW FILTERING
// is acceptable here: it runs rarely and off the request path.
func (r *UserRepository) ListUsersByExamYear(ctx context.Context, examYear int) ([]*models.User, error) {
	iter := r.client.Query(`
        SELECT `+userColumns+` FROM users WHERE exam_year = ? ALLOW FILTERING`,
		examYear).WithContext(ctx).Iter()

	var users []*models.User
	for {
		user, ok := r.iterUser(iter)
		if !ok {
			break
		}
		users = append(users, user)
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list users for year %d: %w", examYear, err)
	}
	return users, nil
}

func (r *UserRepository) HealthCheck(ctx context.Context) error {
	return r.client.HealthCheck()
}

func (r *UserRepository) scanUser(query *gocql.Query) (*models.User, error) {
	user := &models.User{}
	var verifyExpires, resetExpires time.Time

	err := r.client.ScanWithRetry(query,
		&user.UserBucket, &user.UserID, &user.PhoneNumber, &user.NICHash, &user.NICEncrypted, &user.NICKeyID,
		&user.FirstName, &user.LastName, &user.PasswordHash, &user.Gender, &user.BirthDate,
		&user.ExamYear, &user.School, &user.District,
		&user.Role, &user.IsAdmin, &user.IsAccountVerified, &user.IsBlocked,
		&user.VerifyOTPCode, &verifyExpires, &user.ResetOTPCode, &resetExpires,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if !verifyExpires.IsZero() {
		user.VerifyOTPExpiresAt = &verifyExpires
	}
	if !resetExpires.IsZero() {
		user.ResetOTPExpiresAt = &resetExpires
	}
	return user, nil
}

func (r *UserRepository) iterUser(iter *gocql.Iter) (*models.User, bool) {
	user := &models.User{}
	var verifyExpires, resetExpires time.Time

	ok := iter.Scan(
		&user.UserBucket, &user.UserID, &user.PhoneNumber, &user.NICHash, &user.NICEncrypted, &user.NICKeyID,
		&user.FirstName, &user.LastName, &user.PasswordHash, &user.Gender, &user.BirthDate,
		&user.ExamYear, &user.School, &user.District,
		&user.Role, &user.IsAdmin, &user.IsAccountVerified, &user.IsBlocked,
		&user.VerifyOTPCode, &verifyExpires, &user.ResetOTPCode, &resetExpires,
		&user.CreatedAt, &user.UpdatedAt)
	if !ok {
		return nil, false
	}

	if !verifyExpires.IsZero() {
		user.VerifyOTPExpiresAt = &verifyExpires
	}
	if !resetExpires.IsZero() {
		user.ResetOTPExpiresAt = &resetExpires
	}
	return user, true
}
