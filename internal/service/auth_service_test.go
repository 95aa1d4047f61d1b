package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms-service/internal/encryption"
	"lms-service/internal/hashing"
	"lms-service/internal/mocks"
	"lms-service/internal/models"
	"lms-service/internal/service"
	"lms-service/internal/sms"
)

type authFixture struct {
	userRepo  *mocks.MockUserRepository
	store     *mocks.MockSessionStore
	limiter   *mocks.MockRateLimiter
	sender    *mocks.MockSMSSender
	publisher *mocks.MockEventPublisher
	hasher    *hashing.Hasher
	auth      *service.AuthService
}

func newAuthFixture() *authFixture {
	cfg := testConfig()
	f := &authFixture{
		userRepo:  mocks.NewMockUserRepository(),
		store:     mocks.NewMockSessionStore(),
		limiter:   mocks.NewMockRateLimiter(),
		sender:    mocks.NewMockSMSSender(),
		publisher: mocks.NewMockEventPublisher(),
		hasher:    hashing.NewHasher(cfg),
	}

	otps := service.NewOTPService(f.userRepo, f.sender, f.publisher, cfg)
	sessions := service.NewSessionService(f.store, cfg)
	f.auth = service.NewAuthService(
		f.userRepo,
		f.hasher,
		encryption.NewEncryptionManager(cfg, nil),
		otps,
		sessions,
		f.limiter,
		f.publisher,
		service.NewValidator(),
		cfg,
	)
	return f
}

func registerRequest() *service.RegisterRequest {
	return &service.RegisterRequest{
		FirstName:   "Kasun",
		LastName:    "Perera",
		PhoneNumber: "0712345678",
		NIC:         "200012345678",
		Password:    "secret123",
		Gender:      "male",
		BirthDate:   "2000-04-12",
		ExamYear:    2027,
		School:      "Central College",
		District:    "Kandy",
	}
}

func (f *authFixture) verifiedUser() *models.User {
	hash, _ := f.hasher.HashPassword("secret123")
	return &models.User{
		UserID:            "u-1",
		PhoneNumber:       "0712345678",
		PasswordHash:      hash,
		Role:              models.RoleStudent,
		IsAccountVerified: true,
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}
}

func TestRegister_Success(t *testing.T) {
	f := newAuthFixture()

	var created *models.User
	f.userRepo.CreateUserFunc = func(ctx context.Context, user *models.User) error {
		user.UserID = "u-1"
		created = user
		return nil
	}

	result, err := f.auth.Register(context.Background(), registerRequest())
	require.NoError(t, err)
	assert.True(t, result.OTPDelivered)

	require.NotNil(t, created)
	assert.Equal(t, models.RoleStudent, created.Role)
	assert.False(t, created.IsAccountVerified)
	assert.NoError(t, f.hasher.VerifyPassword(created.PasswordHash, "secret123"))

	// The national id is stored hashed and encrypted, never in clear.
	assert.NotEmpty(t, created.NICHash)
	assert.NotEmpty(t, created.NICEncrypted)
	assert.NotContains(t, string(created.NICEncrypted), "200012345678")

	require.Len(t, f.sender.Sent, 1)
}

func TestRegister_DuplicatePhone(t *testing.T) {
	f := newAuthFixture()
	f.userRepo.GetUserByPhoneFunc = func(ctx context.Context, phoneNumber string) (*models.User, error) {
		return &models.User{UserID: "existing"}, nil
	}

	_, err := f.auth.Register(context.Background(), registerRequest())
	assert.ErrorIs(t, err, service.ErrPhoneAlreadyExists)
	assert.ErrorIs(t, err, service.ErrUserAlreadyExists)
}

func TestRegister_DuplicateNationalID(t *testing.T) {
	f := newAuthFixture()
	f.userRepo.GetUserByNICHashFunc = func(ctx context.Context, nicHash string) (*models.User, error) {
		return &models.User{UserID: "existing"}, nil
	}

	_, err := f.auth.Register(context.Background(), registerRequest())
	assert.ErrorIs(t, err, service.ErrNICAlreadyExists)
	assert.NotErrorIs(t, err, service.ErrPhoneAlreadyExists)
}

func TestRegister_SucceedsWhenOTPDeliveryFails(t *testing.T) {
	f := newAuthFixture()
	f.userRepo.CreateUserFunc = func(ctx context.Context, user *models.User) error {
		user.UserID = "u-1"
		return nil
	}
	f.sender.SendFunc = func(ctx context.Context, toNumber, message string) error {
		return sms.ErrDeliveryFailed
	}

	result, err := f.auth.Register(context.Background(), registerRequest())
	require.NoError(t, err)
	assert.False(t, result.OTPDelivered)
	assert.Equal(t, "u-1", result.User.UserID)
}

func TestRegister_RejectsInvalidPhone(t *testing.T) {
	f := newAuthFixture()
	req := registerRequest()
	req.PhoneNumber = "071-234"

	_, err := f.auth.Register(context.Background(), req)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture()
	user := f.verifiedUser()
	f.userRepo.GetUserByPhoneFunc = func(ctx context.Context, phoneNumber string) (*models.User, error) {
		return user, nil
	}
	f.store.SaveFunc = func(ctx context.Context, sessionID string, claims *models.SessionClaims, ttl time.Duration) error {
		return nil
	}

	var resetKey string
	f.limiter.ResetFunc = func(ctx context.Context, key string) error {
		resetKey = key
		return nil
	}

	result, err := f.auth.Login(context.Background(),
		&service.LoginRequest{PhoneNumber: "0712345678", Password: "secret123"}, "10.0.0.1")

	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, "u-1", result.User.UserID)
	assert.NotEmpty(t, resetKey)

	require.NotEmpty(t, f.publisher.Events)
	assert.Equal(t, models.EventLogin, f.publisher.Events[len(f.publisher.Events)-1].EventType)
}

func TestLogin_UnknownPhone(t *testing.T) {
	f := newAuthFixture()
	_, err := f.auth.Login(context.Background(),
		&service.LoginRequest{PhoneNumber: "0712345678", Password: "secret123"}, "")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAuthFixture()
	user := f.verifiedUser()
	f.userRepo.GetUserByPhoneFunc = func(ctx context.Context, phoneNumber string) (*models.User, error) {
		return user, nil
	}

	_, err := f.auth.Login(context.Background(),
		&service.LoginRequest{PhoneNumber: "0712345678", Password: "wrong-password"}, "10.0.0.1")

	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	require.NotEmpty(t, f.publisher.Events)
	assert.Equal(t, models.EventLoginFailed, f.publisher.Events[len(f.publisher.Events)-1].EventType)
}

func TestLogin_BlockedAccount(t *testing.T) {
	f := newAuthFixture()
	user := f.verifiedUser()
	user.IsBlocked = true
	f.userRepo.GetUserByPhoneFunc = func(ctx context.Context, phoneNumber string) (*models.User, error) {
		return user, nil
	}

	_, err := f.auth.Login(context.Background(),
		&service.LoginRequest{PhoneNumber: "0712345678", Password: "secret123"}, "")
	assert.ErrorIs(t, err, service.ErrAccountBlocked)
}

func TestLogin_UnverifiedAccountGetsNoSession(t *testing.T) {
	f := newAuthFixture()
	user := f.verifiedUser()
	user.IsAccountVerified = false
	f.userRepo.GetUserByPhoneFunc = func(ctx context.Context, phoneNumber string) (*models.User, error) {
		return user, nil
	}

	saved := false
	f.store.SaveFunc = func(ctx context.Context, sessionID string, claims *models.SessionClaims, ttl time.Duration) error {
		saved = true
		return nil
	}

	_, err := f.auth.Login(context.Background(),
		&service.LoginRequest{PhoneNumber: "0712345678", Password: "secret123"}, "")

	assert.ErrorIs(t, err, service.ErrAccountUnverified)
	assert.False(t, saved)
}

func TestLogin_RateLimited(t *testing.T) {
	f := newAuthFixture()
	f.limiter.AllowFunc = func(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
		return false, nil
	}

	_, err := f.auth.Login(context.Background(),
		&service.LoginRequest{PhoneNumber: "0712345678", Password: "secret123"}, "")
	assert.ErrorIs(t, err, service.ErrRateLimited)
}

func TestVerifyPhone(t *testing.T) {
	f := newAuthFixture()
	expiry := time.Now().UTC().Add(10 * time.Minute)
	user := &models.User{
		UserID:             "u-1",
		PhoneNumber:        "0712345678",
		VerifyOTPCode:      "314159",
		VerifyOTPExpiresAt: &expiry,
	}
	f.userRepo.GetUserByPhoneFunc = func(ctx context.Context, phoneNumber string) (*models.User, error) {
		return user, nil
	}

	var verified string
	f.userRepo.MarkVerifiedFunc = func(ctx context.Context, userID string) error {
		verified = userID
		return nil
	}

	_, err := f.auth.VerifyPhone(context.Background(),
		&service.VerifyPhoneRequest{PhoneNumber: "0712345678", Code: "271828"})
	assert.ErrorIs(t, err, service.ErrOTPInvalid)
	assert.Empty(t, verified)

	result, err := f.auth.VerifyPhone(context.Background(),
		&service.VerifyPhoneRequest{PhoneNumber: "0712345678", Code: "314159"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", verified)
	assert.NotEmpty(t, result.SessionID)
	assert.True(t, result.User.IsAccountVerified)
}

func TestVerifyPhone_EstablishesSession(t *testing.T) {
	f := newAuthFixture()
	expiry := time.Now().UTC().Add(10 * time.Minute)
	user := &models.User{
		UserID:             "u-1",
		PhoneNumber:        "0712345678",
		Role:               models.RoleStudent,
		VerifyOTPCode:      "314159",
		VerifyOTPExpiresAt: &expiry,
	}
	f.userRepo.GetUserByPhoneFunc = func(ctx context.Context, phoneNumber string) (*models.User, error) {
		return user, nil
	}

	var savedClaims *models.SessionClaims
	f.store.SaveFunc = func(ctx context.Context, sessionID string, claims *models.SessionClaims, ttl time.Duration) error {
		savedClaims = claims
		return nil
	}

	result, err := f.auth.VerifyPhone(context.Background(),
		&service.VerifyPhoneRequest{PhoneNumber: "0712345678", Code: "314159"})
	require.NoError(t, err)

	// Verifying the phone is also the first login.
	require.NotNil(t, savedClaims)
	assert.Equal(t, "u-1", savedClaims.UserID)
	assert.Equal(t, models.RoleStudent, savedClaims.Role)
	assert.NotEmpty(t, result.SessionID)

	require.NotEmpty(t, f.publisher.Events)
	last := f.publisher.Events[len(f.publisher.Events)-1]
	assert.Equal(t, models.EventPhoneVerified, last.EventType)
	assert.Equal(t, result.SessionID, last.SessionID)
}

func TestVerifyPhone_AlreadyVerified(t *testing.T) {
	f := newAuthFixture()
	f.userRepo.GetUserByPhoneFunc = func(ctx context.Context, phoneNumber string) (*models.User, error) {
		return &models.User{UserID: "u-1", IsAccountVerified: true}, nil
	}

	_, err := f.auth.VerifyPhone(context.Background(),
		&service.VerifyPhoneRequest{PhoneNumber: "0712345678", Code: "314159"})
	assert.ErrorIs(t, err, service.ErrAlreadyVerified)
}

func TestRequestVerifyOTP_AlreadyVerified(t *testing.T) {
	f := newAuthFixture()
	f.userRepo.GetUserByPhoneFunc = func(ctx context.Context, phoneNumber string) (*models.User, error) {
		return &models.User{UserID: "u-1", IsAccountVerified: true}, nil
	}

	err := f.auth.RequestVerifyOTP(context.Background(), "0712345678")
	assert.ErrorIs(t, err, service.ErrAlreadyVerified)
}

func TestResetPassword_LogsOutEverywhere(t *testing.T) {
	f := newAuthFixture()
	expiry := time.Now().UTC().Add(10 * time.Minute)
	user := &models.User{
		UserID:            "u-1",
		PhoneNumber:       "0712345678",
		ResetOTPCode:      "271828",
		ResetOTPExpiresAt: &expiry,
	}
	f.userRepo.GetUserByPhoneFunc = func(ctx context.Context, phoneNumber string) (*models.User, error) {
		return user, nil
	}

	var newHash string
	f.userRepo.UpdatePasswordFunc = func(ctx context.Context, userID, passwordHash string) error {
		newHash = passwordHash
		return nil
	}

	f.store.ActiveSessionIDFunc = func(ctx context.Context, userID string) (string, error) {
		return "sid-1", nil
	}
	destroyed := false
	f.store.DestroyFunc = func(ctx context.Context, sessionID, userID string) error {
		destroyed = true
		return nil
	}

	err := f.auth.ResetPassword(context.Background(), &service.ResetPasswordRequest{
		PhoneNumber: "0712345678",
		Code:        "271828",
		NewPassword: "brand-new-pass",
	})

	require.NoError(t, err)
	assert.NoError(t, f.hasher.VerifyPassword(newHash, "brand-new-pass"))
	assert.True(t, destroyed)
}

func TestResetPassword_WrongCode(t *testing.T) {
	f := newAuthFixture()
	expiry := time.Now().UTC().Add(10 * time.Minute)
	f.userRepo.GetUserByPhoneFunc = func(ctx context.Context, phoneNumber string) (*models.User, error) {
		return &models.User{
			UserID:            "u-1",
			ResetOTPCode:      "271828",
			ResetOTPExpiresAt: &expiry,
		}, nil
	}

	updated := false
	f.userRepo.UpdatePasswordFunc = func(ctx context.Context, userID, passwordHash string) error {
		updated = true
		return nil
	}

	err := f.auth.ResetPassword(context.Background(), &service.ResetPasswordRequest{
		PhoneNumber: "0712345678",
		Code:        "000000",
		NewPassword: "brand-new-pass",
	})

	assert.ErrorIs(t, err, service.ErrOTPInvalid)
	assert.False(t, updated)
}

func TestGetProfile_DecryptsNationalID(t *testing.T) {
	f := newAuthFixture()

	var stored *models.User
	f.userRepo.CreateUserFunc = func(ctx context.Context, user *models.User) error {
		user.UserID = "u-1"
		stored = user
		return nil
	}
	_, err := f.auth.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	f.userRepo.GetUserByIDFunc = func(ctx context.Context, userID string) (*models.User, error) {
		return stored, nil
	}

	_, nic, err := f.auth.GetProfile(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "200012345678", nic)
}
