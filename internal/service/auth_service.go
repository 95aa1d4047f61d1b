package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"lms-service/internal/config"
	"lms-service/internal/encryption"
	"lms-service/internal/hashing"
	"lms-service/internal/models"
	"lms-service/internal/repository/redis"
	"lms-service/internal/repository/scylla"
	"lms-service/internal/sms"
	"lms-service/internal/util"
)

const (
	otpRequestLimit  = 5
	otpRequestWindow = 10 * time.Minute
)

// RegisterRequest carries a new student registration.
type RegisterRequest struct {
	FirstName   string `json:"firstName" validate:"required,personname"`
	LastName    string `json:"lastName" validate:"required,personname"`
	PhoneNumber string `json:"phoneNumber" validate:"required,phonedigits"`
	NIC         string `json:"nic" validate:"required,nic"`
	Password    string `json:"password" validate:"required,min=6"`
	Gender      string `json:"gender" validate:"required,oneof=male female"`
	BirthDate   string `json:"birthDate" validate:"required,dateonly"`
	ExamYear    int    `json:"examYear" validate:"required,examyear"`
	School      string `json:"school" validate:"omitempty,max=100"`
	District    string `json:"district" validate:"omitempty,max=50"`
}

type LoginRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,phonedigits"`
	Password    string `json:"password" validate:"required"`
}

type VerifyPhoneRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,phonedigits"`
	Code        string `json:"code" validate:"required"`
}

type ResetPasswordRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,phonedigits"`
	Code        string `json:"code" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// RegisterResult reports whether the verification code reached the phone.
// Registration itself succeeds either way.
type RegisterResult struct {
	User         *models.User
	OTPDelivered bool
}

// LoginResult carries the fresh session id alongside the user.
type LoginResult struct {
	User      *models.User
	SessionID string
}

// AuthService is the account state machine: unregistered, pending
// verification, verified. Login requires a verified, unblocked account.
type AuthService struct {
	userRepo    scylla.UserRepositoryInterface
	hasher      *hashing.Hasher
	encryption  *encryption.EncryptionManager
	otpService  *OTPService
	sessions    *SessionService
	rateLimiter redis.RateLimiterInterface
	publisher   EventPublisherInterface
	validate    *validator.Validate
	config      *config.Config
}

func NewAuthService(
	userRepo scylla.UserRepositoryInterface,
	hasher *hashing.Hasher,
	encryptionMgr *encryption.EncryptionManager,
	otpService *OTPService,
	sessions *SessionService,
	rateLimiter redis.RateLimiterInterface,
	publisher EventPublisherInterface,
	validate *validator.Validate,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		hasher:      hasher,
		encryption:  encryptionMgr,
		otpService:  otpService,
		sessions:    sessions,
		rateLimiter: rateLimiter,
		publisher:   publisher,
		validate:    validate,
		config:      cfg,
	}
}

// Register creates an unverified account and issues the first verification
// code. Duplicate phone numbers and national ids are rejected before any
// write happens.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*RegisterResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	if _, err := s.userRepo.GetUserByPhone(ctx, req.PhoneNumber); err == nil {
		return nil, ErrPhoneAlreadyExists
	} else if !errors.Is(err, scylla.ErrNotFound) {
		return nil, err
	}

	nic := NormalizeNIC(req.NIC)
	nicHash := s.hasher.NationalIDHash(nic)
	if _, err := s.userRepo.GetUserByNICHash(ctx, nicHash); err == nil {
		return nil, ErrNICAlreadyExists
	} else if !errors.Is(err, scylla.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	nicEncrypted, nicKeyID, err := s.encryption.EncryptField(ctx, nic)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		PhoneNumber:  req.PhoneNumber,
		NICHash:      nicHash,
		NICEncrypted: nicEncrypted,
		NICKeyID:     nicKeyID,
		FirstName:    util.SanitizeInput(req.FirstName),
		LastName:     util.SanitizeInput(req.LastName),
		PasswordHash: passwordHash,
		Gender:       req.Gender,
		BirthDate:    req.BirthDate,
		ExamYear:     req.ExamYear,
		School:       util.SanitizeInput(req.School),
		District:     util.SanitizeInput(req.District),
		Role:         models.RoleStudent,
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, &models.AuthEvent{
		UserID:    user.UserID,
		EventType: models.EventRegistered,
	})

	result := &RegisterResult{User: user, OTPDelivered: true}
	if err := s.otpService.IssueVerifyOTP(ctx, user); err != nil {
		if errors.Is(err, sms.ErrDeliveryFailed) {
			// Account exists and the code is stored; the client offers
			// a resend instead of re-registering.
			result.OTPDelivered = false
			return result, nil
		}
		return nil, err
	}
	return result, nil
}

// RequestVerifyOTP re-sends a verification code to an unverified account.
func (s *AuthService) RequestVerifyOTP(ctx context.Context, phoneNumber string) error {
	allowed, err := s.rateLimiter.Allow(ctx, redis.OTPRateKey(phoneNumber), otpRequestLimit, otpRequestWindow)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrRateLimited
	}

	user, err := s.userRepo.GetUserByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.IsAccountVerified {
		return ErrAlreadyVerified
	}

	return s.otpService.IssueVerifyOTP(ctx, user)
}

// VerifyPhone checks the submitted code, flips the account to verified and
// logs the student straight in, so the first session starts without a
// second round trip through the login form.
func (s *AuthService) VerifyPhone(ctx context.Context, req *VerifyPhoneRequest) (*LoginResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	user, err := s.userRepo.GetUserByPhone(ctx, req.PhoneNumber)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.IsAccountVerified {
		return nil, ErrAlreadyVerified
	}

	if err := s.otpService.CheckVerifyOTP(user, req.Code); err != nil {
		return nil, err
	}
	if err := s.userRepo.MarkVerified(ctx, user.UserID); err != nil {
		return nil, err
	}
	user.IsAccountVerified = true

	sessionID, err := s.sessions.Establish(ctx, &models.SessionClaims{
		UserID:      user.UserID,
		PhoneNumber: user.PhoneNumber,
		Role:        user.Role,
		IsAdmin:     user.IsAdmin,
	})
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, &models.AuthEvent{
		UserID:    user.UserID,
		EventType: models.EventPhoneVerified,
		SessionID: sessionID,
	})
	return &LoginResult{User: user, SessionID: sessionID}, nil
}

// Login authenticates by phone and password and establishes the session.
// Unverified accounts are refused without leaking whether the password was
// right, and no session is created for them.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest, ipAddress string) (*LoginResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	allowed, err := s.rateLimiter.Allow(ctx, redis.LoginRateKey(req.PhoneNumber),
		s.config.RateLimit.LoginLimit, s.config.RateLimit.LoginWindow)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrRateLimited
	}

	user, err := s.userRepo.GetUserByPhone(ctx, req.PhoneNumber)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.IsBlocked {
		return nil, ErrAccountBlocked
	}

	if err := s.hasher.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, hashing.ErrPasswordMismatch) {
			publishEvent(ctx, s.publisher, &models.AuthEvent{
				UserID:    user.UserID,
				EventType: models.EventLoginFailed,
				IPAddress: ipAddress,
			})
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// Checked after the password so a correct login on an unverified
	// account can be answered with the verification flow.
	if !user.IsAccountVerified {
		return nil, ErrAccountUnverified
	}

	sessionID, err := s.sessions.Establish(ctx, &models.SessionClaims{
		UserID:      user.UserID,
		PhoneNumber: user.PhoneNumber,
		Role:        user.Role,
		IsAdmin:     user.IsAdmin,
	})
	if err != nil {
		return nil, err
	}

	if err := s.rateLimiter.Reset(ctx, redis.LoginRateKey(req.PhoneNumber)); err != nil {
		util.Warn("Failed to reset login rate counter", zap.Error(err))
	}

	publishEvent(ctx, s.publisher, &models.AuthEvent{
		UserID:    user.UserID,
		EventType: models.EventLogin,
		SessionID: sessionID,
		IPAddress: ipAddress,
	})

	return &LoginResult{User: user, SessionID: sessionID}, nil
}

// Logout destroys the presented session. Unknown sids succeed silently.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	claims, err := s.sessions.store.Get(ctx, sessionID)
	if err == nil {
		publishEvent(ctx, s.publisher, &models.AuthEvent{
			UserID:    claims.UserID,
			EventType: models.EventLogout,
			SessionID: sessionID,
		})
	}
	return s.sessions.Destroy(ctx, sessionID)
}

// RequestPasswordReset issues a reset code. Works for unverified accounts
// too, since a student who lost their password may also have lost the
// verification SMS.
func (s *AuthService) RequestPasswordReset(ctx context.Context, phoneNumber string) error {
	allowed, err := s.rateLimiter.Allow(ctx, redis.OTPRateKey(phoneNumber), otpRequestLimit, otpRequestWindow)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrRateLimited
	}

	user, err := s.userRepo.GetUserByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.IsBlocked {
		return ErrAccountBlocked
	}

	return s.otpService.IssueResetOTP(ctx, user)
}

// ResetPassword swaps the password hash after checking the reset code, then
// logs the user out everywhere.
func (s *AuthService) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return validationError(err)
	}

	user, err := s.userRepo.GetUserByPhone(ctx, req.PhoneNumber)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.otpService.CheckResetOTP(user, req.Code); err != nil {
		return err
	}

	passwordHash, err := s.hasher.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.UserID, passwordHash); err != nil {
		return err
	}

	if err := s.sessions.DestroyForUser(ctx, user.UserID); err != nil {
		util.Warn("Failed to destroy sessions after password reset",
			zap.String("user_id", user.UserID),
			zap.Error(err))
	}

	publishEvent(ctx, s.publisher, &models.AuthEvent{
		UserID:    user.UserID,
		EventType: models.EventPasswordReset,
	})
	return nil
}

// GetProfile returns the user with the national id decrypted for display.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.User, string, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", err
	}

	nic := ""
	if len(user.NICEncrypted) > 0 {
		nic, err = s.encryption.DecryptField(ctx, user.NICEncrypted)
		if err != nil {
			util.Error("Failed to decrypt national id",
				zap.String("user_id", userID),
				zap.Error(err))
			nic = ""
		}
	}
	return user, nic, nil
}
