package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	"lms-service/internal/config"
	"lms-service/internal/models"
	"lms-service/internal/repository/scylla"
	"lms-service/internal/sms"
	"lms-service/internal/util"
)

const (
	otpMin = 100000
	otpMax = 999999
)

// OTPService issues and checks the one-time codes stored on the user
// record. There are two independent slots: one for phone verification and
// one for password reset, so an in-flight reset never clobbers a pending
// verification.
type OTPService struct {
	userRepo  scylla.UserRepositoryInterface
	sender    sms.Sender
	publisher EventPublisherInterface
	ttl       time.Duration
}

func NewOTPService(
	userRepo scylla.UserRepositoryInterface,
	sender sms.Sender,
	publisher EventPublisherInterface,
	cfg *config.Config,
) *OTPService {
	return &OTPService{
		userRepo:  userRepo,
		sender:    sender,
		publisher: publisher,
		ttl:       cfg.OTP.TTL,
	}
}

// GenerateCode returns a uniformly random six digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", otpMin+n.Int64()), nil
}

// IssueVerifyOTP stores a fresh verification code on the user and sends it
// by SMS. The code stays issued even if delivery ultimately fails, so the
// caller can distinguish "stored but not delivered" from a hard failure.
func (s *OTPService) IssueVerifyOTP(ctx context.Context, user *models.User) error {
	code, err := GenerateCode()
	if err != nil {
		return err
	}

	expiresAt := time.Now().UTC().Add(s.ttl)
	if err := s.userRepo.UpdateVerifyOTP(ctx, user.UserID, code, &expiresAt); err != nil {
		return err
	}
	user.VerifyOTPCode = code
	user.VerifyOTPExpiresAt = &expiresAt

	publishEvent(ctx, s.publisher, &models.AuthEvent{
		UserID:    user.UserID,
		EventType: models.EventOTPIssued,
		Detail:    "verify",
	})

	message := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
		code, int(s.ttl.Minutes()))
	if err := s.sender.Send(ctx, user.PhoneNumber, message); err != nil {
		util.Error("Verification code stored but not delivered",
			zap.String("user_id", user.UserID),
			zap.Error(err))
		return err
	}

	util.Info("Verification code issued", zap.String("user_id", user.UserID))
	return nil
}

// IssueResetOTP stores a fresh password reset code and sends it by SMS.
func (s *OTPService) IssueResetOTP(ctx context.Context, user *models.User) error {
	code, err := GenerateCode()
	if err != nil {
		return err
	}

	expiresAt := time.Now().UTC().Add(s.ttl)
	if err := s.userRepo.UpdateResetOTP(ctx, user.UserID, code, &expiresAt); err != nil {
		return err
	}
	user.ResetOTPCode = code
	user.ResetOTPExpiresAt = &expiresAt

	publishEvent(ctx, s.publisher, &models.AuthEvent{
		UserID:    user.UserID,
		EventType: models.EventOTPIssued,
		Detail:    "reset",
	})

	message := fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.",
		code, int(s.ttl.Minutes()))
	if err := s.sender.Send(ctx, user.PhoneNumber, message); err != nil {
		util.Error("Reset code stored but not delivered",
			zap.String("user_id", user.UserID),
			zap.Error(err))
		return err
	}

	util.Info("Reset code issued", zap.String("user_id", user.UserID))
	return nil
}

// CheckVerifyOTP compares the submitted code against the verification slot.
func (s *OTPService) CheckVerifyOTP(user *models.User, submitted string) error {
	return checkCode(user.VerifyOTPCode, user.VerifyOTPExpiresAt, submitted)
}

// CheckResetOTP compares the submitted code against the reset slot.
func (s *OTPService) CheckResetOTP(user *models.User, submitted string) error {
	return checkCode(user.ResetOTPCode, user.ResetOTPExpiresAt, submitted)
}

// checkCode expects an exact match after trimming surrounding whitespace.
// Expiry is reported ahead of a mismatch so the client can offer a resend.
// A code is already dead at its exact expiry instant.
func checkCode(stored string, expiresAt *time.Time, submitted string) error {
	if stored == "" || expiresAt == nil {
		return ErrOTPInvalid
	}
	if !time.Now().UTC().Before(*expiresAt) {
		return ErrOTPExpired
	}
	if strings.TrimSpace(submitted) != stored {
		return ErrOTPInvalid
	}
	return nil
}
