package service_test

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"lms-service/internal/config"
	"lms-service/internal/mocks"
	"lms-service/internal/models"
	"lms-service/internal/service"
	"lms-service/internal/sms"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "development",
		OTP: config.OTPConfig{
			TTL: 15 * time.Minute,
		},
		Session: config.SessionConfig{
			CookieName:   "sid",
			CookieMaxAge: 24 * time.Hour,
		},
		Hashing: config.HashingConfig{
			BcryptCost: bcrypt.MinCost,
		},
		RateLimit: config.RateLimitConfig{
			LoginLimit:  10,
			LoginWindow: 15 * time.Minute,
		},
		Meeting: config.MeetingConfig{
			JWTSecret: "test-signing-secret",
			TokenTTL:  15 * time.Minute,
		},
	}
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := service.GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestIssueVerifyOTP_StoresAndSends(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()

	var storedCode string
	var storedExpiry *time.Time
	userRepo.UpdateVerifyOTPFunc = func(ctx context.Context, userID, code string, expiresAt *time.Time) error {
		storedCode = code
		storedExpiry = expiresAt
		return nil
	}

	sender := mocks.NewMockSMSSender()
	otps := service.NewOTPService(userRepo, sender, nil, testConfig())

	user := &models.User{UserID: "u-1", PhoneNumber: "0712345678"}
	require.NoError(t, otps.IssueVerifyOTP(context.Background(), user))

	require.Len(t, storedCode, 6)
	require.NotNil(t, storedExpiry)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), *storedExpiry, time.Minute)

	assert.Equal(t, storedCode, user.VerifyOTPCode)
	require.Len(t, sender.Sent, 1)
	assert.Contains(t, sender.Sent[0], storedCode)
}

func TestIssueVerifyOTP_SurvivesDeliveryFailure(t *testing.T) {
	userRepo := mocks.NewMockUserRepository()

	var stored bool
	userRepo.UpdateVerifyOTPFunc = func(ctx context.Context, userID, code string, expiresAt *time.Time) error {
		stored = true
		return nil
	}

	sender := mocks.NewMockSMSSender()
	sender.SendFunc = func(ctx context.Context, toNumber, message string) error {
		return sms.ErrDeliveryFailed
	}

	otps := service.NewOTPService(userRepo, sender, nil, testConfig())

	user := &models.User{UserID: "u-1", PhoneNumber: "0712345678"}
	err := otps.IssueVerifyOTP(context.Background(), user)

	// The code is on the record even though the SMS never arrived, so the
	// student can ask for a resend instead of registering again.
	require.ErrorIs(t, err, sms.ErrDeliveryFailed)
	assert.True(t, stored)
	assert.NotEmpty(t, user.VerifyOTPCode)
}

func TestCheckVerifyOTP(t *testing.T) {
	otps := service.NewOTPService(mocks.NewMockUserRepository(), mocks.NewMockSMSSender(), nil, testConfig())

	future := time.Now().UTC().Add(10 * time.Minute)
	past := time.Now().UTC().Add(-time.Minute)
	now := time.Now().UTC()

	tests := []struct {
		name      string
		stored    string
		expiresAt *time.Time
		submitted string
		wantErr   error
	}{
		{"exact match", "314159", &future, "314159", nil},
		{"surrounding whitespace trimmed", "314159", &future, "  314159\n", nil},
		{"wrong code", "314159", &future, "271828", service.ErrOTPInvalid},
		{"internal whitespace not accepted", "314159", &future, "314 159", service.ErrOTPInvalid},
		{"no code issued", "", &future, "314159", service.ErrOTPInvalid},
		{"no expiry recorded", "314159", nil, "314159", service.ErrOTPInvalid},
		{"expired", "314159", &past, "314159", service.ErrOTPExpired},
		// Dead at the expiry instant itself, not one tick later.
		{"expired at the boundary", "314159", &now, "314159", service.ErrOTPExpired},
		// Expiry wins over a mismatch so the client offers a resend.
		{"expired beats mismatch", "314159", &past, "271828", service.ErrOTPExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &models.User{
				VerifyOTPCode:      tt.stored,
				VerifyOTPExpiresAt: tt.expiresAt,
			}
			err := otps.CheckVerifyOTP(user, tt.submitted)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCheckResetOTP_UsesResetSlot(t *testing.T) {
	otps := service.NewOTPService(mocks.NewMockUserRepository(), mocks.NewMockSMSSender(), nil, testConfig())

	future := time.Now().UTC().Add(10 * time.Minute)
	user := &models.User{
		VerifyOTPCode:      "111111",
		VerifyOTPExpiresAt: &future,
		ResetOTPCode:       "222222",
		ResetOTPExpiresAt:  &future,
	}

	// The two slots are independent; a verify code cannot reset a password.
	assert.ErrorIs(t, otps.CheckResetOTP(user, "111111"), service.ErrOTPInvalid)
	assert.NoError(t, otps.CheckResetOTP(user, "222222"))
}

func TestIssueResetOTP_MessageMentionsReset(t *testing.T) {
	sender := mocks.NewMockSMSSender()
	otps := service.NewOTPService(mocks.NewMockUserRepository(), sender, nil, testConfig())

	user := &models.User{UserID: "u-1", PhoneNumber: "0712345678"}
	require.NoError(t, otps.IssueResetOTP(context.Background(), user))

	require.Len(t, sender.Sent, 1)
	assert.True(t, strings.Contains(sender.Sent[0], "reset"))
	assert.NotEmpty(t, user.ResetOTPCode)
}
