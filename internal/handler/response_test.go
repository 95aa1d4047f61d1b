package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"lms-service/internal/service"
	"lms-service/internal/sms"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{service.ErrInvalidInput, http.StatusBadRequest, CodeValidationFailed},
		{service.ErrUserNotFound, http.StatusNotFound, CodeNotFound},
		{service.ErrCourseNotFound, http.StatusNotFound, CodeNotFound},
		{service.ErrNoMeeting, http.StatusNotFound, CodeNotFound},
		{service.ErrUserAlreadyExists, http.StatusConflict, CodeAlreadyExists},
		// The two duplicate-account conflicts name the colliding field.
		{service.ErrPhoneAlreadyExists, http.StatusConflict, CodeDuplicatePhone},
		{service.ErrNICAlreadyExists, http.StatusConflict, CodeDuplicateNIC},
		{service.ErrAlreadyEnrolled, http.StatusConflict, CodeAlreadyEnrolled},
		// A correct password on an unverified account answers with the
		// verification flow, not a credentials failure.
		{service.ErrAccountUnverified, http.StatusConflict, CodeUnverified},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
		{service.ErrSessionInvalid, http.StatusUnauthorized, CodeUnauthorized},
		{service.ErrOTPInvalid, http.StatusUnauthorized, CodeOTPInvalid},
		{service.ErrOTPExpired, http.StatusGone, CodeOTPExpired},
		{service.ErrAccountBlocked, http.StatusForbidden, CodeBlocked},
		{service.ErrPermissionDenied, http.StatusForbidden, CodeForbidden},
		{service.ErrNotEnrolled, http.StatusForbidden, CodeNotEnrolled},
		{service.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited},
		{sms.ErrDeliveryFailed, http.StatusBadGateway, CodeOTPDeliveryFailed},
		{errors.New("scylla timeout"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			status, code := classifyError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestClassifyError_Wrapped(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), service.ErrRateLimited)
	status, code := classifyError(wrapped)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, CodeRateLimited, code)
}
