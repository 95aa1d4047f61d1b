package service

import (
	"errors"
	"fmt"
)

// Domain errors. Handlers map these onto HTTP statuses and response codes,
// so services never reason about transport concerns.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountUnverified  = errors.New("account not verified")
	ErrAccountBlocked     = errors.New("account is blocked")
	ErrAlreadyVerified    = errors.New("account already verified")
	ErrOTPInvalid         = errors.New("verification code invalid")
	ErrOTPExpired         = errors.New("verification code expired")
	ErrRateLimited        = errors.New("too many attempts")
	ErrSessionInvalid     = errors.New("session invalid")
	ErrCourseNotFound     = errors.New("course not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrAlreadyEnrolled    = errors.New("already enrolled")
	ErrNotEnrolled        = errors.New("not enrolled")
	ErrPermissionDenied   = errors.New("permission denied")
)

// Duplicate-account errors name the field that collided while still
// matching ErrUserAlreadyExists, so callers can branch either way.
var (
	ErrPhoneAlreadyExists = fmt.Errorf("phone number taken: %w", ErrUserAlreadyExists)
	ErrNICAlreadyExists   = fmt.Errorf("national id taken: %w", ErrUserAlreadyExists)
)
