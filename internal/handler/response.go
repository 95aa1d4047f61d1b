package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"lms-service/internal/service"
	"lms-service/internal/sms"
	"lms-service/internal/util"
)

// Response codes. Clients branch on Code, not on the human message, so
// these are part of the API contract.
const (
	CodeOK                  = "OK"
	CodeRegistered          = "REGISTERED"
	CodeRegisteredOTPFailed = "REGISTERED_OTP_FAILED"
	CodeOTPSent             = "OTP_SENT"
	CodeVerified            = "VERIFIED"
	CodeAlreadyVerified     = "ALREADY_VERIFIED"
	CodeOTPInvalid          = "OTP_INVALID"
	CodeOTPExpired          = "OTP_EXPIRED"
	CodeOTPDeliveryFailed   = "OTP_DELIVERY_FAILED"
	CodeUnverified          = "UNVERIFIED"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeBlocked             = "BLOCKED"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeRateLimited         = "RATE_LIMITED"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeDuplicatePhone      = "DUPLICATE_PHONE"
	CodeDuplicateNIC        = "DUPLICATE_NIC"
	CodeAlreadyEnrolled     = "ALREADY_ENROLLED"
	CodeNotEnrolled         = "NOT_ENROLLED"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeNotFound            = "NOT_FOUND"
	CodePasswordReset       = "PASSWORD_RESET"
	CodeLoggedOut           = "LOGGED_OUT"
	CodeInternalError       = "INTERNAL_ERROR"
)

// Response is the standard API envelope.
type Response struct {
	Success bool        `json:"success"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func successResponse(code string, data interface{}, message string) Response {
	return Response{
		Success: true,
		Code:    code,
		Data:    data,
		Message: message,
	}
}

func errorResponse(code string, err error, message string) Response {
	resp := Response{
		Success: false,
		Code:    code,
		Message: message,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

func respondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		util.Error("Failed to encode JSON response", util.ErrorField(err))
	}
}

func respondWithError(w http.ResponseWriter, err error, message string) {
	statusCode, code := classifyError(err)
	if statusCode >= http.StatusInternalServerError {
		util.Error("HTTP error response",
			util.ErrorField(err),
			util.Int("status_code", statusCode))
	} else {
		util.Warn("HTTP error response",
			util.ErrorField(err),
			util.Int("status_code", statusCode),
			util.String("code", code))
	}
	respondWithJSON(w, statusCode, errorResponse(code, err, message))
}

// classifyError maps domain errors onto an HTTP status and response code.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, CodeValidationFailed
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrEnrollmentNotFound),
		errors.Is(err, service.ErrPaymentNotFound),
		errors.Is(err, service.ErrNoMeeting):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, service.ErrPhoneAlreadyExists):
		return http.StatusConflict, CodeDuplicatePhone
	case errors.Is(err, service.ErrNICAlreadyExists):
		return http.StatusConflict, CodeDuplicateNIC
	case errors.Is(err, service.ErrUserAlreadyExists):
		return http.StatusConflict, CodeAlreadyExists
	case errors.Is(err, service.ErrAlreadyEnrolled):
		return http.StatusConflict, CodeAlreadyEnrolled
	case errors.Is(err, service.ErrAlreadyVerified):
		return http.StatusConflict, CodeAlreadyVerified
	case errors.Is(err, service.ErrAccountUnverified):
		// Conflict beats unauthorized here: the password was right, the
		// account state is what blocks the login.
		return http.StatusConflict, CodeUnverified
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, CodeInvalidCredentials
	case errors.Is(err, service.ErrOTPInvalid):
		return http.StatusUnauthorized, CodeOTPInvalid
	case errors.Is(err, service.ErrOTPExpired):
		return http.StatusGone, CodeOTPExpired
	case errors.Is(err, service.ErrSessionInvalid):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, service.ErrAccountBlocked):
		return http.StatusForbidden, CodeBlocked
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, service.ErrNotEnrolled):
		return http.StatusForbidden, CodeNotEnrolled
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests, CodeRateLimited
	case errors.Is(err, sms.ErrDeliveryFailed):
		return http.StatusBadGateway, CodeOTPDeliveryFailed
	default:
		return http.StatusInternalServerError, CodeInternalError
	}
}
