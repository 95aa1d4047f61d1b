package models

import "time"

// Auth event types published to the audit topic.
const (
	EventRegistered    = "registered"
	EventLogin         = "login"
	EventLoginFailed   = "login_failed"
	EventLogout        = "logout"
	EventOTPIssued     = "otp_issued"
	EventPhoneVerified = "phone_verified"
	EventPasswordReset = "password_reset"
	EventUserBlocked   = "user_blocked"
)

// AuthEvent is the audit record emitted on authentication state changes.
type AuthEvent struct {
	UserID     string    `json:"user_id"`
	EventType  string    `json:"event_type"`
	SessionID  string    `json:"session_id,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
