package redis

import "strconv"

// Key prefixes. Session keys follow the sid/user pairing used by the
// single-session rule: session:<sid> holds the claims, user_session:<uid>
// points at the one sid currently allowed to resolve.
const (
	sessionPrefix     = "session:"
	userSessionPrefix = "user_session:"
	coursesPrefix     = "courses:year:"
	categoriesPrefix  = "categories:year:"
	loginRatePrefix   = "rate:login:"
	otpRatePrefix     = "rate:otp:"
)

func sessionKey(sessionID string) string {
	return sessionPrefix + sessionID
}

func userSessionKey(userID string) string {
	return userSessionPrefix + userID
}

func coursesKey(year int) string {
	return coursesPrefix + strconv.Itoa(year)
}

func categoriesKey(year int) string {
	return categoriesPrefix + strconv.Itoa(year)
}

// LoginRateKey identifies the per-phone login attempt counter.
func LoginRateKey(phoneNumber string) string {
	return loginRatePrefix + phoneNumber
}

// OTPRateKey identifies the per-phone code issuance counter.
func OTPRateKey(phoneNumber string) string {
	return otpRatePrefix + phoneNumber
}
