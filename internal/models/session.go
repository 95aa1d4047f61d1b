package models

// SessionClaims is the minimal identity payload stored against a session
// id. Everything else is re-read from the users table on demand.
type SessionClaims struct {
	UserID      string `json:"user_id"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
	IsAdmin     bool   `json:"is_admin"`
}
