package models

import "time"

// Roles a user account can hold.
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// User is the account record stored in the users table. Phone number and
// national id are globally unique; the national id itself is kept encrypted
// and looked up through its deterministic hash.
type User struct {
	UserBucket          int        `db:"user_bucket" json:"-"`
	UserID              string     `db:"user_id" json:"userId"`
	PhoneNumber         string     `db:"phone_number" json:"phoneNumber"`
	NICHash             string     `db:"nic_hash" json:"-"`
	NICEncrypted        []byte     `db:"nic_encrypted" json:"-"`
	NICKeyID            string     `db:"nic_key_id" json:"-"`
	FirstName           string     `db:"first_name" json:"firstName"`
	LastName            string     `db:"last_name" json:"lastName"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	Gender              string     `db:"gender" json:"gender"`
	BirthDate           string     `db:"birth_date" json:"birthDate"`
	ExamYear            int        `db:"exam_year" json:"examYear"`
	School              string     `db:"school" json:"school"`
	District            string     `db:"district" json:"district"`
	Role                string     `db:"role" json:"role"`
	IsAdmin             bool       `db:"is_admin" json:"isAdmin"`
	IsAccountVerified   bool       `db:"is_account_verified" json:"isAccountVerified"`
	IsBlocked           bool       `db:"is_blocked" json:"isBlocked"`
	VerifyOTPCode       string     `db:"verify_otp_code" json:"-"`
	VerifyOTPExpiresAt  *time.Time `db:"verify_otp_expires_at" json:"-"`
	ResetOTPCode        string     `db:"reset_otp_code" json:"-"`
	ResetOTPExpiresAt   *time.Time `db:"reset_otp_expires_at" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updatedAt"`
}
