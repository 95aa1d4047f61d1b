package models

import "time"

// Enrollment statuses.
const (
	EnrollmentPending = "pending"
	EnrollmentActive  = "active"
	EnrollmentExpired = "expired"
)

// Enrollment links a user to a course. ExpiresAt bounds access; a tracking
// number is attached when course material is posted.
type Enrollment struct {
	UserID         string     `db:"user_id" json:"userId"`
	CourseID       string     `db:"course_id" json:"courseId"`
	Year           int        `db:"year" json:"year"`
	Status         string     `db:"status" json:"status"`
	ExpiresAt      *time.Time `db:"expires_at" json:"expiresAt,omitempty"`
	TrackingNumber string     `db:"tracking_number" json:"trackingNumber,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// BulkEnrollmentResult accumulates the outcome of one spreadsheet row.
type BulkEnrollmentResult struct {
	Row         int    `json:"row"`
	PhoneNumber string `json:"phoneNumber"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}
