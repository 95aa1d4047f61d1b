package models

import "time"

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentConfirmed = "confirmed"
	PaymentRejected  = "rejected"
)

// Payment records a submitted course payment awaiting admin review.
type Payment struct {
	PaymentID      string     `db:"payment_id" json:"paymentId"`
	UserID         string     `db:"user_id" json:"userId"`
	CourseID       string     `db:"course_id" json:"courseId"`
	Year           int        `db:"year" json:"year"`
	Amount         int64      `db:"amount" json:"amount"`
	Method         string     `db:"method" json:"method"`
	Status         string     `db:"status" json:"status"`
	Reference      string     `db:"reference" json:"reference,omitempty"`
	TrackingNumber string     `db:"tracking_number" json:"trackingNumber,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// PaymentReportRow is one aggregate row of the admin payment report,
// read from the analytics store.
type PaymentReportRow struct {
	CourseID string `json:"courseId"`
	Status   string `json:"status"`
	Count    uint64 `json:"count"`
	Total    int64  `json:"total"`
}
