package models

import "time"

// Course is a catalog entry. ImageKey is the object-store key of the cover
// image; MeetingID names the conference room used for live classes.
type Course struct {
	CourseID    string    `db:"course_id" json:"courseId"`
	Year        int       `db:"year" json:"year"`
	Title       string    `db:"title" json:"title"`
	Subject     string    `db:"subject" json:"subject"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	Instructor  string    `db:"instructor" json:"instructor"`
	Price       int64     `db:"price" json:"price"`
	ImageKey    string    `db:"image_key" json:"imageKey,omitempty"`
	MeetingID   string    `db:"meeting_id" json:"-"`
	Visible     bool      `db:"visible" json:"visible"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Category is an admin-managed grouping for the catalog, ordered by
// Position within a year.
type Category struct {
	CategoryID string    `db:"category_id" json:"categoryId"`
	Year       int       `db:"year" json:"year"`
	Name       string    `db:"name" json:"name"`
	Position   int       `db:"position" json:"position"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
