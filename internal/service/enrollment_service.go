package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"lms-service/internal/models"
	"lms-service/internal/repository/scylla"
	"lms-service/internal/util"
)

// EnrollmentService tracks which students can reach which courses. New
// enrollments start pending and are activated when a payment is confirmed
// or an admin enrolls the student directly.
type EnrollmentService struct {
	enrollmentRepo scylla.EnrollmentRepositoryInterface
	courseRepo     scylla.CourseRepositoryInterface
}

func NewEnrollmentService(
	enrollmentRepo scylla.EnrollmentRepositoryInterface,
	courseRepo scylla.CourseRepositoryInterface,
) *EnrollmentService {
	return &EnrollmentService{
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
	}
}

// Enroll creates a pending enrollment for a visible course. Re-enrolling
// over an expired one is allowed and resets it to pending.
func (s *EnrollmentService) Enroll(ctx context.Context, userID string, year int, courseID string) (*models.Enrollment, error) {
	course, err := s.courseRepo.GetCourse(ctx, year, courseID)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !course.Visible {
		return nil, ErrCourseNotFound
	}

	existing, err := s.enrollmentRepo.GetEnrollment(ctx, userID, courseID)
	if err != nil && !errors.Is(err, scylla.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status != models.EnrollmentExpired {
		return nil, ErrAlreadyEnrolled
	}

	enrollment := &models.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		Year:     year,
		Status:   models.EnrollmentPending,
	}
	if existing != nil {
		enrollment.CreatedAt = existing.CreatedAt
	}

	if err := s.enrollmentRepo.UpsertEnrollment(ctx, enrollment); err != nil {
		return nil, err
	}

	util.Info("Enrollment created",
		zap.String("user_id", userID),
		zap.String("course_id", courseID))
	return enrollment, nil
}

// Activate flips an enrollment to active with the given access expiry.
func (s *EnrollmentService) Activate(ctx context.Context, userID, courseID string, expiresAt time.Time) error {
	enrollment, err := s.enrollmentRepo.GetEnrollment(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}

	enrollment.Status = models.EnrollmentActive
	enrollment.ExpiresAt = &expiresAt
	return s.enrollmentRepo.UpsertEnrollment(ctx, enrollment)
}

// CheckAccess answers whether the user can open course material right now.
// An enrollment past its expiry is lazily marked expired on first sight.
func (s *EnrollmentService) CheckAccess(ctx context.Context, userID, courseID string) error {
	enrollment, err := s.enrollmentRepo.GetEnrollment(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return ErrNotEnrolled
		}
		return err
	}

	if enrollment.Status != models.EnrollmentActive {
		return ErrNotEnrolled
	}
	if enrollment.ExpiresAt != nil && time.Now().UTC().After(*enrollment.ExpiresAt) {
		enrollment.Status = models.EnrollmentExpired
		if err := s.enrollmentRepo.UpsertEnrollment(ctx, enrollment); err != nil {
			util.Warn("Failed to mark enrollment expired",
				zap.String("user_id", userID),
				zap.String("course_id", courseID),
				zap.Error(err))
		}
		return ErrNotEnrolled
	}
	return nil
}

func (s *EnrollmentService) ListForUser(ctx context.Context, userID string) ([]*models.Enrollment, error) {
	return s.enrollmentRepo.ListEnrollmentsByUser(ctx, userID)
}

func (s *EnrollmentService) ListForCourse(ctx context.Context, courseID string) ([]*models.Enrollment, error) {
	return s.enrollmentRepo.ListEnrollmentsByCourse(ctx, courseID)
}

// SetTrackingNumber records the shipping reference for posted material.
func (s *EnrollmentService) SetTrackingNumber(ctx context.Context, userID, courseID, trackingNumber string) error {
	enrollment, err := s.enrollmentRepo.GetEnrollment(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}

	enrollment.TrackingNumber = trackingNumber
	return s.enrollmentRepo.UpsertEnrollment(ctx, enrollment)
}

// Remove deletes the enrollment outright, an admin correction path.
func (s *EnrollmentService) Remove(ctx context.Context, userID, courseID string) error {
	return s.enrollmentRepo.DeleteEnrollment(ctx, userID, courseID)
}
