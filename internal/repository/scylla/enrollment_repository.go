package scylla

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"lms-service/internal/models"
	"lms-service/internal/util"
)

type EnrollmentRepositoryInterface interface {
	UpsertEnrollment(ctx context.Context, enrollment *models.Enrollment) error
	GetEnrollment(ctx context.Context, userID, courseID string) (*models.Enrollment, error)
	ListEnrollmentsByUser(ctx context.Context, userID string) ([]*models.Enrollment, error)
	ListEnrollmentsByCourse(ctx context.Context, courseID string) ([]*models.Enrollment, error)
	DeleteEnrollment(ctx context.Context, userID, courseID string) error
}

// EnrollmentRepository keeps two denormalized tables, one keyed by user and
// one by course, written together in a logged batch.
type EnrollmentRepository struct {
	client *ScyllaClient
}

var _ EnrollmentRepositoryInterface = (*EnrollmentRepository)(nil)

func NewEnrollmentRepository(client *ScyllaClient) *EnrollmentRepository {
	return &EnrollmentRepository{client: client}
}

func (r *EnrollmentRepository) UpsertEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	now := time.Now().UTC()
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = now
	}
	enrollment.UpdatedAt = now

	batch := r.client.Session.NewBatch(gocql.LoggedBatch).WithContext(ctx)

	batch.Query(r.client.Prepared.UpsertEnrollmentByUser.Statement(),
		enrollment.UserID, enrollment.CourseID, enrollment.Year, enrollment.Status,
		enrollment.ExpiresAt, enrollment.TrackingNumber, enrollment.CreatedAt, enrollment.UpdatedAt)

	batch.Query(r.client.Prepared.UpsertEnrollmentByCourse.Statement(),
		enrollment.CourseID, enrollment.UserID, enrollment.Year, enrollment.Status,
		enrollment.ExpiresAt, enrollment.TrackingNumber, enrollment.CreatedAt, enrollment.UpdatedAt)

	if err := r.client.ExecuteBatch(batch); err != nil {
		util.Error("Failed to upsert enrollment",
			zap.String("user_id", enrollment.UserID),
			zap.String("course_id", enrollment.CourseID),
			zap.Error(err))
		return fmt.Errorf("failed to upsert enrollment: %w", err)
	}
	return nil
}

func (r *EnrollmentRepository) GetEnrollment(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	enrollment := &models.Enrollment{}
	var expires time.Time
	query := r.client.Prepared.GetEnrollment.Bind(userID, courseID).WithContext(ctx)

	err := r.client.ScanWithRetry(query,
		&enrollment.UserID, &enrollment.CourseID, &enrollment.Year, &enrollment.Status,
		&expires, &enrollment.TrackingNumber, &enrollment.CreatedAt, &enrollment.UpdatedAt)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, fmt.Errorf("enrollment %s/%s: %w", userID, courseID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	if !expires.IsZero() {
		enrollment.ExpiresAt = &expires
	}
	return enrollment, nil
}

func (r *EnrollmentRepository) ListEnrollmentsByUser(ctx context.Context, userID string) ([]*models.Enrollment, error) {
	iter := r.client.Prepared.ListEnrollmentsByUser.Bind(userID).WithContext(ctx).Iter()

	var enrollments []*models.Enrollment
	for {
		enrollment := &models.Enrollment{}
		var expires time.Time
		ok := iter.Scan(
			&enrollment.UserID, &enrollment.CourseID, &enrollment.Year, &enrollment.Status,
			&expires, &enrollment.TrackingNumber, &enrollment.CreatedAt, &enrollment.UpdatedAt)
		if !ok {
			break
		}
		if !expires.IsZero() {
			enrollment.ExpiresAt = &expires
		}
		enrollments = append(enrollments, enrollment)
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list enrollments for user %s: %w", userID, err)
	}
	return enrollments, nil
}

func (r *EnrollmentRepository) ListEnrollmentsByCourse(ctx context.Context, courseID string) ([]*models.Enrollment, error) {
	iter := r.client.Prepared.ListEnrollmentsByCourse.Bind(courseID).WithContext(ctx).Iter()

	var enrollments []*models.Enrollment
	for {
		enrollment := &models.Enrollment{}
		var expires time.Time
		ok := iter.Scan(
			&enrollment.CourseID, &enrollment.UserID, &enrollment.Year, &enrollment.Status,
			&expires, &enrollment.TrackingNumber, &enrollment.CreatedAt, &enrollment.UpdatedAt)
		if !ok {
			break
		}
		if !expires.IsZero() {
			enrollment.ExpiresAt = &expires
		}
		enrollments = append(enrollments, enrollment)
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list enrollments for course %s: %w", courseID, err)
	}
	return enrollments, nil
}

func (r *EnrollmentRepository) DeleteEnrollment(ctx context.Context, userID, courseID string) error {
	batch := r.client.Session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(r.client.Prepared.DeleteEnrollmentByUser.Statement(), userID, courseID)
	batch.Query(r.client.Prepared.DeleteEnrollmentByCourse.Statement(), courseID, userID)

	if err := r.client.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}
	return nil
}
