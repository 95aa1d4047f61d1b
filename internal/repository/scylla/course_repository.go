package scylla

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"lms-service/internal/models"
	"lms-service/internal/util"
)

type CourseRepositoryInterface interface {
	UpsertCourse(ctx context.Context, course *models.Course) error
	GetCourse(ctx context.Context, year int, courseID string) (*models.Course, error)
	ListCoursesByYear(ctx context.Context, year int) ([]*models.Course, error)
	DeleteCourse(ctx context.Context, year int, courseID string) error
}

type CourseRepository struct {
	client *ScyllaClient
}

var _ CourseRepositoryInterface = (*CourseRepository)(nil)

func NewCourseRepository(client *ScyllaClient) *CourseRepository {
	return &CourseRepository{client: client}
}

func (r *CourseRepository) UpsertCourse(ctx context.Context, course *models.Course) error {
	now := time.Now().UTC()
	if course.CourseID == "" {
		course.CourseID = uuid.New().String()
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	query := r.client.Prepared.UpsertCourse.Bind(
		course.Year, course.CourseID, course.Title, course.Subject, course.Description,
		course.Category, course.Instructor, course.Price, course.ImageKey,
		course.MeetingID, course.Visible, course.CreatedAt, course.UpdatedAt,
	).WithContext(ctx)

	if err := r.client.ExecuteWithRetry(query, 2); err != nil {
		util.Error("Failed to upsert course",
			zap.String("course_id", course.CourseID),
			zap.Error(err))
		return fmt.Errorf("failed to upsert course: %w", err)
	}
	return nil
}

func (r *CourseRepository) GetCourse(ctx context.Context, year int, courseID string) (*models.Course, error) {
	course := &models.Course{}
	query := r.client.Prepared.GetCourse.Bind(year, courseID).WithContext(ctx)

	err := r.client.ScanWithRetry(query,
		&course.Year, &course.CourseID, &course.Title, &course.Subject, &course.Description,
		&course.Category, &course.Instructor, &course.Price, &course.ImageKey,
		&course.MeetingID, &course.Visible, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, fmt.Errorf("course %s: %w", courseID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (r *CourseRepository) ListCoursesByYear(ctx context.Context, year int) ([]*models.Course, error) {
	iter := r.client.Prepared.ListCoursesByYear.Bind(year).WithContext(ctx).Iter()

	var courses []*models.Course
	for {
		course := &models.Course{}
		ok := iter.Scan(
			&course.Year, &course.CourseID, &course.Title, &course.Subject, &course.Description,
			&course.Category, &course.Instructor, &course.Price, &course.ImageKey,
			&course.MeetingID, &course.Visible, &course.CreatedAt, &course.UpdatedAt)
		if !ok {
			break
		}
		courses = append(courses, course)
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list courses for year %d: %w", year, err)
	}
	return courses, nil
}

func (r *CourseRepository) DeleteCourse(ctx context.Context, year int, courseID string) error {
	query := r.client.Prepared.DeleteCourse.Bind(year, courseID).WithContext(ctx)
	if err := r.client.ExecuteWithRetry(query, 2); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	util.Info("Course deleted",
		zap.String("course_id", courseID),
		zap.Int("year", year))
	return nil
}
