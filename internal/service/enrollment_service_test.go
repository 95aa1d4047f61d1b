package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms-service/internal/mocks"
	"lms-service/internal/models"
	"lms-service/internal/service"
)

func visibleCourse() *models.Course {
	return &models.Course{
		CourseID:  "c-1",
		Year:      2027,
		Title:     "Combined Maths",
		Visible:   true,
		UpdatedAt: time.Now().UTC(),
	}
}

func TestEnroll_CreatesPendingEnrollment(t *testing.T) {
	courseRepo := mocks.NewMockCourseRepository()
	courseRepo.GetCourseFunc = func(ctx context.Context, year int, courseID string) (*models.Course, error) {
		return visibleCourse(), nil
	}

	enrollmentRepo := mocks.NewMockEnrollmentRepository()
	var upserted *models.Enrollment
	enrollmentRepo.UpsertEnrollmentFunc = func(ctx context.Context, enrollment *models.Enrollment) error {
		upserted = enrollment
		return nil
	}

	svc := service.NewEnrollmentService(enrollmentRepo, courseRepo)
	enrollment, err := svc.Enroll(context.Background(), "u-1", 2027, "c-1")

	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentPending, enrollment.Status)
	assert.Equal(t, upserted, enrollment)
}

func TestEnroll_UnknownCourse(t *testing.T) {
	svc := service.NewEnrollmentService(mocks.NewMockEnrollmentRepository(), mocks.NewMockCourseRepository())
	_, err := svc.Enroll(context.Background(), "u-1", 2027, "no-such-course")
	assert.ErrorIs(t, err, service.ErrCourseNotFound)
}

func TestEnroll_HiddenCourseLooksAbsent(t *testing.T) {
	courseRepo := mocks.NewMockCourseRepository()
	courseRepo.GetCourseFunc = func(ctx context.Context, year int, courseID string) (*models.Course, error) {
		course := visibleCourse()
		course.Visible = false
		return course, nil
	}

	svc := service.NewEnrollmentService(mocks.NewMockEnrollmentRepository(), courseRepo)
	_, err := svc.Enroll(context.Background(), "u-1", 2027, "c-1")
	assert.ErrorIs(t, err, service.ErrCourseNotFound)
}

func TestEnroll_AlreadyEnrolled(t *testing.T) {
	courseRepo := mocks.NewMockCourseRepository()
	courseRepo.GetCourseFunc = func(ctx context.Context, year int, courseID string) (*models.Course, error) {
		return visibleCourse(), nil
	}

	enrollmentRepo := mocks.NewMockEnrollmentRepository()
	enrollmentRepo.GetEnrollmentFunc = func(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
		return &models.Enrollment{UserID: userID, CourseID: courseID, Status: models.EnrollmentActive}, nil
	}

	svc := service.NewEnrollmentService(enrollmentRepo, courseRepo)
	_, err := svc.Enroll(context.Background(), "u-1", 2027, "c-1")
	assert.ErrorIs(t, err, service.ErrAlreadyEnrolled)
}

func TestEnroll_OverExpiredKeepsCreatedAt(t *testing.T) {
	courseRepo := mocks.NewMockCourseRepository()
	courseRepo.GetCourseFunc = func(ctx context.Context, year int, courseID string) (*models.Course, error) {
		return visibleCourse(), nil
	}

	firstEnrolled := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	enrollmentRepo := mocks.NewMockEnrollmentRepository()
	enrollmentRepo.GetEnrollmentFunc = func(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
		return &models.Enrollment{
			UserID:    userID,
			CourseID:  courseID,
			Status:    models.EnrollmentExpired,
			CreatedAt: firstEnrolled,
		}, nil
	}

	svc := service.NewEnrollmentService(enrollmentRepo, courseRepo)
	enrollment, err := svc.Enroll(context.Background(), "u-1", 2027, "c-1")

	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentPending, enrollment.Status)
	assert.Equal(t, firstEnrolled, enrollment.CreatedAt)
}

func TestCheckAccess(t *testing.T) {
	future := time.Now().UTC().Add(time.Hour)

	t.Run("active and unexpired", func(t *testing.T) {
		repo := mocks.NewMockEnrollmentRepository()
		repo.GetEnrollmentFunc = func(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
			return &models.Enrollment{Status: models.EnrollmentActive, ExpiresAt: &future}, nil
		}
		svc := service.NewEnrollmentService(repo, mocks.NewMockCourseRepository())
		assert.NoError(t, svc.CheckAccess(context.Background(), "u-1", "c-1"))
	})

	t.Run("not enrolled", func(t *testing.T) {
		svc := service.NewEnrollmentService(mocks.NewMockEnrollmentRepository(), mocks.NewMockCourseRepository())
		assert.ErrorIs(t, svc.CheckAccess(context.Background(), "u-1", "c-1"), service.ErrNotEnrolled)
	})

	t.Run("pending is not access", func(t *testing.T) {
		repo := mocks.NewMockEnrollmentRepository()
		repo.GetEnrollmentFunc = func(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
			return &models.Enrollment{Status: models.EnrollmentPending}, nil
		}
		svc := service.NewEnrollmentService(repo, mocks.NewMockCourseRepository())
		assert.ErrorIs(t, svc.CheckAccess(context.Background(), "u-1", "c-1"), service.ErrNotEnrolled)
	})

	t.Run("past expiry is lazily expired", func(t *testing.T) {
		past := time.Now().UTC().Add(-time.Hour)
		repo := mocks.NewMockEnrollmentRepository()
		repo.GetEnrollmentFunc = func(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
			return &models.Enrollment{Status: models.EnrollmentActive, ExpiresAt: &past}, nil
		}

		var marked *models.Enrollment
		repo.UpsertEnrollmentFunc = func(ctx context.Context, enrollment *models.Enrollment) error {
			marked = enrollment
			return nil
		}

		svc := service.NewEnrollmentService(repo, mocks.NewMockCourseRepository())
		assert.ErrorIs(t, svc.CheckAccess(context.Background(), "u-1", "c-1"), service.ErrNotEnrolled)
		require.NotNil(t, marked)
		assert.Equal(t, models.EnrollmentExpired, marked.Status)
	})
}

func TestActivate_SetsExpiry(t *testing.T) {
	repo := mocks.NewMockEnrollmentRepository()
	repo.GetEnrollmentFunc = func(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
		return &models.Enrollment{UserID: userID, CourseID: courseID, Status: models.EnrollmentPending}, nil
	}

	var upserted *models.Enrollment
	repo.UpsertEnrollmentFunc = func(ctx context.Context, enrollment *models.Enrollment) error {
		upserted = enrollment
		return nil
	}

	svc := service.NewEnrollmentService(repo, mocks.NewMockCourseRepository())
	expiry := time.Date(2028, time.January, 31, 23, 59, 59, 0, time.UTC)
	require.NoError(t, svc.Activate(context.Background(), "u-1", "c-1", expiry))

	require.NotNil(t, upserted)
	assert.Equal(t, models.EnrollmentActive, upserted.Status)
	require.NotNil(t, upserted.ExpiresAt)
	assert.Equal(t, expiry, *upserted.ExpiresAt)
}

func TestActivate_MissingEnrollment(t *testing.T) {
	svc := service.NewEnrollmentService(mocks.NewMockEnrollmentRepository(), mocks.NewMockCourseRepository())
	err := svc.Activate(context.Background(), "u-1", "c-1", time.Now())
	assert.ErrorIs(t, err, service.ErrEnrollmentNotFound)
}
