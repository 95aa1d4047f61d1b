package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms-service/internal/mocks"
	"lms-service/internal/models"
	"lms-service/internal/service"
)

func newMeetingService(enrollmentRepo *mocks.MockEnrollmentRepository, courseRepo *mocks.MockCourseRepository) *service.MeetingService {
	enrollments := service.NewEnrollmentService(enrollmentRepo, courseRepo)
	return service.NewMeetingService(enrollments, courseRepo, testConfig())
}

func courseWithMeeting() *models.Course {
	course := visibleCourse()
	course.MeetingID = "room-42"
	return course
}

func TestJoin_EnrolledStudent(t *testing.T) {
	courseRepo := mocks.NewMockCourseRepository()
	courseRepo.GetCourseFunc = func(ctx context.Context, year int, courseID string) (*models.Course, error) {
		return courseWithMeeting(), nil
	}

	future := time.Now().UTC().Add(time.Hour)
	enrollmentRepo := mocks.NewMockEnrollmentRepository()
	enrollmentRepo.GetEnrollmentFunc = func(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
		return &models.Enrollment{Status: models.EnrollmentActive, ExpiresAt: &future}, nil
	}

	meetings := newMeetingService(enrollmentRepo, courseRepo)
	claims := &models.SessionClaims{UserID: "u-1", Role: models.RoleStudent}

	join, err := meetings.Join(context.Background(), claims, 2027, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "room-42", join.MeetingID)

	token, err := jwt.Parse(join.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-signing-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	mapClaims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "u-1", mapClaims["sub"])
	assert.Equal(t, "room-42", mapClaims["mid"])
	assert.Equal(t, models.RoleStudent, mapClaims["role"])
}

func TestJoin_CourseWithoutMeeting(t *testing.T) {
	courseRepo := mocks.NewMockCourseRepository()
	courseRepo.GetCourseFunc = func(ctx context.Context, year int, courseID string) (*models.Course, error) {
		return visibleCourse(), nil
	}

	meetings := newMeetingService(mocks.NewMockEnrollmentRepository(), courseRepo)
	_, err := meetings.Join(context.Background(),
		&models.SessionClaims{UserID: "u-1", Role: models.RoleStudent}, 2027, "c-1")
	assert.ErrorIs(t, err, service.ErrNoMeeting)
}

func TestJoin_NotEnrolled(t *testing.T) {
	courseRepo := mocks.NewMockCourseRepository()
	courseRepo.GetCourseFunc = func(ctx context.Context, year int, courseID string) (*models.Course, error) {
		return courseWithMeeting(), nil
	}

	meetings := newMeetingService(mocks.NewMockEnrollmentRepository(), courseRepo)
	_, err := meetings.Join(context.Background(),
		&models.SessionClaims{UserID: "u-1", Role: models.RoleStudent}, 2027, "c-1")
	assert.ErrorIs(t, err, service.ErrNotEnrolled)
}

func TestJoin_AdminSkipsEnrollmentCheck(t *testing.T) {
	courseRepo := mocks.NewMockCourseRepository()
	courseRepo.GetCourseFunc = func(ctx context.Context, year int, courseID string) (*models.Course, error) {
		return courseWithMeeting(), nil
	}

	// No enrollment exists; an admin joins anyway.
	meetings := newMeetingService(mocks.NewMockEnrollmentRepository(), courseRepo)
	join, err := meetings.Join(context.Background(),
		&models.SessionClaims{UserID: "admin-1", Role: models.RoleAdmin, IsAdmin: true}, 2027, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "room-42", join.MeetingID)
}

func TestJoin_UnknownCourse(t *testing.T) {
	meetings := newMeetingService(mocks.NewMockEnrollmentRepository(), mocks.NewMockCourseRepository())
	_, err := meetings.Join(context.Background(),
		&models.SessionClaims{UserID: "u-1"}, 2027, "no-such-course")
	assert.ErrorIs(t, err, service.ErrCourseNotFound)
}

func TestVerifyToken(t *testing.T) {
	courseRepo := mocks.NewMockCourseRepository()
	courseRepo.GetCourseFunc = func(ctx context.Context, year int, courseID string) (*models.Course, error) {
		return courseWithMeeting(), nil
	}

	meetings := newMeetingService(mocks.NewMockEnrollmentRepository(), courseRepo)
	join, err := meetings.Join(context.Background(),
		&models.SessionClaims{UserID: "admin-1", IsAdmin: true}, 2027, "c-1")
	require.NoError(t, err)

	meetingID, err := meetings.VerifyToken(join.Token)
	require.NoError(t, err)
	assert.Equal(t, "room-42", meetingID)

	_, err = meetings.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, service.ErrSessionInvalid)
}
