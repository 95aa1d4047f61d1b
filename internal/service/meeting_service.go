package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lms-service/internal/config"
	"lms-service/internal/models"
	"lms-service/internal/repository/scylla"
)

var ErrNoMeeting = errors.New("course has no meeting")

// MeetingJoin is what the client needs to enter the live class.
type MeetingJoin struct {
	MeetingID string `json:"meetingId"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// MeetingService mints short-lived signed join tokens for the external
// meeting provider. Access checks happen here so a student cannot join a
// class they have not paid for.
type MeetingService struct {
	enrollments *EnrollmentService
	courseRepo  scylla.CourseRepositoryInterface
	secret      []byte
	tokenTTL    time.Duration
}

func NewMeetingService(
	enrollments *EnrollmentService,
	courseRepo scylla.CourseRepositoryInterface,
	cfg *config.Config,
) *MeetingService {
	return &MeetingService{
		enrollments: enrollments,
		courseRepo:  courseRepo,
		secret:      []byte(cfg.Meeting.JWTSecret),
		tokenTTL:    cfg.Meeting.TokenTTL,
	}
}

// Join checks enrollment and returns a signed join token. Admins and
// instructors skip the enrollment check.
func (s *MeetingService) Join(ctx context.Context, claims *models.SessionClaims, year int, courseID string) (*MeetingJoin, error) {
	course, err := s.courseRepo.GetCourse(ctx, year, courseID)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if course.MeetingID == "" {
		return nil, ErrNoMeeting
	}

	if !claims.IsAdmin && claims.Role != models.RoleInstructor {
		if err := s.enrollments.CheckAccess(ctx, claims.UserID, courseID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.tokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  claims.UserID,
		"mid":  course.MeetingID,
		"role": claims.Role,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign join token: %w", err)
	}

	return &MeetingJoin{
		MeetingID: course.MeetingID,
		Token:     signed,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

// VerifyToken parses and validates a join token, returning the meeting id
// it grants. Used by the provider callback.
func (s *MeetingService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrSessionInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrSessionInvalid
	}
	meetingID, _ := claims["mid"].(string)
	if meetingID == "" {
		return "", ErrSessionInvalid
	}
	return meetingID, nil
}
