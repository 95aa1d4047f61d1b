package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lms-service/internal/models"
	"lms-service/internal/repository/scylla"
	"lms-service/internal/util"
)

const bulkEnrollWorkers = 8

// AdminService covers the back-office operations: bulk enrollment from an
// uploaded spreadsheet, blocking accounts and role changes.
type AdminService struct {
	userRepo    scylla.UserRepositoryInterface
	enrollments *EnrollmentService
	sessions    *SessionService
	publisher   EventPublisherInterface
}

func NewAdminService(
	userRepo scylla.UserRepositoryInterface,
	enrollments *EnrollmentService,
	sessions *SessionService,
	publisher EventPublisherInterface,
) *AdminService {
	return &AdminService{
		userRepo:    userRepo,
		enrollments: enrollments,
		sessions:    sessions,
		publisher:   publisher,
	}
}

// BulkEnroll reads a spreadsheet whose first column is a phone number and
// optional second column a tracking number, and enrolls each matching
// student into the course as active. Rows are processed concurrently and
// failures are reported per row, one bad number never aborts the batch.
func (s *AdminService) BulkEnroll(ctx context.Context, year int, courseID string, sheet []byte) ([]models.BulkEnrollmentResult, error) {
	file, err := excelize.OpenReader(bytes.NewReader(sheet))
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read spreadsheet: %v", ErrInvalidInput, err)
	}
	defer file.Close()

	sheetName := file.GetSheetName(0)
	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read sheet %q: %v", ErrInvalidInput, sheetName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: spreadsheet is empty", ErrInvalidInput)
	}

	expiresAt := time.Date(year+1, time.January, 31, 23, 59, 59, 0, time.UTC)

	var mu sync.Mutex
	results := make([]models.BulkEnrollmentResult, 0, len(rows))
	appendResult := func(result models.BulkEnrollmentResult) {
		mu.Lock()
		results = append(results, result)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkEnrollWorkers)

	for i, row := range rows {
		rowNum := i + 1
		if len(row) == 0 {
			continue
		}
		phone := strings.TrimSpace(row[0])
		if phone == "" || strings.EqualFold(phone, "phone") {
			// Blank line or header row.
			continue
		}
		tracking := ""
		if len(row) > 1 {
			tracking = strings.TrimSpace(row[1])
		}

		g.Go(func() error {
			result := models.BulkEnrollmentResult{Row: rowNum, PhoneNumber: phone}

			if err := s.enrollRow(gctx, phone, year, courseID, tracking, expiresAt); err != nil {
				result.Status = "failed"
				result.Error = err.Error()
			} else {
				result.Status = "enrolled"
			}
			appendResult(result)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	util.Info("Bulk enrollment processed",
		zap.String("course_id", courseID),
		zap.Int("rows", len(results)))
	return results, nil
}

func (s *AdminService) enrollRow(ctx context.Context, phone string, year int, courseID, tracking string, expiresAt time.Time) error {
	user, err := s.userRepo.GetUserByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if _, err := s.enrollments.Enroll(ctx, user.UserID, year, courseID); err != nil && !errors.Is(err, ErrAlreadyEnrolled) {
		return err
	}
	if err := s.enrollments.Activate(ctx, user.UserID, courseID, expiresAt); err != nil {
		return err
	}
	if tracking != "" {
		if err := s.enrollments.SetTrackingNumber(ctx, user.UserID, courseID, tracking); err != nil {
			return err
		}
	}
	return nil
}

// BlockUser flips the blocked flag. Blocking also ends the user's session
// so the lockout is immediate.
func (s *AdminService) BlockUser(ctx context.Context, userID string, blocked bool) error {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.userRepo.UpdateBlocked(ctx, user.UserID, blocked); err != nil {
		return err
	}

	if blocked {
		if err := s.sessions.DestroyForUser(ctx, user.UserID); err != nil {
			util.Warn("Failed to destroy sessions for blocked user",
				zap.String("user_id", user.UserID),
				zap.Error(err))
		}
		publishEvent(ctx, s.publisher, &models.AuthEvent{
			UserID:    user.UserID,
			EventType: models.EventUserBlocked,
		})
	}
	return nil
}

// SetRole changes the user's role; the admin flag follows the role.
func (s *AdminService) SetRole(ctx context.Context, userID, role string) error {
	switch role {
	case models.RoleStudent, models.RoleInstructor, models.RoleAdmin:
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return s.userRepo.UpdateRole(ctx, userID, role, role == models.RoleAdmin)
}

// ListStudents returns the users sitting the given exam year.
func (s *AdminService) ListStudents(ctx context.Context, examYear int) ([]*models.User, error) {
	return s.userRepo.ListUsersByExamYear(ctx, examYear)
}
