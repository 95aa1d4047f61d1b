package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"lms-service/internal/models"
	"lms-service/internal/repository/scylla"
	"lms-service/internal/util"
)

type PaymentRequest struct {
	CourseID  string `json:"courseId" validate:"required"`
	Year      int    `json:"year" validate:"required,examyear"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	Method    string `json:"method" validate:"required,oneof=bank_transfer card cash"`
	Reference string `json:"reference" validate:"omitempty,max=100"`
}

// PaymentService handles the submit / review cycle: students submit a
// payment claim, admins confirm or reject it, and confirmation activates
// the enrollment until the end of the course year.
type PaymentService struct {
	paymentRepo scylla.PaymentRepositoryInterface
	enrollments *EnrollmentService
	analytics   PaymentAnalyticsInterface
	validate    *validator.Validate
}

func NewPaymentService(
	paymentRepo scylla.PaymentRepositoryInterface,
	enrollments *EnrollmentService,
	analytics PaymentAnalyticsInterface,
	validate *validator.Validate,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		enrollments: enrollments,
		analytics:   analytics,
		validate:    validate,
	}
}

// SubmitPayment records a pending payment and makes sure an enrollment
// exists to activate later.
func (s *PaymentService) SubmitPayment(ctx context.Context, userID string, req *PaymentRequest) (*models.Payment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	if _, err := s.enrollments.Enroll(ctx, userID, req.Year, req.CourseID); err != nil {
		if !errors.Is(err, ErrAlreadyEnrolled) {
			return nil, err
		}
	}

	payment := &models.Payment{
		UserID:    userID,
		CourseID:  req.CourseID,
		Year:      req.Year,
		Amount:    req.Amount,
		Method:    req.Method,
		Status:    models.PaymentPending,
		Reference: util.SanitizeInput(req.Reference),
	}
	if err := s.paymentRepo.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}
	s.record(ctx, payment)

	util.Info("Payment submitted",
		zap.String("payment_id", payment.PaymentID),
		zap.String("user_id", userID),
		zap.Int64("amount", payment.Amount))
	return payment, nil
}

// ConfirmPayment approves a pending payment and activates the enrollment
// through the end of the course year.
func (s *PaymentService) ConfirmPayment(ctx context.Context, year int, paymentID string) (*models.Payment, error) {
	payment, err := s.getPending(ctx, year, paymentID)
	if err != nil {
		return nil, err
	}

	if err := s.paymentRepo.UpdatePaymentStatus(ctx, payment, models.PaymentConfirmed); err != nil {
		return nil, err
	}

	expiresAt := time.Date(payment.Year+1, time.January, 31, 23, 59, 59, 0, time.UTC)
	if err := s.enrollments.Activate(ctx, payment.UserID, payment.CourseID, expiresAt); err != nil {
		// The payment is confirmed regardless; an admin can re-activate
		// the enrollment from the roster screen.
		util.Error("Payment confirmed but enrollment activation failed",
			zap.String("payment_id", paymentID),
			zap.Error(err))
	}
	s.record(ctx, payment)
	return payment, nil
}

// RejectPayment declines a pending payment. The enrollment stays pending
// so the student can resubmit.
func (s *PaymentService) RejectPayment(ctx context.Context, year int, paymentID string) (*models.Payment, error) {
	payment, err := s.getPending(ctx, year, paymentID)
	if err != nil {
		return nil, err
	}

	if err := s.paymentRepo.UpdatePaymentStatus(ctx, payment, models.PaymentRejected); err != nil {
		return nil, err
	}
	s.record(ctx, payment)
	return payment, nil
}

func (s *PaymentService) ListForUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	return s.paymentRepo.ListPaymentsByUser(ctx, userID)
}

// ListForYear returns payments for the admin review queue, optionally
// filtered by status.
func (s *PaymentService) ListForYear(ctx context.Context, year int, status string) ([]*models.Payment, error) {
	payments, err := s.paymentRepo.ListPaymentsByYear(ctx, year)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return payments, nil
	}

	filtered := make([]*models.Payment, 0, len(payments))
	for _, payment := range payments {
		if payment.Status == status {
			filtered = append(filtered, payment)
		}
	}
	return filtered, nil
}

// Report aggregates payment totals per course and status for a year.
func (s *PaymentService) Report(ctx context.Context, year int) ([]*models.PaymentReportRow, error) {
	return s.analytics.Report(ctx, year)
}

func (s *PaymentService) getPending(ctx context.Context, year int, paymentID string) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetPayment(ctx, year, paymentID)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if payment.Status != models.PaymentPending {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func (s *PaymentService) record(ctx context.Context, payment *models.Payment) {
	if s.analytics == nil {
		return
	}
	if err := s.analytics.RecordPayment(ctx, payment); err != nil {
		util.Warn("Payment event not recorded",
			zap.String("payment_id", payment.PaymentID),
			zap.Error(err))
	}
}
