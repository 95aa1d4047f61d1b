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

type paymentFixture struct {
	paymentRepo    *mocks.MockPaymentRepository
	enrollmentRepo *mocks.MockEnrollmentRepository
	courseRepo     *mocks.MockCourseRepository
	analytics      *mocks.MockPaymentAnalytics
	payments       *service.PaymentService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		paymentRepo:    mocks.NewMockPaymentRepository(),
		enrollmentRepo: mocks.NewMockEnrollmentRepository(),
		courseRepo:     mocks.NewMockCourseRepository(),
		analytics:      mocks.NewMockPaymentAnalytics(),
	}
	f.courseRepo.GetCourseFunc = func(ctx context.Context, year int, courseID string) (*models.Course, error) {
		return visibleCourse(), nil
	}
	enrollments := service.NewEnrollmentService(f.enrollmentRepo, f.courseRepo)
	f.payments = service.NewPaymentService(f.paymentRepo, enrollments, f.analytics, service.NewValidator())
	return f
}

func paymentRequest() *service.PaymentRequest {
	return &service.PaymentRequest{
		CourseID:  "c-1",
		Year:      2027,
		Amount:    4500,
		Method:    "bank_transfer",
		Reference: "dep-778812",
	}
}

func TestSubmitPayment(t *testing.T) {
	f := newPaymentFixture()

	var enrollment *models.Enrollment
	f.enrollmentRepo.UpsertEnrollmentFunc = func(ctx context.Context, e *models.Enrollment) error {
		enrollment = e
		return nil
	}

	payment, err := f.payments.SubmitPayment(context.Background(), "u-1", paymentRequest())
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPending, payment.Status)
	require.NotNil(t, enrollment)
	assert.Equal(t, models.EnrollmentPending, enrollment.Status)
	require.Len(t, f.analytics.Recorded, 1)
}

func TestSubmitPayment_ToleratesExistingEnrollment(t *testing.T) {
	f := newPaymentFixture()
	f.enrollmentRepo.GetEnrollmentFunc = func(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
		return &models.Enrollment{Status: models.EnrollmentPending}, nil
	}

	payment, err := f.payments.SubmitPayment(context.Background(), "u-1", paymentRequest())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, payment.Status)
}

func TestSubmitPayment_RejectsUnknownMethod(t *testing.T) {
	f := newPaymentFixture()
	req := paymentRequest()
	req.Method = "crypto"

	_, err := f.payments.SubmitPayment(context.Background(), "u-1", req)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestConfirmPayment_ActivatesEnrollmentThroughCourseYear(t *testing.T) {
	f := newPaymentFixture()
	f.paymentRepo.GetPaymentFunc = func(ctx context.Context, year int, paymentID string) (*models.Payment, error) {
		return &models.Payment{
			PaymentID: paymentID,
			UserID:    "u-1",
			CourseID:  "c-1",
			Year:      2027,
			Status:    models.PaymentPending,
		}, nil
	}
	f.enrollmentRepo.GetEnrollmentFunc = func(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
		return &models.Enrollment{UserID: userID, CourseID: courseID, Status: models.EnrollmentPending}, nil
	}

	var activated *models.Enrollment
	f.enrollmentRepo.UpsertEnrollmentFunc = func(ctx context.Context, e *models.Enrollment) error {
		activated = e
		return nil
	}

	payment, err := f.payments.ConfirmPayment(context.Background(), 2027, "p-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentConfirmed, payment.Status)

	require.NotNil(t, activated)
	assert.Equal(t, models.EnrollmentActive, activated.Status)
	require.NotNil(t, activated.ExpiresAt)
	// Access runs to the end of January after the exam year.
	assert.Equal(t, time.Date(2028, time.January, 31, 23, 59, 59, 0, time.UTC), *activated.ExpiresAt)
}

func TestConfirmPayment_OnlyPendingPayments(t *testing.T) {
	f := newPaymentFixture()
	f.paymentRepo.GetPaymentFunc = func(ctx context.Context, year int, paymentID string) (*models.Payment, error) {
		return &models.Payment{PaymentID: paymentID, Status: models.PaymentRejected}, nil
	}

	_, err := f.payments.ConfirmPayment(context.Background(), 2027, "p-1")
	assert.ErrorIs(t, err, service.ErrPaymentNotFound)
}

func TestRejectPayment_LeavesEnrollmentAlone(t *testing.T) {
	f := newPaymentFixture()
	f.paymentRepo.GetPaymentFunc = func(ctx context.Context, year int, paymentID string) (*models.Payment, error) {
		return &models.Payment{PaymentID: paymentID, UserID: "u-1", CourseID: "c-1", Status: models.PaymentPending}, nil
	}

	touched := false
	f.enrollmentRepo.UpsertEnrollmentFunc = func(ctx context.Context, e *models.Enrollment) error {
		touched = true
		return nil
	}

	payment, err := f.payments.RejectPayment(context.Background(), 2027, "p-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRejected, payment.Status)
	assert.False(t, touched)
}

func TestListForYear_StatusFilter(t *testing.T) {
	f := newPaymentFixture()
	f.paymentRepo.ListPaymentsByYearFunc = func(ctx context.Context, year int) ([]*models.Payment, error) {
		return []*models.Payment{
			{PaymentID: "p-1", Status: models.PaymentPending},
			{PaymentID: "p-2", Status: models.PaymentConfirmed},
			{PaymentID: "p-3", Status: models.PaymentPending},
		}, nil
	}

	all, err := f.payments.ListForYear(context.Background(), 2027, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pending, err := f.payments.ListForYear(context.Background(), 2027, models.PaymentPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}
