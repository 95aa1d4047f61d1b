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

type PaymentRepositoryInterface interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, year int, paymentID string) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, payment *models.Payment, status string) error
	ListPaymentsByYear(ctx context.Context, year int) ([]*models.Payment, error)
	ListPaymentsByUser(ctx context.Context, userID string) ([]*models.Payment, error)
}

type PaymentRepository struct {
	client *ScyllaClient
}

var _ PaymentRepositoryInterface = (*PaymentRepository)(nil)

func NewPaymentRepository(client *ScyllaClient) *PaymentRepository {
	return &PaymentRepository{client: client}
}

func (r *PaymentRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.PaymentID == "" {
		payment.PaymentID = uuid.New().String()
	}
	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	batch := r.client.Session.NewBatch(gocql.LoggedBatch).WithContext(ctx)

	batch.Query(r.client.Prepared.CreatePayment.Statement(),
		payment.Year, payment.PaymentID, payment.UserID, payment.CourseID,
		payment.Amount, payment.Method, payment.Status, payment.Reference,
		payment.TrackingNumber, payment.CreatedAt, payment.UpdatedAt)

	batch.Query(r.client.Prepared.CreatePaymentByUser.Statement(),
		payment.UserID, payment.PaymentID, payment.Year, payment.CourseID,
		payment.Amount, payment.Method, payment.Status, payment.Reference,
		payment.TrackingNumber, payment.CreatedAt, payment.UpdatedAt)

	if err := r.client.ExecuteBatch(batch); err != nil {
		util.Error("Failed to create payment",
			zap.String("payment_id", payment.PaymentID),
			zap.String("user_id", payment.UserID),
			zap.Error(err))
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetPayment(ctx context.Context, year int, paymentID string) (*models.Payment, error) {
	payment := &models.Payment{}
	query := r.client.Prepared.GetPayment.Bind(year, paymentID).WithContext(ctx)

	err := r.client.ScanWithRetry(query,
		&payment.Year, &payment.PaymentID, &payment.UserID, &payment.CourseID,
		&payment.Amount, &payment.Method, &payment.Status, &payment.Reference,
		&payment.TrackingNumber, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, fmt.Errorf("payment %s: %w", paymentID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

// UpdatePaymentStatus writes the new status to both denormalized tables.
func (r *PaymentRepository) UpdatePaymentStatus(ctx context.Context, payment *models.Payment, status string) error {
	now := time.Now().UTC()

	batch := r.client.Session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(r.client.Prepared.UpdatePaymentStatus.Statement(),
		status, now, payment.Year, payment.PaymentID)
	batch.Query(r.client.Prepared.UpdatePaymentUserStatus.Statement(),
		status, now, payment.UserID, payment.PaymentID)

	if err := r.client.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	payment.Status = status
	payment.UpdatedAt = now

	util.Info("Payment status updated",
		zap.String("payment_id", payment.PaymentID),
		zap.String("status", status))
	return nil
}

func (r *PaymentRepository) ListPaymentsByYear(ctx context.Context, year int) ([]*models.Payment, error) {
	iter := r.client.Prepared.ListPaymentsByYear.Bind(year).WithContext(ctx).Iter()
	payments, err := r.collect(iter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for year %d: %w", year, err)
	}
	return payments, nil
}

func (r *PaymentRepository) ListPaymentsByUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	iter := r.client.Prepared.ListPaymentsByUser.Bind(userID).WithContext(ctx).Iter()
	payments, err := r.collect(iter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for user %s: %w", userID, err)
	}
	return payments, nil
}

func (r *PaymentRepository) collect(iter *gocql.Iter) ([]*models.Payment, error) {
	var payments []*models.Payment
	for {
		payment := &models.Payment{}
		ok := iter.Scan(
			&payment.Year, &payment.PaymentID, &payment.UserID, &payment.CourseID,
			&payment.Amount, &payment.Method, &payment.Status, &payment.Reference,
			&payment.TrackingNumber, &payment.CreatedAt, &payment.UpdatedAt)
		if !ok {
			break
		}
		payments = append(payments, payment)
	}
	return payments, iter.Close()
}
