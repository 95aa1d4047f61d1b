package service

import (
	"context"
	"fmt"

	"lms-service/internal/client"
	"lms-service/internal/models"
)

type PaymentAnalyticsInterface interface {
	RecordPayment(ctx context.Context, payment *models.Payment) error
	Report(ctx context.Context, year int) ([]*models.PaymentReportRow, error)
}

// ClickHousePaymentAnalytics appends every payment state change to the
// analytics store and aggregates it for the admin report. Append failures
// are tolerated by callers; the operational store stays authoritative.
type ClickHousePaymentAnalytics struct {
	ch *client.ClickHouseClient
}

var _ PaymentAnalyticsInterface = (*ClickHousePaymentAnalytics)(nil)

func NewClickHousePaymentAnalytics(ch *client.ClickHouseClient) *ClickHousePaymentAnalytics {
	return &ClickHousePaymentAnalytics{ch: ch}
}

func (a *ClickHousePaymentAnalytics) RecordPayment(ctx context.Context, payment *models.Payment) error {
	err := a.ch.Exec(ctx, `
        INSERT INTO payment_events (payment_id, user_id, course_id, year, amount, method, status, recorded_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, now())`,
		payment.PaymentID, payment.UserID, payment.CourseID, payment.Year,
		payment.Amount, payment.Method, payment.Status)
	if err != nil {
		return fmt.Errorf("failed to record payment event: %w", err)
	}
	return nil
}

// Report aggregates per course and status over the latest state of each
// payment in the given year.
func (a *ClickHousePaymentAnalytics) Report(ctx context.Context, year int) ([]*models.PaymentReportRow, error) {
	rows, err := a.ch.Query(ctx, `
        SELECT course_id, status, count() AS cnt, sum(amount) AS total
        FROM (
            SELECT payment_id, any(course_id) AS course_id,
                   argMax(status, recorded_at) AS status,
                   any(amount) AS amount
            FROM payment_events
            WHERE year = ?
            GROUP BY payment_id
        )
        GROUP BY course_id, status
        ORDER BY course_id, status`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to build payment report: %w", err)
	}
	defer rows.Close()

	var report []*models.PaymentReportRow
	for rows.Next() {
		row := &models.PaymentReportRow{}
		if err := rows.Scan(&row.CourseID, &row.Status, &row.Count, &row.Total); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		report = append(report, row)
	}
	return report, rows.Err()
}
