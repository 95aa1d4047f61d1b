package scylla

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"lms-service/internal/config"
	"lms-service/internal/util"
)

// PreparedStatements holds the statements the repositories actually bind.
type PreparedStatements struct {
	// users
	CreateUser       *gocql.Query
	CreatePhoneIndex *gocql.Query
	CreateNICIndex   *gocql.Query
	GetUserByID      *gocql.Query
	GetPhoneIndex    *gocql.Query
	GetNICIndex      *gocql.Query
	UpdateVerifyOTP  *gocql.Query
	UpdateResetOTP   *gocql.Query
	MarkVerified     *gocql.Query
	UpdatePassword   *gocql.Query
	UpdateBlocked    *gocql.Query
	UpdateRole       *gocql.Query
	DeleteUser       *gocql.Query
	DeletePhoneIndex *gocql.Query
	DeleteNICIndex   *gocql.Query

	// courses and categories
	UpsertCourse       *gocql.Query
	GetCourse          *gocql.Query
	ListCoursesByYear  *gocql.Query
	DeleteCourse       *gocql.Query
	UpsertCategory     *gocql.Query
	ListCategories     *gocql.Query
	DeleteCategory     *gocql.Query

	// enrollments
	UpsertEnrollmentByUser   *gocql.Query
	UpsertEnrollmentByCourse *gocql.Query
	GetEnrollment            *gocql.Query
	ListEnrollmentsByUser    *gocql.Query
	ListEnrollmentsByCourse  *gocql.Query
	DeleteEnrollmentByUser   *gocql.Query
	DeleteEnrollmentByCourse *gocql.Query

	// payments
	CreatePayment       *gocql.Query
	CreatePaymentByUser *gocql.Query
	GetPayment              *gocql.Query
	UpdatePaymentStatus     *gocql.Query
	UpdatePaymentUserStatus *gocql.Query
	ListPaymentsByYear  *gocql.Query
	ListPaymentsByUser  *gocql.Query
}

type ScyllaClient struct {
	Session      *gocql.Session
	config       *config.ScyllaConfig
	Prepared     *PreparedStatements
	prepareMutex sync.RWMutex
	isPrepared   bool
}

func NewScyllaClient(cfg *config.Config) (*ScyllaClient, error) {
	scyllaConfig := cfg.Scylla

	cluster := gocql.NewCluster(scyllaConfig.Nodes...)
	cluster.Keyspace = scyllaConfig.Keyspace
	cluster.Consistency = gocql.LocalQuorum
	cluster.Timeout = 10 * time.Second
	cluster.ConnectTimeout = 10 * time.Second
	cluster.NumConns = 4
	cluster.SocketKeepalive = 30 * time.Second
	cluster.MaxPreparedStmts = 1000
	cluster.PageSize = 1000
	cluster.RetryPolicy = &gocql.ExponentialBackoffRetryPolicy{
		Min:        time.Second,
		Max:        10 * time.Second,
		NumRetries: 3,
	}

	if scyllaConfig.Username != "" && scyllaConfig.Password != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: scyllaConfig.Username,
			Password: scyllaConfig.Password,
		}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create scylla session: %w", err)
	}

	client := &ScyllaClient{
		Session: session,
		config:  &scyllaConfig,
	}

	if err := client.prepareStatements(); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	util.Info("ScyllaDB client initialized with prepared statements",
		zap.Strings("nodes", scyllaConfig.Nodes),
		zap.String("keyspace", scyllaConfig.Keyspace))

	return client, nil
}

const userColumns = `user_bucket, user_id, phone_number, nic_hash, nic_encrypted, nic_key_id,
        first_name, last_name, password_hash, gender, birth_date, exam_year, school, district,
        role, is_admin, is_account_verified, is_blocked,
        verify_otp_code, verify_otp_expires_at, reset_otp_code, reset_otp_expires_at,
        created_at, updated_at`

func (s *ScyllaClient) prepareStatements() error {
	s.prepareMutex.Lock()
	defer s.prepareMutex.Unlock()

	if s.isPrepared {
		return nil
	}

	prepared := &PreparedStatements{}

	prepared.CreateUser = s.Session.Query(`
        INSERT INTO users (` + userColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	prepared.CreatePhoneIndex = s.Session.Query(`
        INSERT INTO phone_to_user (phone_number, user_bucket, user_id, created_at)
        VALUES (?, ?, ?, ?)`)

	prepared.CreateNICIndex = s.Session.Query(`
        INSERT INTO nic_to_user (nic_hash, user_bucket, user_id, created_at)
        VALUES (?, ?, ?, ?)`)

	prepared.GetUserByID = s.Session.Query(`
        SELECT ` + userColumns + ` FROM users WHERE user_bucket = ? AND user_id = ?`)

	prepared.GetPhoneIndex = s.Session.Query(`
        SELECT user_bucket, user_id FROM phone_to_user WHERE phone_number = ?`)

	prepared.GetNICIndex = s.Session.Query(`
        SELECT user_bucket, user_id FROM nic_to_user WHERE nic_hash = ?`)

	prepared.UpdateVerifyOTP = s.Session.Query(`
        UPDATE users SET verify_otp_code = ?, verify_otp_expires_at = ?, updated_at = ?
        WHERE user_bucket = ? AND user_id = ?`)

	prepared.UpdateResetOTP = s.Session.Query(`
        UPDATE users SET reset_otp_code = ?, reset_otp_expires_at = ?, updated_at = ?
        WHERE user_bucket = ? AND user_id = ?`)

	prepared.MarkVerified = s.Session.Query(`
        UPDATE users SET is_account_verified = ?, verify_otp_code = ?, verify_otp_expires_at = ?, updated_at = ?
        WHERE user_bucket = ? AND user_id = ?`)

	prepared.UpdatePassword = s.Session.Query(`
        UPDATE users SET password_hash = ?, reset_otp_code = ?, reset_otp_expires_at = ?, updated_at = ?
        WHERE user_bucket = ? AND user_id = ?`)

	prepared.UpdateBlocked = s.Session.Query(`
        UPDATE users SET is_blocked = ?, updated_at = ? WHERE user_bucket = ? AND user_id = ?`)

	prepared.UpdateRole = s.Session.Query(`
        UPDATE users SET role = ?, is_admin = ?, updated_at = ? WHERE user_bucket = ? AND user_id = ?`)

	prepared.DeleteUser = s.Session.Query(`
        DELETE FROM users WHERE user_bucket = ? AND user_id = ?`)

	prepared.DeletePhoneIndex = s.Session.Query(`
        DELETE FROM phone_to_user WHERE phone_number = ?`)

	prepared.DeleteNICIndex = s.Session.Query(`
        DELETE FROM nic_to_user WHERE nic_hash = ?`)

	prepared.UpsertCourse = s.Session.Query(`
        INSERT INTO courses (year, course_id, title, subject, description, category,
            instructor, price, image_key, meeting_id, visible, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	prepared.GetCourse = s.Session.Query(`
        SELECT year, course_id, title, subject, description, category, instructor,
            price, image_key, meeting_id, visible, created_at, updated_at
        FROM courses WHERE year = ? AND course_id = ?`)

	prepared.ListCoursesByYear = s.Session.Query(`
        SELECT year, course_id, title, subject, description, category, instructor,
            price, image_key, meeting_id, visible, created_at, updated_at
        FROM courses WHERE year = ?`)

	prepared.DeleteCourse = s.Session.Query(`
        DELETE FROM courses WHERE year = ? AND course_id = ?`)

	prepared.UpsertCategory = s.Session.Query(`
        INSERT INTO categories (year, category_id, name, position, created_at)
        VALUES (?, ?, ?, ?, ?)`)

	prepared.ListCategories = s.Session.Query(`
        SELECT year, category_id, name, position, created_at
        FROM categories WHERE year = ?`)

	prepared.DeleteCategory = s.Session.Query(`
        DELETE FROM categories WHERE year = ? AND category_id = ?`)

	prepared.UpsertEnrollmentByUser = s.Session.Query(`
        INSERT INTO enrollments_by_user (user_id, course_id, year, status, expires_at,
            tracking_number, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	prepared.UpsertEnrollmentByCourse = s.Session.Query(`
        INSERT INTO enrollments_by_course (course_id, user_id, year, status, expires_at,
            tracking_number, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	prepared.GetEnrollment = s.Session.Query(`
        SELECT user_id, course_id, year, status, expires_at, tracking_number, created_at, updated_at
        FROM enrollments_by_user WHERE user_id = ? AND course_id = ?`)

	prepared.ListEnrollmentsByUser = s.Session.Query(`
        SELECT user_id, course_id, year, status, expires_at, tracking_number, created_at, updated_at
        FROM enrollments_by_user WHERE user_id = ?`)

	prepared.ListEnrollmentsByCourse = s.Session.Query(`
        SELECT course_id, user_id, year, status, expires_at, tracking_number, created_at, updated_at
        FROM enrollments_by_course WHERE course_id = ?`)

	prepared.DeleteEnrollmentByUser = s.Session.Query(`
        DELETE FROM enrollments_by_user WHERE user_id = ? AND course_id = ?`)

	prepared.DeleteEnrollmentByCourse = s.Session.Query(`
        DELETE FROM enrollments_by_course WHERE course_id = ? AND user_id = ?`)

	prepared.CreatePayment = s.Session.Query(`
        INSERT INTO payments (year, payment_id, user_id, course_id, amount, method,
            status, reference, tracking_number, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	prepared.CreatePaymentByUser = s.Session.Query(`
        INSERT INTO payments_by_user (user_id, payment_id, year, course_id, amount, method,
            status, reference, tracking_number, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	prepared.GetPayment = s.Session.Query(`
        SELECT year, payment_id, user_id, course_id, amount, method, status, reference,
            tracking_number, created_at, updated_at
        FROM payments WHERE year = ? AND payment_id = ?`)

	prepared.UpdatePaymentStatus = s.Session.Query(`
        UPDATE payments SET status = ?, updated_at = ? WHERE year = ? AND payment_id = ?`)

	prepared.UpdatePaymentUserStatus = s.Session.Query(`
        UPDATE payments_by_user SET status = ?, updated_at = ? WHERE user_id = ? AND payment_id = ?`)

	prepared.ListPaymentsByYear = s.Session.Query(`
        SELECT year, payment_id, user_id, course_id, amount, method, status, reference,
            tracking_number, created_at, updated_at
        FROM payments WHERE year = ?`)

	prepared.ListPaymentsByUser = s.Session.Query(`
        SELECT year, payment_id, user_id, course_id, amount, method, status, reference,
            tracking_number, created_at, updated_at
        FROM payments_by_user WHERE user_id = ?`)

	s.Prepared = prepared
	s.isPrepared = true

	util.Info("ScyllaDB prepared statements created successfully")
	return nil
}

func (s *ScyllaClient) Close() {
	if s.Session != nil {
		s.Session.Close()
		util.Info("ScyllaDB client closed")
	}
}

func (s *ScyllaClient) Query(stmt string, values ...interface{}) *gocql.Query {
	return s.Session.Query(stmt, values...)
}

func (s *ScyllaClient) Batch(typ gocql.BatchType) *gocql.Batch {
	return s.Session.NewBatch(typ)
}

func (s *ScyllaClient) ExecuteBatch(batch *gocql.Batch) error {
	return s.Session.ExecuteBatch(batch)
}

func (s *ScyllaClient) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var clusterName string
	err := s.Session.Query(`SELECT cluster_name FROM system.local`).WithContext(ctx).Scan(&clusterName)
	if err != nil {
		return fmt.Errorf("scylla health check failed: %w", err)
	}

	util.Debug("ScyllaDB health check passed", zap.String("cluster_name", clusterName))
	return nil
}

func (s *ScyllaClient) ExecuteWithRetry(query *gocql.Query, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := query.Exec(); err != nil {
			lastErr = err
			if i < maxRetries {
				time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
				continue
			}
		} else {
			return nil
		}
	}
	return lastErr
}

func (s *ScyllaClient) ScanWithRetry(query *gocql.Query, dest ...interface{}) error {
	var lastErr error
	for i := 0; i < 3; i++ {
		if err := query.Scan(dest...); err != nil {
			lastErr = err
			if i < 2 {
				time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
				continue
			}
		} else {
			return nil
		}
	}
	return lastErr
}
