package mocks

import (
	"context"

	"lms-service/internal/models"
	"lms-service/internal/service"
	"lms-service/internal/sms"
)

// MockSMSSender implements sms.Sender for testing
type MockSMSSender struct {
	SendFunc func(ctx context.Context, toNumber, message string) error
	Sent     []string
}

func NewMockSMSSender() *MockSMSSender {
	return &MockSMSSender{}
}

func (m *MockSMSSender) Send(ctx context.Context, toNumber, message string) error {
	m.Sent = append(m.Sent, message)
	if m.SendFunc != nil {
		return m.SendFunc(ctx, toNumber, message)
	}
	return nil
}

var _ sms.Sender = (*MockSMSSender)(nil)

// MockEventPublisher implements service.EventPublisherInterface for testing
type MockEventPublisher struct {
	PublishAuthEventFunc func(ctx context.Context, event *models.AuthEvent) error
	Events               []*models.AuthEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) PublishAuthEvent(ctx context.Context, event *models.AuthEvent) error {
	m.Events = append(m.Events, event)
	if m.PublishAuthEventFunc != nil {
		return m.PublishAuthEventFunc(ctx, event)
	}
	return nil
}

var _ service.EventPublisherInterface = (*MockEventPublisher)(nil)

// MockCourseSearch implements service.CourseSearchInterface for testing
type MockCourseSearch struct {
	IndexCourseFunc   func(ctx context.Context, course *models.Course) error
	RemoveCourseFunc  func(ctx context.Context, courseID string) error
	SearchCoursesFunc func(ctx context.Context, year int, term string) ([]*models.Course, error)
}

func NewMockCourseSearch() *MockCourseSearch {
	return &MockCourseSearch{}
}

func (m *MockCourseSearch) IndexCourse(ctx context.Context, course *models.Course) error {
	if m.IndexCourseFunc != nil {
		return m.IndexCourseFunc(ctx, course)
	}
	return nil
}

func (m *MockCourseSearch) RemoveCourse(ctx context.Context, courseID string) error {
	if m.RemoveCourseFunc != nil {
		return m.RemoveCourseFunc(ctx, courseID)
	}
	return nil
}

func (m *MockCourseSearch) SearchCourses(ctx context.Context, year int, term string) ([]*models.Course, error) {
	if m.SearchCoursesFunc != nil {
		return m.SearchCoursesFunc(ctx, year, term)
	}
	return nil, nil
}

var _ service.CourseSearchInterface = (*MockCourseSearch)(nil)

// MockObjectStore implements service.ObjectStoreInterface for testing
type MockObjectStore struct {
	PutFunc     func(ctx context.Context, key, contentType string, body []byte) error
	PresignFunc func(ctx context.Context, key string) (string, error)
	DeleteFunc  func(ctx context.Context, key string) error
	Stored      map[string][]byte
}

func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{Stored: make(map[string][]byte)}
}

func (m *MockObjectStore) Put(ctx context.Context, key, contentType string, body []byte) error {
	if m.Stored != nil {
		m.Stored[key] = body
	}
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, contentType, body)
	}
	return nil
}

func (m *MockObjectStore) Presign(ctx context.Context, key string) (string, error) {
	if m.PresignFunc != nil {
		return m.PresignFunc(ctx, key)
	}
	return "https://example.com/" + key, nil
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	if m.Stored != nil {
		delete(m.Stored, key)
	}
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return nil
}

var _ service.ObjectStoreInterface = (*MockObjectStore)(nil)

// MockPaymentAnalytics implements service.PaymentAnalyticsInterface for testing
type MockPaymentAnalytics struct {
	RecordPaymentFunc func(ctx context.Context, payment *models.Payment) error
	ReportFunc        func(ctx context.Context, year int) ([]*models.PaymentReportRow, error)
	Recorded          []*models.Payment
}

func NewMockPaymentAnalytics() *MockPaymentAnalytics {
	return &MockPaymentAnalytics{}
}

func (m *MockPaymentAnalytics) RecordPayment(ctx context.Context, payment *models.Payment) error {
	m.Recorded = append(m.Recorded, payment)
	if m.RecordPaymentFunc != nil {
		return m.RecordPaymentFunc(ctx, payment)
	}
	return nil
}

func (m *MockPaymentAnalytics) Report(ctx context.Context, year int) ([]*models.PaymentReportRow, error) {
	if m.ReportFunc != nil {
		return m.ReportFunc(ctx, year)
	}
	return nil, nil
}

var _ service.PaymentAnalyticsInterface = (*MockPaymentAnalytics)(nil)
