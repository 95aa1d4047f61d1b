package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/signintech/gopdf"
	"go.uber.org/zap"

	"lms-service/internal/config"
	"lms-service/internal/models"
	"lms-service/internal/repository/scylla"
	"lms-service/internal/util"
)

type rosterRow struct {
	Name     string
	Phone    string
	Status   string
	Tracking string
}

// ExportService renders enrollment rosters as PDFs, bundles whole years
// into a ZIP and parks the artifacts in object storage behind presigned
// URLs. Everything here runs on admin request, off the hot path.
type ExportService struct {
	courseRepo     scylla.CourseRepositoryInterface
	enrollmentRepo scylla.EnrollmentRepositoryInterface
	userRepo       scylla.UserRepositoryInterface
	storage        ObjectStoreInterface
	fontPath       string
	exportPrefix   string
}

func NewExportService(
	courseRepo scylla.CourseRepositoryInterface,
	enrollmentRepo scylla.EnrollmentRepositoryInterface,
	userRepo scylla.UserRepositoryInterface,
	storage ObjectStoreInterface,
	cfg *config.Config,
) *ExportService {
	return &ExportService{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		userRepo:       userRepo,
		storage:        storage,
		fontPath:       cfg.Storage.PDFFontPath,
		exportPrefix:   cfg.Storage.ExportPrefix,
	}
}

// ExportRosterPDF renders the enrollment roster for one course, uploads it
// and returns a presigned download URL.
func (s *ExportService) ExportRosterPDF(ctx context.Context, year int, courseID string) (string, error) {
	course, err := s.courseRepo.GetCourse(ctx, year, courseID)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return "", ErrCourseNotFound
		}
		return "", err
	}

	pdfBytes, err := s.renderRoster(ctx, course)
	if err != nil {
		return "", err
	}

	key := path.Join(s.exportPrefix,
		fmt.Sprintf("roster-%s-%s.pdf", courseID, time.Now().UTC().Format("20060102-150405")))
	if err := s.storage.Put(ctx, key, "application/pdf", pdfBytes); err != nil {
		return "", fmt.Errorf("failed to store roster export: %w", err)
	}

	url, err := s.storage.Presign(ctx, key)
	if err != nil {
		return "", err
	}

	util.Info("Roster exported",
		zap.String("course_id", courseID),
		zap.String("key", key))
	return url, nil
}

// ExportYearBundle zips a roster PDF for every course of the year.
func (s *ExportService) ExportYearBundle(ctx context.Context, year int) (string, error) {
	courses, err := s.courseRepo.ListCoursesByYear(ctx, year)
	if err != nil {
		return "", err
	}
	if len(courses) == 0 {
		return "", ErrCourseNotFound
	}

	var buf bytes.Buffer
	archive := zip.NewWriter(&buf)
	for _, course := range courses {
		pdfBytes, err := s.renderRoster(ctx, course)
		if err != nil {
			return "", err
		}

		entry, err := archive.Create(fmt.Sprintf("%s-%s.pdf", course.Subject, course.CourseID))
		if err != nil {
			return "", fmt.Errorf("failed to create archive entry: %w", err)
		}
		if _, err := entry.Write(pdfBytes); err != nil {
			return "", fmt.Errorf("failed to write archive entry: %w", err)
		}
	}
	if err := archive.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}

	key := path.Join(s.exportPrefix,
		fmt.Sprintf("rosters-%d-%s.zip", year, time.Now().UTC().Format("20060102-150405")))
	if err := s.storage.Put(ctx, key, "application/zip", buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to store year bundle: %w", err)
	}

	url, err := s.storage.Presign(ctx, key)
	if err != nil {
		return "", err
	}

	util.Info("Year bundle exported",
		zap.Int("year", year),
		zap.Int("courses", len(courses)))
	return url, nil
}

func (s *ExportService) renderRoster(ctx context.Context, course *models.Course) ([]byte, error) {
	enrollments, err := s.enrollmentRepo.ListEnrollmentsByCourse(ctx, course.CourseID)
	if err != nil {
		return nil, err
	}

	rows := make([]rosterRow, 0, len(enrollments))
	for _, enrollment := range enrollments {
		row := rosterRow{
			Status:   enrollment.Status,
			Tracking: enrollment.TrackingNumber,
		}
		user, err := s.userRepo.GetUserByID(ctx, enrollment.UserID)
		if err != nil {
			// Keep the row; an orphaned enrollment still counts.
			row.Name = enrollment.UserID
		} else {
			row.Name = user.FirstName + " " + user.LastName
			row.Phone = user.PhoneNumber
		}
		rows = append(rows, row)
	}

	return s.buildPDF(course, rows)
}

const (
	pdfMarginX    = 40.0
	pdfRowHeight  = 22.0
	pdfPageBottom = 800.0
)

func (s *ExportService) buildPDF(course *models.Course, rows []rosterRow) ([]byte, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})

	if err := pdf.AddTTFFont("roster", s.fontPath); err != nil {
		return nil, fmt.Errorf("failed to load pdf font: %w", err)
	}

	pdf.AddPage()
	if err := pdf.SetFont("roster", "", 16); err != nil {
		return nil, fmt.Errorf("failed to set pdf font: %w", err)
	}

	pdf.SetXY(pdfMarginX, 40)
	if err := pdf.Cell(nil, fmt.Sprintf("%s (%d) - %s", course.Title, course.Year, course.Instructor)); err != nil {
		return nil, fmt.Errorf("failed to write pdf header: %w", err)
	}

	if err := pdf.SetFont("roster", "", 11); err != nil {
		return nil, fmt.Errorf("failed to set pdf font: %w", err)
	}

	y := 80.0
	writeLine := func(text string) error {
		if y > pdfPageBottom {
			pdf.AddPage()
			y = 40.0
		}
		pdf.SetXY(pdfMarginX, y)
		y += pdfRowHeight
		return pdf.Cell(nil, text)
	}

	if err := writeLine(fmt.Sprintf("Enrolled students: %d", len(rows))); err != nil {
		return nil, err
	}
	for i, row := range rows {
		line := fmt.Sprintf("%3d. %-30s %-12s %-10s %s", i+1, row.Name, row.Phone, row.Status, row.Tracking)
		if err := writeLine(line); err != nil {
			return nil, fmt.Errorf("failed to write pdf row: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
