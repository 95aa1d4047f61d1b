package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"lms-service/internal/config"
	"lms-service/internal/models"
	"lms-service/internal/repository/redis"
	"lms-service/internal/repository/scylla"
	"lms-service/internal/util"
)

const catalogCacheTTL = 10 * time.Minute

type CourseRequest struct {
	Year        int    `json:"year" validate:"required,examyear"`
	Title       string `json:"title" validate:"required,min=2,max=120"`
	Subject     string `json:"subject" validate:"required,min=2,max=60"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Category    string `json:"category" validate:"omitempty,max=60"`
	Instructor  string `json:"instructor" validate:"required,min=2,max=80"`
	Price       int64  `json:"price" validate:"gte=0"`
	MeetingID   string `json:"meetingId" validate:"omitempty,max=64"`
	Visible     bool   `json:"visible"`
}

// CatalogService owns the course catalog. Listings are served cache-aside
// from Redis; every write invalidates the year and mirrors the course into
// the search index.
type CatalogService struct {
	courseRepo scylla.CourseRepositoryInterface
	cache      redis.CatalogCacheInterface
	search     CourseSearchInterface
	storage    ObjectStoreInterface
	validate   *validator.Validate
	config     *config.Config
}

func NewCatalogService(
	courseRepo scylla.CourseRepositoryInterface,
	cache redis.CatalogCacheInterface,
	search CourseSearchInterface,
	storage ObjectStoreInterface,
	validate *validator.Validate,
	cfg *config.Config,
) *CatalogService {
	return &CatalogService{
		courseRepo: courseRepo,
		cache:      cache,
		search:     search,
		storage:    storage,
		validate:   validate,
		config:     cfg,
	}
}

func (s *CatalogService) CreateCourse(ctx context.Context, req *CourseRequest) (*models.Course, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	course := &models.Course{
		Year:        req.Year,
		Title:       util.SanitizeInput(req.Title),
		Subject:     util.SanitizeInput(req.Subject),
		Description: util.SanitizeInput(req.Description),
		Category:    util.SanitizeInput(req.Category),
		Instructor:  util.SanitizeInput(req.Instructor),
		Price:       req.Price,
		MeetingID:   req.MeetingID,
		Visible:     req.Visible,
	}

	if err := s.courseRepo.UpsertCourse(ctx, course); err != nil {
		return nil, err
	}
	s.afterCourseWrite(ctx, course)

	util.Info("Course created",
		zap.String("course_id", course.CourseID),
		zap.Int("year", course.Year))
	return course, nil
}

func (s *CatalogService) UpdateCourse(ctx context.Context, year int, courseID string, req *CourseRequest) (*models.Course, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	course, err := s.GetCourse(ctx, year, courseID)
	if err != nil {
		return nil, err
	}

	course.Title = util.SanitizeInput(req.Title)
	course.Subject = util.SanitizeInput(req.Subject)
	course.Description = util.SanitizeInput(req.Description)
	course.Category = util.SanitizeInput(req.Category)
	course.Instructor = util.SanitizeInput(req.Instructor)
	course.Price = req.Price
	course.MeetingID = req.MeetingID
	course.Visible = req.Visible

	if err := s.courseRepo.UpsertCourse(ctx, course); err != nil {
		return nil, err
	}
	s.afterCourseWrite(ctx, course)
	return course, nil
}

func (s *CatalogService) DeleteCourse(ctx context.Context, year int, courseID string) error {
	course, err := s.GetCourse(ctx, year, courseID)
	if err != nil {
		return err
	}

	if err := s.courseRepo.DeleteCourse(ctx, year, courseID); err != nil {
		return err
	}

	if course.ImageKey != "" {
		if err := s.storage.Delete(ctx, course.ImageKey); err != nil {
			util.Warn("Failed to delete course image",
				zap.String("course_id", courseID),
				zap.Error(err))
		}
	}
	if err := s.search.RemoveCourse(ctx, courseID); err != nil {
		util.Warn("Failed to remove course from search index",
			zap.String("course_id", courseID),
			zap.Error(err))
	}
	if err := s.cache.InvalidateCourses(ctx, year); err != nil {
		util.Warn("Failed to invalidate course cache", zap.Error(err))
	}
	return nil
}

func (s *CatalogService) GetCourse(ctx context.Context, year int, courseID string) (*models.Course, error) {
	course, err := s.courseRepo.GetCourse(ctx, year, courseID)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// ListCourses serves the student-facing listing from cache. The admin view
// (includeHidden) always reads through, it is rare and must be current.
func (s *CatalogService) ListCourses(ctx context.Context, year int, includeHidden bool) ([]*models.Course, error) {
	if includeHidden {
		return s.courseRepo.ListCoursesByYear(ctx, year)
	}

	if cached, err := s.cache.GetCourses(ctx, year); err == nil {
		return cached, nil
	} else if !errors.Is(err, redis.ErrCacheMiss) {
		util.Warn("Course cache read failed, falling back to store", zap.Error(err))
	}

	all, err := s.courseRepo.ListCoursesByYear(ctx, year)
	if err != nil {
		return nil, err
	}

	visible := make([]*models.Course, 0, len(all))
	for _, course := range all {
		if course.Visible {
			visible = append(visible, course)
		}
	}

	if err := s.cache.SetCourses(ctx, year, visible, catalogCacheTTL); err != nil {
		util.Warn("Failed to populate course cache", zap.Error(err))
	}
	return visible, nil
}

func (s *CatalogService) SearchCourses(ctx context.Context, year int, term string) ([]*models.Course, error) {
	if term == "" {
		return s.ListCourses(ctx, year, false)
	}
	return s.search.SearchCourses(ctx, year, term)
}

// UploadCourseImage stores the image and records its key on the course.
func (s *CatalogService) UploadCourseImage(ctx context.Context, year int, courseID, contentType string, data []byte) (*models.Course, error) {
	course, err := s.GetCourse(ctx, year, courseID)
	if err != nil {
		return nil, err
	}

	key := path.Join(s.config.Storage.ImagePrefix, courseID, uuid.New().String())
	if err := s.storage.Put(ctx, key, contentType, data); err != nil {
		return nil, fmt.Errorf("failed to store course image: %w", err)
	}

	oldKey := course.ImageKey
	course.ImageKey = key
	if err := s.courseRepo.UpsertCourse(ctx, course); err != nil {
		return nil, err
	}
	s.afterCourseWrite(ctx, course)

	if oldKey != "" {
		if err := s.storage.Delete(ctx, oldKey); err != nil {
			util.Warn("Failed to delete replaced course image", zap.Error(err))
		}
	}
	return course, nil
}

// CourseImageURL returns a presigned download URL, or "" for courses
// without an image.
func (s *CatalogService) CourseImageURL(ctx context.Context, course *models.Course) (string, error) {
	if course.ImageKey == "" {
		return "", nil
	}
	return s.storage.Presign(ctx, course.ImageKey)
}

// afterCourseWrite keeps the cache and search index in step with the
// store. Both are best effort.
func (s *CatalogService) afterCourseWrite(ctx context.Context, course *models.Course) {
	if err := s.cache.InvalidateCourses(ctx, course.Year); err != nil {
		util.Warn("Failed to invalidate course cache", zap.Error(err))
	}
	if err := s.search.IndexCourse(ctx, course); err != nil {
		util.Warn("Failed to index course",
			zap.String("course_id", course.CourseID),
			zap.Error(err))
	}
}
