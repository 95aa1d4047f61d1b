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

type catalogFixture struct {
	courseRepo *mocks.MockCourseRepository
	cache      *mocks.MockCatalogCache
	search     *mocks.MockCourseSearch
	storage    *mocks.MockObjectStore
	catalog    *service.CatalogService
}

func newCatalogFixture() *catalogFixture {
	f := &catalogFixture{
		courseRepo: mocks.NewMockCourseRepository(),
		cache:      mocks.NewMockCatalogCache(),
		search:     mocks.NewMockCourseSearch(),
		storage:    mocks.NewMockObjectStore(),
	}
	f.catalog = service.NewCatalogService(f.courseRepo, f.cache, f.search, f.storage,
		service.NewValidator(), testConfig())
	return f
}

func courseRequest() *service.CourseRequest {
	return &service.CourseRequest{
		Year:       2027,
		Title:      "Combined Maths",
		Subject:    "Mathematics",
		Instructor: "Mr. Silva",
		Price:      4500,
		Visible:    true,
	}
}

func TestCreateCourse_IndexesAndInvalidates(t *testing.T) {
	f := newCatalogFixture()

	var indexed *models.Course
	f.search.IndexCourseFunc = func(ctx context.Context, course *models.Course) error {
		indexed = course
		return nil
	}

	invalidated := false
	f.cache.InvalidateCoursesFunc = func(ctx context.Context, year int) error {
		invalidated = true
		return nil
	}

	course, err := f.catalog.CreateCourse(context.Background(), courseRequest())
	require.NoError(t, err)
	assert.Equal(t, "Combined Maths", course.Title)
	assert.Equal(t, course, indexed)
	assert.True(t, invalidated)
}

func TestCreateCourse_RejectsMissingTitle(t *testing.T) {
	f := newCatalogFixture()
	req := courseRequest()
	req.Title = ""

	_, err := f.catalog.CreateCourse(context.Background(), req)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestListCourses_CacheHitSkipsStore(t *testing.T) {
	f := newCatalogFixture()
	f.cache.GetCoursesFunc = func(ctx context.Context, year int) ([]*models.Course, error) {
		return []*models.Course{{CourseID: "cached", Visible: true}}, nil
	}

	storeRead := false
	f.courseRepo.ListCoursesByYearFunc = func(ctx context.Context, year int) ([]*models.Course, error) {
		storeRead = true
		return nil, nil
	}

	courses, err := f.catalog.ListCourses(context.Background(), 2027, false)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "cached", courses[0].CourseID)
	assert.False(t, storeRead)
}

func TestListCourses_MissFiltersHiddenAndPopulatesCache(t *testing.T) {
	f := newCatalogFixture()
	f.courseRepo.ListCoursesByYearFunc = func(ctx context.Context, year int) ([]*models.Course, error) {
		return []*models.Course{
			{CourseID: "c-1", Visible: true},
			{CourseID: "c-2", Visible: false},
			{CourseID: "c-3", Visible: true},
		}, nil
	}

	var cached []*models.Course
	f.cache.SetCoursesFunc = func(ctx context.Context, year int, courses []*models.Course, ttl time.Duration) error {
		cached = courses
		return nil
	}

	courses, err := f.catalog.ListCourses(context.Background(), 2027, false)
	require.NoError(t, err)
	assert.Len(t, courses, 2)
	assert.Len(t, cached, 2)
}

func TestListCourses_AdminViewReadsThrough(t *testing.T) {
	f := newCatalogFixture()
	cacheRead := false
	f.cache.GetCoursesFunc = func(ctx context.Context, year int) ([]*models.Course, error) {
		cacheRead = true
		return nil, nil
	}
	f.courseRepo.ListCoursesByYearFunc = func(ctx context.Context, year int) ([]*models.Course, error) {
		return []*models.Course{
			{CourseID: "c-1", Visible: true},
			{CourseID: "c-2", Visible: false},
		}, nil
	}

	courses, err := f.catalog.ListCourses(context.Background(), 2027, true)
	require.NoError(t, err)
	assert.Len(t, courses, 2)
	assert.False(t, cacheRead)
}

func TestSearchCourses_EmptyTermFallsBackToListing(t *testing.T) {
	f := newCatalogFixture()
	searched := false
	f.search.SearchCoursesFunc = func(ctx context.Context, year int, term string) ([]*models.Course, error) {
		searched = true
		return nil, nil
	}
	f.courseRepo.ListCoursesByYearFunc = func(ctx context.Context, year int) ([]*models.Course, error) {
		return []*models.Course{{CourseID: "c-1", Visible: true}}, nil
	}

	courses, err := f.catalog.SearchCourses(context.Background(), 2027, "")
	require.NoError(t, err)
	assert.Len(t, courses, 1)
	assert.False(t, searched)

	_, err = f.catalog.SearchCourses(context.Background(), 2027, "maths")
	require.NoError(t, err)
	assert.True(t, searched)
}

func TestDeleteCourse_CleansUpImageAndIndex(t *testing.T) {
	f := newCatalogFixture()
	f.courseRepo.GetCourseFunc = func(ctx context.Context, year int, courseID string) (*models.Course, error) {
		return &models.Course{CourseID: courseID, Year: year, ImageKey: "images/c-1/cover"}, nil
	}

	var deletedKey, removedID string
	f.storage.DeleteFunc = func(ctx context.Context, key string) error {
		deletedKey = key
		return nil
	}
	f.search.RemoveCourseFunc = func(ctx context.Context, courseID string) error {
		removedID = courseID
		return nil
	}

	require.NoError(t, f.catalog.DeleteCourse(context.Background(), 2027, "c-1"))
	assert.Equal(t, "images/c-1/cover", deletedKey)
	assert.Equal(t, "c-1", removedID)
}

func TestUploadCourseImage_ReplacesOldKey(t *testing.T) {
	f := newCatalogFixture()
	f.courseRepo.GetCourseFunc = func(ctx context.Context, year int, courseID string) (*models.Course, error) {
		return &models.Course{CourseID: courseID, Year: year, ImageKey: "images/c-1/old"}, nil
	}

	var removed string
	f.storage.DeleteFunc = func(ctx context.Context, key string) error {
		removed = key
		return nil
	}

	course, err := f.catalog.UploadCourseImage(context.Background(), 2027, "c-1", "image/png", []byte{0x89, 0x50})
	require.NoError(t, err)
	assert.NotEmpty(t, course.ImageKey)
	assert.NotEqual(t, "images/c-1/old", course.ImageKey)
	assert.Equal(t, "images/c-1/old", removed)
	assert.Contains(t, f.storage.Stored, course.ImageKey)
}
