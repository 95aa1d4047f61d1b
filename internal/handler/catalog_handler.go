package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lms-service/internal/models"
	"lms-service/internal/service"
	"lms-service/internal/util"
)

// CatalogHandler serves the public course catalog: listings, search,
// course detail and categories.
type CatalogHandler struct {
	catalog    *service.CatalogService
	categories *service.CategoryService
}

func NewCatalogHandler(catalog *service.CatalogService, categories *service.CategoryService) *CatalogHandler {
	return &CatalogHandler{
		catalog:    catalog,
		categories: categories,
	}
}

func (h *CatalogHandler) RegisterRoutes(router chi.Router) {
	router.Route("/catalog/{year}", func(r chi.Router) {
		r.Get("/courses", h.ListCourses)
		r.Get("/courses/{courseID}", h.GetCourse)
		r.Get("/categories", h.ListCategories)
	})
}

func yearParam(r *http.Request) (int, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 2000 || year > 2100 {
		return 0, service.ErrInvalidInput
	}
	return year, nil
}

func (h *CatalogHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		respondWithError(w, err, "Invalid year")
		return
	}

	term := r.URL.Query().Get("search")
	courses, err := h.catalog.SearchCourses(r.Context(), year, term)
	if err != nil {
		respondWithError(w, err, "Could not load courses")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, h.withImageURLs(r, courses), ""))
}

func (h *CatalogHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		respondWithError(w, err, "Invalid year")
		return
	}

	course, err := h.catalog.GetCourse(r.Context(), year, chi.URLParam(r, "courseID"))
	if err != nil {
		respondWithError(w, err, "Course not found")
		return
	}
	if !course.Visible {
		respondWithError(w, service.ErrCourseNotFound, "Course not found")
		return
	}

	imageURL, err := h.catalog.CourseImageURL(r.Context(), course)
	if err != nil {
		util.Warn("Failed to presign course image", util.ErrorField(err))
	}

	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, map[string]interface{}{
		"course":   course,
		"imageUrl": imageURL,
	}, ""))
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		respondWithError(w, err, "Invalid year")
		return
	}

	categories, err := h.categories.ListCategories(r.Context(), year)
	if err != nil {
		respondWithError(w, err, "Could not load categories")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, categories, ""))
}

// withImageURLs decorates the listing with presigned image links. A failed
// presign leaves the URL empty rather than failing the listing.
func (h *CatalogHandler) withImageURLs(r *http.Request, courses []*models.Course) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(courses))
	for _, course := range courses {
		imageURL, err := h.catalog.CourseImageURL(r.Context(), course)
		if err != nil {
			imageURL = ""
		}
		out = append(out, map[string]interface{}{
			"course":   course,
			"imageUrl": imageURL,
		})
	}
	return out
}
