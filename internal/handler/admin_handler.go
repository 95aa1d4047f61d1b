package handler

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lms-service/internal/service"
)

const maxUploadBytes = 20 << 20

// AdminHandler groups the back-office routes: catalog management, payment
// review, bulk enrollment, exports and user administration. Everything
// here sits behind SessionAuth plus AdminOnly.
type AdminHandler struct {
	catalog     *service.CatalogService
	categories  *service.CategoryService
	enrollments *service.EnrollmentService
	payments    *service.PaymentService
	admin       *service.AdminService
	exports     *service.ExportService
	sessions    *service.SessionService
}

func NewAdminHandler(
	catalog *service.CatalogService,
	categories *service.CategoryService,
	enrollments *service.EnrollmentService,
	payments *service.PaymentService,
	admin *service.AdminService,
	exports *service.ExportService,
	sessions *service.SessionService,
) *AdminHandler {
	return &AdminHandler{
		catalog:     catalog,
		categories:  categories,
		enrollments: enrollments,
		payments:    payments,
		admin:       admin,
		exports:     exports,
		sessions:    sessions,
	}
}

func (h *AdminHandler) RegisterRoutes(router chi.Router) {
	router.Route("/admin", func(r chi.Router) {
		r.Use(SessionAuth(h.sessions))
		r.Use(AdminOnly)

		r.Post("/courses", h.CreateCourse)
		r.Put("/courses/{year}/{courseID}", h.UpdateCourse)
		r.Delete("/courses/{year}/{courseID}", h.DeleteCourse)
		r.Post("/courses/{year}/{courseID}/image", h.UploadCourseImage)
		r.Get("/courses/{year}", h.ListAllCourses)

		r.Post("/categories", h.SaveCategory)
		r.Put("/categories/{categoryID}", h.UpdateCategory)
		r.Delete("/categories/{year}/{categoryID}", h.DeleteCategory)
		r.Post("/categories/{year}/reorder", h.ReorderCategories)

		r.Get("/payments", h.ListPayments)
		r.Post("/payments/{year}/{paymentID}/confirm", h.ConfirmPayment)
		r.Post("/payments/{year}/{paymentID}/reject", h.RejectPayment)
		r.Get("/payments/report", h.PaymentReport)

		r.Post("/enrollments/bulk", h.BulkEnroll)
		r.Get("/enrollments/course/{courseID}", h.CourseEnrollments)
		r.Put("/enrollments/{userID}/{courseID}/tracking", h.SetTracking)
		r.Delete("/enrollments/{userID}/{courseID}", h.RemoveEnrollment)

		r.Get("/exports/roster", h.ExportRoster)
		r.Get("/exports/bundle", h.ExportBundle)

		r.Get("/students", h.ListStudents)
		r.Post("/users/{userID}/block", h.BlockUser)
		r.Post("/users/{userID}/unblock", h.UnblockUser)
		r.Post("/users/{userID}/role", h.SetRole)
	})
}

func queryYear(r *http.Request) (int, error) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2100 {
		return 0, service.ErrInvalidInput
	}
	return year, nil
}

func (h *AdminHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req service.CourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, service.ErrInvalidInput, "Invalid request body")
		return
	}

	course, err := h.catalog.CreateCourse(r.Context(), &req)
	if err != nil {
		respondWithError(w, err, "Could not create course")
		return
	}
	respondWithJSON(w, http.StatusCreated, successResponse(CodeOK, course, "Course created"))
}

func (h *AdminHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		respondWithError(w, err, "Invalid year")
		return
	}

	var req service.CourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, service.ErrInvalidInput, "Invalid request body")
		return
	}

	course, err := h.catalog.UpdateCourse(r.Context(), year, chi.URLParam(r, "courseID"), &req)
	if err != nil {
		respondWithError(w, err, "Could not update course")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, course, "Course updated"))
}

func (h *AdminHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		respondWithError(w, err, "Invalid year")
		return
	}

	if err := h.catalog.DeleteCourse(r.Context(), year, chi.URLParam(r, "courseID")); err != nil {
		respondWithError(w, err, "Could not delete course")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, nil, "Course deleted"))
}

func (h *AdminHandler) ListAllCourses(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		respondWithError(w, err, "Invalid year")
		return
	}

	courses, err := h.catalog.ListCourses(r.Context(), year, true)
	if err != nil {
		respondWithError(w, err, "Could not load courses")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, courses, ""))
}

func (h *AdminHandler) UploadCourseImage(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		respondWithError(w, err, "Invalid year")
		return
	}

	file, header, err := h.formFile(r, "image")
	if err != nil {
		respondWithError(w, service.ErrInvalidInput, "Missing image file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		respondWithError(w, service.ErrInvalidInput, "Could not read image")
		return
	}

	course, err := h.catalog.UploadCourseImage(r.Context(), year, chi.URLParam(r, "courseID"),
		header.Header.Get("Content-Type"), data)
	if err != nil {
		respondWithError(w, err, "Could not store image")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, course, "Image uploaded"))
}

func (h *AdminHandler) SaveCategory(w http.ResponseWriter, r *http.Request) {
	var req service.CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, service.ErrInvalidInput, "Invalid request body")
		return
	}

	category, err := h.categories.SaveCategory(r.Context(), "", &req)
	if err != nil {
		respondWithError(w, err, "Could not save category")
		return
	}
	respondWithJSON(w, http.StatusCreated, successResponse(CodeOK, category, "Category saved"))
}

func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req service.CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, service.ErrInvalidInput, "Invalid request body")
		return
	}

	category, err := h.categories.SaveCategory(r.Context(), chi.URLParam(r, "categoryID"), &req)
	if err != nil {
		respondWithError(w, err, "Could not update category")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, category, "Category updated"))
}

func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		respondWithError(w, err, "Invalid year")
		return
	}

	if err := h.categories.DeleteCategory(r.Context(), year, chi.URLParam(r, "categoryID")); err != nil {
		respondWithError(w, err, "Could not delete category")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, nil, "Category deleted"))
}

func (h *AdminHandler) ReorderCategories(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		respondWithError(w, err, "Invalid year")
		return
	}

	var req struct {
		OrderedIDs []string `json:"orderedIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, service.ErrInvalidInput, "Invalid request body")
		return
	}

	if err := h.categories.ReorderCategories(r.Context(), year, req.OrderedIDs); err != nil {
		respondWithError(w, err, "Could not reorder categories")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, nil, "Categories reordered"))
}

func (h *AdminHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		respondWithError(w, err, "Invalid year")
		return
	}

	payments, err := h.payments.ListForYear(r.Context(), year, r.URL.Query().Get("status"))
	if err != nil {
		respondWithError(w, err, "Could not load payments")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, payments, ""))
}

func (h *AdminHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		respondWithError(w, err, "Invalid year")
		return
	}

	payment, err := h.payments.ConfirmPayment(r.Context(), year, chi.URLParam(r, "paymentID"))
	if err != nil {
		respondWithError(w, err, "Could not confirm payment")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, payment, "Payment confirmed"))
}

func (h *AdminHandler) RejectPayment(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		respondWithError(w, err, "Invalid year")
		return
	}

	payment, err := h.payments.RejectPayment(r.Context(), year, chi.URLParam(r, "paymentID"))
	if err != nil {
		respondWithError(w, err, "Could not reject payment")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, payment, "Payment rejected"))
}

func (h *AdminHandler) PaymentReport(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		respondWithError(w, err, "Invalid year")
		return
	}

	report, err := h.payments.Report(r.Context(), year)
	if err != nil {
		respondWithError(w, err, "Could not build report")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, report, ""))
}

func (h *AdminHandler) BulkEnroll(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		respondWithError(w, err, "Invalid year")
		return
	}
	courseID := r.URL.Query().Get("courseId")
	if courseID == "" {
		respondWithError(w, service.ErrInvalidInput, "courseId is required")
		return
	}

	file, _, err := h.formFile(r, "sheet")
	if err != nil {
		respondWithError(w, service.ErrInvalidInput, "Missing spreadsheet file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		respondWithError(w, service.ErrInvalidInput, "Could not read spreadsheet")
		return
	}

	results, err := h.admin.BulkEnroll(r.Context(), year, courseID, data)
	if err != nil {
		respondWithError(w, err, "Bulk enrollment failed")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, results, "Bulk enrollment processed"))
}

func (h *AdminHandler) CourseEnrollments(w http.ResponseWriter, r *http.Request) {
	enrollments, err := h.enrollments.ListForCourse(r.Context(), chi.URLParam(r, "courseID"))
	if err != nil {
		respondWithError(w, err, "Could not load enrollments")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, enrollments, ""))
}

func (h *AdminHandler) SetTracking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrackingNumber string `json:"trackingNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, service.ErrInvalidInput, "Invalid request body")
		return
	}

	err := h.enrollments.SetTrackingNumber(r.Context(),
		chi.URLParam(r, "userID"), chi.URLParam(r, "courseID"), req.TrackingNumber)
	if err != nil {
		respondWithError(w, err, "Could not set tracking number")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, nil, "Tracking number saved"))
}

func (h *AdminHandler) RemoveEnrollment(w http.ResponseWriter, r *http.Request) {
	err := h.enrollments.Remove(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "courseID"))
	if err != nil {
		respondWithError(w, err, "Could not remove enrollment")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, nil, "Enrollment removed"))
}

func (h *AdminHandler) ExportRoster(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		respondWithError(w, err, "Invalid year")
		return
	}
	courseID := r.URL.Query().Get("courseId")
	if courseID == "" {
		respondWithError(w, service.ErrInvalidInput, "courseId is required")
		return
	}

	url, err := h.exports.ExportRosterPDF(r.Context(), year, courseID)
	if err != nil {
		respondWithError(w, err, "Export failed")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, map[string]string{"url": url}, ""))
}

func (h *AdminHandler) ExportBundle(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		respondWithError(w, err, "Invalid year")
		return
	}

	url, err := h.exports.ExportYearBundle(r.Context(), year)
	if err != nil {
		respondWithError(w, err, "Export failed")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, map[string]string{"url": url}, ""))
}

func (h *AdminHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	examYear, err := strconv.Atoi(r.URL.Query().Get("examYear"))
	if err != nil {
		respondWithError(w, service.ErrInvalidInput, "Invalid examYear")
		return
	}

	students, err := h.admin.ListStudents(r.Context(), examYear)
	if err != nil {
		respondWithError(w, err, "Could not load students")
		return
	}

	// Strip credentials and codes from the listing.
	out := make([]map[string]interface{}, 0, len(students))
	for _, student := range students {
		out = append(out, map[string]interface{}{
			"userId":      student.UserID,
			"phoneNumber": student.PhoneNumber,
			"firstName":   student.FirstName,
			"lastName":    student.LastName,
			"examYear":    student.ExamYear,
			"school":      student.School,
			"district":    student.District,
			"isVerified":  student.IsAccountVerified,
			"isBlocked":   student.IsBlocked,
		})
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, out, ""))
}

func (h *AdminHandler) BlockUser(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.BlockUser(r.Context(), chi.URLParam(r, "userID"), true); err != nil {
		respondWithError(w, err, "Could not block user")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, nil, "User blocked"))
}

func (h *AdminHandler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.BlockUser(r.Context(), chi.URLParam(r, "userID"), false); err != nil {
		respondWithError(w, err, "Could not unblock user")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, nil, "User unblocked"))
}

func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, service.ErrInvalidInput, "Invalid request body")
		return
	}

	if err := h.admin.SetRole(r.Context(), chi.URLParam(r, "userID"), req.Role); err != nil {
		respondWithError(w, err, "Could not set role")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, nil, "Role updated"))
}

func (h *AdminHandler) formFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, nil, err
	}
	return r.FormFile(field)
}
