package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lms-service/internal/service"
)

// EnrollmentHandler covers the student-facing enrollment surface and live
// class joining.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
	meetings    *service.MeetingService
	sessions    *service.SessionService
}

func NewEnrollmentHandler(
	enrollments *service.EnrollmentService,
	meetings *service.MeetingService,
	sessions *service.SessionService,
) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollments: enrollments,
		meetings:    meetings,
		sessions:    sessions,
	}
}

func (h *EnrollmentHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(SessionAuth(h.sessions))

		r.Post("/enrollments", h.Enroll)
		r.Get("/enrollments/my", h.MyEnrollments)
		r.Get("/courses/{year}/{courseID}/access", h.CheckAccess)
		r.Post("/courses/{year}/{courseID}/join", h.JoinMeeting)
	})
}

type enrollRequest struct {
	CourseID string `json:"courseId"`
	Year     int    `json:"year"`
}

func (h *EnrollmentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, service.ErrInvalidInput, "Invalid request body")
		return
	}

	enrollment, err := h.enrollments.Enroll(r.Context(), claims.UserID, req.Year, req.CourseID)
	if err != nil {
		respondWithError(w, err, "Enrollment failed")
		return
	}
	respondWithJSON(w, http.StatusCreated, successResponse(CodeOK, enrollment,
		"Enrollment pending. Submit your payment to activate it."))
}

func (h *EnrollmentHandler) MyEnrollments(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	enrollments, err := h.enrollments.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		respondWithError(w, err, "Could not load enrollments")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, enrollments, ""))
}

func (h *EnrollmentHandler) CheckAccess(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	if err := h.enrollments.CheckAccess(r.Context(), claims.UserID, chi.URLParam(r, "courseID")); err != nil {
		respondWithError(w, err, "No access to this course")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, nil, "Access granted"))
}

func (h *EnrollmentHandler) JoinMeeting(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	year, err := yearParam(r)
	if err != nil {
		respondWithError(w, err, "Invalid year")
		return
	}

	join, err := h.meetings.Join(r.Context(), claims, year, chi.URLParam(r, "courseID"))
	if err != nil {
		respondWithError(w, err, "Could not join class")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, join, ""))
}
