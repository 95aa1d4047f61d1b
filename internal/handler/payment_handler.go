package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lms-service/internal/service"
)

// PaymentHandler is the student-facing payment surface; review lives on
// the admin routes.
type PaymentHandler struct {
	payments *service.PaymentService
	sessions *service.SessionService
}

func NewPaymentHandler(payments *service.PaymentService, sessions *service.SessionService) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		sessions: sessions,
	}
}

func (h *PaymentHandler) RegisterRoutes(router chi.Router) {
	router.Group(func(r chi.Router) {
		r.Use(SessionAuth(h.sessions))

		r.Post("/payments", h.SubmitPayment)
		r.Get("/payments/my", h.MyPayments)
	})
}

func (h *PaymentHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req service.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, service.ErrInvalidInput, "Invalid request body")
		return
	}

	payment, err := h.payments.SubmitPayment(r.Context(), claims.UserID, &req)
	if err != nil {
		respondWithError(w, err, "Payment submission failed")
		return
	}
	respondWithJSON(w, http.StatusCreated, successResponse(CodeOK, payment,
		"Payment submitted for review"))
}

func (h *PaymentHandler) MyPayments(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	payments, err := h.payments.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		respondWithError(w, err, "Could not load payments")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, payments, ""))
}
