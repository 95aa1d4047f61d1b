package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lms-service/internal/config"
	"lms-service/internal/service"
	"lms-service/internal/util"
)

// AuthHandler exposes registration, verification, login and password reset.
type AuthHandler struct {
	authService *service.AuthService
	sessions    *service.SessionService
	config      *config.Config
}

func NewAuthHandler(authService *service.AuthService, sessions *service.SessionService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		config:      cfg,
	}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/otp/request", h.RequestOTP)
		r.Post("/verify", h.VerifyPhone)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Post("/password/forgot", h.ForgotPassword)
		r.Post("/password/reset", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(SessionAuth(h.sessions))
			r.Get("/me", h.Me)
		})
	})
}

type phoneRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, service.ErrInvalidInput, "Invalid request body")
		return
	}

	result, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		respondWithError(w, err, "Registration failed")
		return
	}

	code := CodeRegistered
	message := "Registered. Check your phone for the verification code."
	if !result.OTPDelivered {
		code = CodeRegisteredOTPFailed
		message = "Registered, but the verification SMS could not be sent. Request a new code."
	}

	respondWithJSON(w, http.StatusCreated, successResponse(code, map[string]interface{}{
		"userId":      result.User.UserID,
		"phoneNumber": result.User.PhoneNumber,
	}, message))
}

func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req phoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, service.ErrInvalidInput, "Invalid request body")
		return
	}

	if err := h.authService.RequestVerifyOTP(r.Context(), req.PhoneNumber); err != nil {
		respondWithError(w, err, "Could not send verification code")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOTPSent, nil, "Verification code sent"))
}

func (h *AuthHandler) VerifyPhone(w http.ResponseWriter, r *http.Request) {
	var req service.VerifyPhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, service.ErrInvalidInput, "Invalid request body")
		return
	}

	result, err := h.authService.VerifyPhone(r.Context(), &req)
	if err != nil {
		respondWithError(w, err, "Verification failed")
		return
	}

	// Verification doubles as the first login.
	h.setSessionCookie(w, result.SessionID)
	respondWithJSON(w, http.StatusOK, successResponse(CodeVerified, map[string]interface{}{
		"userId":    result.User.UserID,
		"firstName": result.User.FirstName,
		"lastName":  result.User.LastName,
		"role":      result.User.Role,
	}, "Phone number verified"))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, service.ErrInvalidInput, "Invalid request body")
		return
	}

	result, err := h.authService.Login(r.Context(), &req, r.RemoteAddr)
	if err != nil {
		respondWithError(w, err, "Login failed")
		return
	}

	h.setSessionCookie(w, result.SessionID)
	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, map[string]interface{}{
		"userId":    result.User.UserID,
		"firstName": result.User.FirstName,
		"lastName":  result.User.LastName,
		"role":      result.User.Role,
		"isAdmin":   result.User.IsAdmin,
		"examYear":  result.User.ExamYear,
	}, "Logged in"))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.authService.Logout(r.Context(), cookie.Value); err != nil {
			util.Warn("Logout cleanup failed", util.ErrorField(err))
		}
	}

	h.clearSessionCookie(w)
	respondWithJSON(w, http.StatusOK, successResponse(CodeLoggedOut, nil, "Logged out"))
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req phoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, service.ErrInvalidInput, "Invalid request body")
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.PhoneNumber); err != nil {
		respondWithError(w, err, "Could not send reset code")
		return
	}
	respondWithJSON(w, http.StatusOK, successResponse(CodeOTPSent, nil, "Reset code sent"))
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req service.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, service.ErrInvalidInput, "Invalid request body")
		return
	}

	if err := h.authService.ResetPassword(r.Context(), &req); err != nil {
		respondWithError(w, err, "Password reset failed")
		return
	}

	// All sessions are gone after a reset; drop the cookie too.
	h.clearSessionCookie(w)
	respondWithJSON(w, http.StatusOK, successResponse(CodePasswordReset, nil, "Password updated. Log in again."))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	user, nic, err := h.authService.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		respondWithError(w, err, "Could not load profile")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(CodeOK, map[string]interface{}{
		"userId":      user.UserID,
		"phoneNumber": user.PhoneNumber,
		"firstName":   user.FirstName,
		"lastName":    user.LastName,
		"nic":         nic,
		"gender":      user.Gender,
		"birthDate":   user.BirthDate,
		"examYear":    user.ExamYear,
		"school":      user.School,
		"district":    user.District,
		"role":        user.Role,
		"isVerified":  user.IsAccountVerified,
	}, ""))
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.config.IsProduction(),
		SameSite: h.cookieSameSite(),
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.IsProduction(),
		SameSite: h.cookieSameSite(),
	})
}

// The web client is served from a different origin in production, so the
// cookie needs SameSite=None there; None requires Secure, which
// setSessionCookie already ties to the same switch.
func (h *AuthHandler) cookieSameSite() http.SameSite {
	if h.config.IsProduction() {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
