package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"lms-service/internal/models"
	"lms-service/internal/service"
	"lms-service/internal/util"
)

type contextKey string

const sessionClaimsKey contextKey = "session_claims"

// SessionCookieName is the cookie carrying the sid.
const SessionCookieName = "sid"

// LoggerMiddleware logs each request with its duration and status.
func LoggerMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.status),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// SessionAuth resolves the sid cookie into session claims and stores them
// on the request context. Requests without a valid session get 401.
func SessionAuth(sessions *service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				respondWithError(w, service.ErrSessionInvalid, "Authentication required")
				return
			}

			claims, err := sessions.Resolve(r.Context(), cookie.Value)
			if err != nil {
				respondWithError(w, err, "Authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), sessionClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly sits behind SessionAuth and rejects non-admin sessions.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil || !claims.IsAdmin {
			respondWithError(w, service.ErrPermissionDenied, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFromContext returns the session claims placed by SessionAuth, or
// nil when the request is unauthenticated.
func ClaimsFromContext(ctx context.Context) *models.SessionClaims {
	claims, _ := ctx.Value(sessionClaimsKey).(*models.SessionClaims)
	return claims
}

// requireClaims is the in-handler guard; SessionAuth should already have
// run, this covers wiring mistakes.
func requireClaims(w http.ResponseWriter, r *http.Request) (*models.SessionClaims, bool) {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		util.Error("Handler reached without session claims",
			util.String("path", r.URL.Path))
		respondWithError(w, service.ErrSessionInvalid, "Authentication required")
		return nil, false
	}
	return claims, true
}
