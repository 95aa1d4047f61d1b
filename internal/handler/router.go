package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// HealthChecker reports per-dependency health for the /health endpoint.
type HealthChecker interface {
	HealthCheck(ctx context.Context) map[string]error
	IsHealthy(ctx context.Context) bool
}

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(
	auth *AuthHandler,
	catalog *CatalogHandler,
	enrollments *EnrollmentHandler,
	payments *PaymentHandler,
	admin *AdminHandler,
	health HealthChecker,
	logger *zap.Logger,
) chi.Router {
	router := chi.NewRouter()

	// Middleware stack
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggerMiddleware(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := health.HealthCheck(ctx)
		status := make(map[string]string, len(checks))
		for name, err := range checks {
			if err != nil {
				status[name] = err.Error()
			} else {
				status[name] = "ok"
			}
		}

		code := http.StatusOK
		if !health.IsHealthy(ctx) {
			code = http.StatusServiceUnavailable
		}
		respondWithJSON(w, code, successResponse(CodeOK, status, ""))
	})

	// API routes
	router.Route("/api/v1", func(r chi.Router) {
		auth.RegisterRoutes(r)
		catalog.RegisterRoutes(r)
		enrollments.RegisterRoutes(r)
		payments.RegisterRoutes(r)
		admin.RegisterRoutes(r)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusNotFound,
			errorResponse(CodeNotFound, nil, "endpoint not found"))
	})

	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusMethodNotAllowed,
			errorResponse(CodeValidationFailed, nil, "method not allowed"))
	})

	return router
}
