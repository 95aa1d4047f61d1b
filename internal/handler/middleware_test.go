package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms-service/internal/config"
	"lms-service/internal/mocks"
	"lms-service/internal/models"
	"lms-service/internal/service"
)

func newTestSessions(store *mocks.MockSessionStore) *service.SessionService {
	return service.NewSessionService(store, &config.Config{
		Session: config.SessionConfig{CookieMaxAge: time.Hour},
	})
}

func TestSessionAuth_ValidCookie(t *testing.T) {
	store := mocks.NewMockSessionStore()
	store.GetFunc = func(ctx context.Context, sessionID string) (*models.SessionClaims, error) {
		return &models.SessionClaims{UserID: "u-1", Role: models.RoleStudent}, nil
	}
	store.ActiveSessionIDFunc = func(ctx context.Context, userID string) (string, error) {
		return "sid-1", nil
	}

	var gotClaims *models.SessionClaims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/enrollments/my", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sid-1"})
	rec := httptest.NewRecorder()

	SessionAuth(newTestSessions(store))(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotClaims)
	assert.Equal(t, "u-1", gotClaims.UserID)
}

func TestSessionAuth_MissingCookie(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a session")
	})

	req := httptest.NewRequest(http.MethodGet, "/enrollments/my", nil)
	rec := httptest.NewRecorder()

	SessionAuth(newTestSessions(mocks.NewMockSessionStore()))(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuth_SupersededSession(t *testing.T) {
	store := mocks.NewMockSessionStore()
	store.GetFunc = func(ctx context.Context, sessionID string) (*models.SessionClaims, error) {
		return &models.SessionClaims{UserID: "u-1"}, nil
	}
	store.ActiveSessionIDFunc = func(ctx context.Context, userID string) (string, error) {
		return "newer-sid", nil
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run for a superseded session")
	})

	req := httptest.NewRequest(http.MethodGet, "/enrollments/my", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "older-sid"})
	rec := httptest.NewRecorder()

	SessionAuth(newTestSessions(store))(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminOnly(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/students", nil)
		ctx := context.WithValue(req.Context(), sessionClaimsKey,
			&models.SessionClaims{UserID: "u-1", IsAdmin: true})
		rec := httptest.NewRecorder()

		AdminOnly(next).ServeHTTP(rec, req.WithContext(ctx))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("student refused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/students", nil)
		ctx := context.WithValue(req.Context(), sessionClaimsKey,
			&models.SessionClaims{UserID: "u-2"})
		rec := httptest.NewRecorder()

		AdminOnly(next).ServeHTTP(rec, req.WithContext(ctx))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no claims refused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/students", nil)
		rec := httptest.NewRecorder()

		AdminOnly(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
