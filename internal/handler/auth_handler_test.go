package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lms-service/internal/config"
	"lms-service/internal/mocks"
	"lms-service/internal/service"
)

func newCookieHandler(environment string) *AuthHandler {
	cfg := &config.Config{
		Environment: environment,
		Session:     config.SessionConfig{CookieMaxAge: time.Hour},
	}
	return &AuthHandler{
		sessions: service.NewSessionService(mocks.NewMockSessionStore(), cfg),
		config:   cfg,
	}
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestSessionCookie_Production(t *testing.T) {
	h := newCookieHandler("production")
	rec := httptest.NewRecorder()
	h.setSessionCookie(rec, "sid-1")

	c := sessionCookie(t, rec)
	assert.Equal(t, "sid-1", c.Value)
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	// The web client lives on another origin in production.
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
}

func TestSessionCookie_Development(t *testing.T) {
	h := newCookieHandler("development")
	rec := httptest.NewRecorder()
	h.setSessionCookie(rec, "sid-1")

	c := sessionCookie(t, rec)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestClearSessionCookie(t *testing.T) {
	h := newCookieHandler("production")
	rec := httptest.NewRecorder()
	h.clearSessionCookie(rec)

	c := sessionCookie(t, rec)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
}
