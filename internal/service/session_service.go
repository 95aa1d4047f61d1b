package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lms-service/internal/config"
	"lms-service/internal/models"
	"lms-service/internal/repository/redis"
	"lms-service/internal/util"
)

// SessionService enforces the single-session rule: each login mints a brand
// new sid (never reusing one presented by the client) and repoints the user
// at it, which silently logs out any other device.
type SessionService struct {
	store redis.SessionStoreInterface
	ttl   time.Duration
}

func NewSessionService(store redis.SessionStoreInterface, cfg *config.Config) *SessionService {
	return &SessionService{
		store: store,
		ttl:   cfg.Session.CookieMaxAge,
	}
}

// TTL is the session lifetime, shared with the cookie max-age so the
// cookie and the cache entry expire together.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Establish creates a fresh session for the user and retires any previous
// one. Cleanup of the old sid is best effort: if it fails, the stale
// payload still cannot resolve because the user pointer has moved on.
func (s *SessionService) Establish(ctx context.Context, claims *models.SessionClaims) (string, error) {
	oldSessionID, err := s.store.ActiveSessionID(ctx, claims.UserID)
	if err != nil && !errors.Is(err, redis.ErrSessionNotFound) {
		return "", err
	}

	sessionID := uuid.New().String()
	if err := s.store.Save(ctx, sessionID, claims, s.ttl); err != nil {
		return "", err
	}

	if oldSessionID != "" && oldSessionID != sessionID {
		if err := s.store.DeleteSession(ctx, oldSessionID); err != nil {
			util.Warn("Failed to retire superseded session",
				zap.String("user_id", claims.UserID),
				zap.Error(err))
		}
	}

	util.Info("Session established", zap.String("user_id", claims.UserID))
	return sessionID, nil
}

// Resolve returns the claims for a sid, rejecting sessions that have been
// superseded by a newer login on another device.
func (s *SessionService) Resolve(ctx context.Context, sessionID string) (*models.SessionClaims, error) {
	claims, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, redis.ErrSessionNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}

	activeID, err := s.store.ActiveSessionID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, redis.ErrSessionNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}
	if activeID != sessionID {
		// Stale payload from before a newer login; drop it.
		if err := s.store.DeleteSession(ctx, sessionID); err != nil {
			util.Warn("Failed to delete superseded session", zap.Error(err))
		}
		return nil, ErrSessionInvalid
	}

	return claims, nil
}

// Destroy removes the session and the user pointer. Unknown sids are a
// no-op so logout is idempotent.
func (s *SessionService) Destroy(ctx context.Context, sessionID string) error {
	claims, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, redis.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	return s.store.Destroy(ctx, sessionID, claims.UserID)
}

// DestroyForUser logs the user out everywhere, used after password resets
// and admin blocks.
func (s *SessionService) DestroyForUser(ctx context.Context, userID string) error {
	sessionID, err := s.store.ActiveSessionID(ctx, userID)
	if err != nil {
		if errors.Is(err, redis.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	return s.store.Destroy(ctx, sessionID, userID)
}
