package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lms-service/internal/client"
	"lms-service/internal/models"
	"lms-service/internal/util"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionStoreInterface interface {
	Save(ctx context.Context, sessionID string, claims *models.SessionClaims, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*models.SessionClaims, error)
	ActiveSessionID(ctx context.Context, userID string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error
	Destroy(ctx context.Context, sessionID, userID string) error
}

type SessionCache struct {
	client *client.RedisClient
}

var _ SessionStoreInterface = (*SessionCache)(nil)

func NewSessionCache(client *client.RedisClient) *SessionCache {
	return &SessionCache{client: client}
}

// Save writes the claims under session:<sid> and repoints user_session:<uid>
// at this sid. Both keys carry the same TTL so they expire together.
func (c *SessionCache) Save(ctx context.Context, sessionID string, claims *models.SessionClaims, ttl time.Duration) error {
	payload, err := json.Marshal(claims)
	if err != nil {
		return fmt.Errorf("failed to marshal session claims: %w", err)
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, sessionKey(sessionID), payload, ttl)
	pipe.Set(ctx, userSessionKey(claims.UserID), sessionID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		util.Error("Failed to save session",
			zap.String("user_id", claims.UserID),
			zap.Error(err))
		return fmt.Errorf("failed to save session: %w", err)
	}

	util.Debug("Session saved",
		zap.String("user_id", claims.UserID),
		zap.Duration("ttl", ttl))
	return nil
}

func (c *SessionCache) Get(ctx context.Context, sessionID string) (*models.SessionClaims, error) {
	raw, err := c.client.Get(ctx, sessionKey(sessionID))
	if err != nil {
		if errors.Is(err, client.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	claims := &models.SessionClaims{}
	if err := json.Unmarshal([]byte(raw), claims); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session claims: %w", err)
	}
	return claims, nil
}

// ActiveSessionID returns the sid currently bound to the user, or
// ErrSessionNotFound when no session exists.
func (c *SessionCache) ActiveSessionID(ctx context.Context, userID string) (string, error) {
	sessionID, err := c.client.Get(ctx, userSessionKey(userID))
	if err != nil {
		if errors.Is(err, client.ErrKeyNotFound) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("failed to get active session: %w", err)
	}
	return sessionID, nil
}

// DeleteSession removes only the session payload, leaving the user pointer
// alone. Used when a superseded sid is being retired after a new login.
func (c *SessionCache) DeleteSession(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, sessionKey(sessionID)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Destroy removes both the session payload and the user pointer.
func (c *SessionCache) Destroy(ctx context.Context, sessionID, userID string) error {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, sessionKey(sessionID))
	pipe.Del(ctx, userSessionKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		util.Error("Failed to destroy session",
			zap.String("user_id", userID),
			zap.Error(err))
		return fmt.Errorf("failed to destroy session: %w", err)
	}

	util.Info("Session destroyed", zap.String("user_id", userID))
	return nil
}
