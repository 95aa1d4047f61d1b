package redis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lms-service/internal/client"
	"lms-service/internal/util"
)

type RateLimiterInterface interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Reset(ctx context.Context, key string) error
}

// RateLimitCache counts attempts in a fixed window. The first increment
// starts the window; once the count exceeds the limit the caller backs off
// until the key expires.
type RateLimitCache struct {
	client *client.RedisClient
}

var _ RateLimiterInterface = (*RateLimitCache)(nil)

func NewRateLimitCache(client *client.RedisClient) *RateLimitCache {
	return &RateLimitCache{client: client}
}

func (c *RateLimitCache) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := c.client.IncrWithExpire(ctx, key, window)
	if err != nil {
		util.Error("Failed to increment rate limit counter",
			zap.String("key", key),
			zap.Error(err))
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	if count > int64(limit) {
		util.Warn("Rate limit exceeded",
			zap.String("key", key),
			zap.Int64("count", count),
			zap.Int("limit", limit))
		return false, nil
	}
	return true, nil
}

// Reset clears the counter, used after a successful login so earlier
// failures stop counting against the user.
func (c *RateLimitCache) Reset(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key); err != nil {
		return fmt.Errorf("failed to reset rate limit counter: %w", err)
	}
	return nil
}
