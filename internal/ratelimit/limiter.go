package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window counter kept in Redis, one window per purpose and key.
type Limiter struct {
	client redis.Cmdable
	max    int
	window time.Duration
}

func NewLimiter(client redis.Cmdable, max int, window time.Duration) *Limiter {
	return &Limiter{
		client: client,
		max:    max,
		window: window,
	}
}

func windowKey(purpose, key string) string {
	return fmt.Sprintf("ratelimit:%s:%s", purpose, key)
}

// Allow records an attempt and reports whether it is within the limit.
// The window starts at the first attempt.
func (l *Limiter) Allow(ctx context.Context, purpose, key string) (bool, error) {
	if l.max <= 0 {
		return true, nil
	}

	k := windowKey(purpose, key)

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record attempt: %w", err)
	}

	if count == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set window expiry: %w", err)
		}
	}

	return count <= int64(l.max), nil
}

// Reset clears the window for purpose and key.
func (l *Limiter) Reset(ctx context.Context, purpose, key string) error {
	if err := l.client.Del(ctx, windowKey(purpose, key)).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}
	return nil
}
