package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Limiter throttles code requests per key (normally a phone number).
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// NoopLimiter never throttles.
type NoopLimiter struct{}

func (NoopLimiter) Allow(context.Context, string) (bool, error) { return true, nil }

// RedisLimiter is a fixed-window counter kept in Redis.
type RedisLimiter struct {
	client *redis.Client
	max    int64
	window time.Duration
	logger zerolog.Logger
}

// NewRedisLimiter allows max requests per key within window.
func NewRedisLimiter(client *redis.Client, max int, window time.Duration, logger zerolog.Logger) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		max:    int64(max),
		window: window,
		logger: logger,
	}
}

func (l *RedisLimiter) key(k string) string {
	return fmt.Sprintf("otp:requests:%s", k)
}

// Allow increments the window counter for key and reports whether it is still within the limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	rk := l.key(key)

	count, err := l.client.Incr(ctx, rk).Result()
	if err != nil {
		return false, fmt.Errorf("otp limiter: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, rk, l.window).Err(); err != nil {
			return false, fmt.Errorf("otp limiter: %w", err)
		}
	}

	if count > l.max {
		l.logger.Warn().Str("key", key).Int64("count", count).Msg("OTP request limit reached")
		return false, nil
	}
	return true, nil
}
