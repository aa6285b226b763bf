package geocoding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UnknownOlympus/cartographer/internal/models"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter gates outbound provider calls. Wait blocks until a call may proceed
// or the context is done. *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// LimiterKind selects a Limiter implementation.
type LimiterKind string

const (
	// LimiterFixed waits the full interval before every call.
	LimiterFixed LimiterKind = "fixed"
	// LimiterBucket spaces calls made by this process at least one interval apart.
	LimiterBucket LimiterKind = "bucket"
	// LimiterRedis spaces calls made by every process sharing the Redis key.
	LimiterRedis LimiterKind = "redis"
	// LimiterNone disables rate limiting.
	LimiterNone LimiterKind = "none"
)

// LimiterConfig holds configuration for creating a Limiter.
type LimiterConfig struct {
	Kind     LimiterKind
	Interval time.Duration
	Redis    redis.Cmdable // Redis is required for LimiterRedis.
	Key      string        // Key overrides the Redis gate key.
}

// NewLimiter creates the Limiter described by config.
func NewLimiter(config LimiterConfig) (Limiter, error) {
	switch config.Kind {
	case LimiterFixed:
		return FixedInterval(config.Interval), nil
	case LimiterBucket:
		return rate.NewLimiter(rate.Every(config.Interval), 1), nil
	case LimiterRedis:
		if config.Redis == nil {
			return nil, errors.New("redis client is required for redis limiter")
		}
		return NewRedisGate(config.Redis, config.Key, config.Interval), nil
	case LimiterNone:
		return Unlimited{}, nil
	default:
		return nil, fmt.Errorf("unsupported limiter kind: %s", config.Kind)
	}
}

// FixedInterval sleeps for its duration on every Wait.
type FixedInterval time.Duration

// Wait sleeps for the interval or returns the context error if cancelled first.
func (f FixedInterval) Wait(ctx context.Context) error {
	timer := time.NewTimer(time.Duration(f))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Unlimited never blocks. Useful in tests.
type Unlimited struct{}

// Wait returns immediately.
func (Unlimited) Wait(context.Context) error { return nil }

// rateLimitedProvider waits on a Limiter before delegating to the wrapped provider.
type rateLimitedProvider struct {
	next    Provider
	limiter Limiter
}

// RateLimited wraps a provider so that every Geocode call first waits on limiter.
func RateLimited(next Provider, limiter Limiter) Provider {
	return &rateLimitedProvider{next: next, limiter: limiter}
}

func (rp *rateLimitedProvider) Geocode(ctx context.Context, address string) (*models.Location, error) {
	if err := rp.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	return rp.next.Geocode(ctx, address)
}
