package geocoding

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultGateKey is the Redis key shared by all processes when none is configured.
const DefaultGateKey = "geocoding:gate"

// minGatePoll bounds how often a waiting process retries the gate.
const minGatePoll = 10 * time.Millisecond

// RedisGate is a Limiter shared across processes. A call may proceed once it
// sets the gate key with SET NX PX interval, so at most one call per interval
// starts across every process using the same key.
type RedisGate struct {
	client   redis.Cmdable
	key      string
	interval time.Duration
}

// NewRedisGate creates a RedisGate. An empty key selects DefaultGateKey.
func NewRedisGate(client redis.Cmdable, key string, interval time.Duration) *RedisGate {
	if key == "" {
		key = DefaultGateKey
	}

	return &RedisGate{client: client, key: key, interval: interval}
}

// Wait blocks until this caller owns the gate for the next interval.
func (g *RedisGate) Wait(ctx context.Context) error {
	if g.interval <= 0 {
		return nil
	}

	for {
		acquired, err := g.client.SetNX(ctx, g.key, time.Now().UnixNano(), g.interval).Result()
		if err != nil {
			return fmt.Errorf("acquire redis gate: %w", err)
		}
		if acquired {
			return nil
		}

		ttl, err := g.client.PTTL(ctx, g.key).Result()
		if err != nil {
			return fmt.Errorf("read redis gate ttl: %w", err)
		}
		if ttl < minGatePoll {
			ttl = minGatePoll
		}

		timer := time.NewTimer(ttl)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
