package geocoding_test

import (
	"context"
	"testing"
	"time"

	"github.com/UnknownOlympus/cartographer/internal/geocoding"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx))
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestRedisGate_Wait(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client := setupRedis(t)
	interval := 200 * time.Millisecond

	t.Run("second caller waits for the interval", func(t *testing.T) {
		first := geocoding.NewRedisGate(client, "test:gate:spacing", interval)
		second := geocoding.NewRedisGate(client, "test:gate:spacing", interval)

		require.NoError(t, first.Wait(t.Context()))
		start := time.Now()
		require.NoError(t, second.Wait(t.Context()))

		assert.GreaterOrEqual(t, time.Since(start), interval/2)
	})

	t.Run("cancelled while waiting", func(t *testing.T) {
		gate := geocoding.NewRedisGate(client, "test:gate:cancel", time.Minute)
		require.NoError(t, gate.Wait(t.Context()))

		ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
		defer cancel()

		err := gate.Wait(ctx)

		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("default key", func(t *testing.T) {
		gate := geocoding.NewRedisGate(client, "", interval)

		require.NoError(t, gate.Wait(t.Context()))

		exists, err := client.Exists(t.Context(), geocoding.DefaultGateKey).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)
	})
}
