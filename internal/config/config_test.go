package config_test

import (
	"testing"
	"time"

	"github.com/UnknownOlympus/cartographer/internal/config"
	"github.com/stretchr/testify/assert"
)

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("QUEUE_ENV", "local")
	t.Setenv("QUEUE_POLL_INTERVAL", "30s")
	t.Setenv("QUEUE_LOCATION", "Asia/Tokyo")
	t.Setenv("WORKER_TOKEN", "secret")
	t.Setenv("GEOCODER_PROVIDER", "google")
	t.Setenv("GEOCODER_API_KEY", "testAPIKey")
	t.Setenv("GEOCODER_INTERVAL", "2s")
	t.Setenv("DB_HOST", "testHost")
	t.Setenv("DB_PORT", "12345")
	t.Setenv("DB_USERNAME", "admin")
	t.Setenv("DB_PASSWORD", "adminpass")
	t.Setenv("DB_NAME", "testName")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 200, cfg.MonthlyLimit)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, "Asia/Tokyo", cfg.Location.String())
	assert.Equal(t, "secret", cfg.WorkerToken)
	assert.Equal(t, "google", cfg.Geocoder.Provider)
	assert.Equal(t, "testAPIKey", cfg.Geocoder.APIKey)
	assert.Equal(t, 2*time.Second, cfg.Geocoder.Interval)
	assert.Equal(t, "fixed", cfg.Geocoder.Limiter)
	assert.Equal(t, "en", cfg.Geocoder.Language)
	assert.Equal(t, "testHost", cfg.Database.Host)
	assert.Equal(t, "12345", cfg.Database.Port)
	assert.Equal(t, "admin", cfg.Database.User)
	assert.Equal(t, "adminpass", cfg.Database.Password)
	assert.Equal(t, "testName", cfg.Database.Name)
}

func TestMustLoad_Defaults(t *testing.T) {
	cfg := config.MustLoad()

	assert.Equal(t, 1100*time.Millisecond, cfg.Geocoder.Interval)
	assert.Equal(t, "nominatim", cfg.Geocoder.Provider)
	assert.Equal(t, time.Duration(0), cfg.PollInterval)
	assert.Equal(t, "UTC", cfg.Location.String())
}

func TestMustLoad_PortError(t *testing.T) {
	t.Setenv("QUEUE_PORT", "error_value")

	assert.PanicsWithValue(t, "failed to parse port from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_LimitError(t *testing.T) {
	t.Setenv("QUEUE_MONTHLY_LIMIT", "-1")

	assert.PanicsWithValue(t, "failed to parse monthly limit from configuration, must be a non-negative integer", func() {
		config.MustLoad()
	})
}

func TestMustLoad_PollIntervalError(t *testing.T) {
	t.Setenv("QUEUE_POLL_INTERVAL", "error_value")

	assert.PanicsWithValue(t, "failed to parse poll interval from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_LocationError(t *testing.T) {
	t.Setenv("QUEUE_LOCATION", "Nowhere/Atlantis")

	assert.PanicsWithValue(t, "failed to load quota time zone from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_GeocoderIntervalError(t *testing.T) {
	t.Setenv("GEOCODER_INTERVAL", "soon")

	assert.PanicsWithValue(t, "failed to parse geocoder interval from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_GeocoderIntervalTooShort(t *testing.T) {
	t.Setenv("QUEUE_ENV", "production")
	t.Setenv("GEOCODER_INTERVAL", "0s")

	assert.PanicsWithValue(t, "geocoder interval must be at least 1s outside the local environment", func() {
		config.MustLoad()
	})
}

func TestMustLoad_GeocoderLimiterNone(t *testing.T) {
	t.Setenv("QUEUE_ENV", "development")
	t.Setenv("GEOCODER_LIMITER", "none")

	assert.PanicsWithValue(t, "geocoder limiter none is only allowed in the local environment", func() {
		config.MustLoad()
	})
}

func TestMustLoad_LocalAllowsFastGeocoder(t *testing.T) {
	t.Setenv("QUEUE_ENV", "local")
	t.Setenv("GEOCODER_INTERVAL", "0s")
	t.Setenv("GEOCODER_LIMITER", "none")

	cfg := config.MustLoad()

	assert.Equal(t, time.Duration(0), cfg.Geocoder.Interval)
	assert.Equal(t, "none", cfg.Geocoder.Limiter)
}
