package geocoding_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/cartographer/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	logger := slog.Default()

	t.Run("create Google provider successfully", func(t *testing.T) {
		config := geocoding.ProviderConfig{
			Type:   geocoding.ProviderTypeGoogle,
			APIKey: "test-api-key",
			Logger: logger,
		}

		provider, err := geocoding.NewProvider(config)

		require.NoError(t, err)
		_, ok := provider.(*geocoding.GoogleProvider)
		assert.True(t, ok, "expected provider to be *GoogleProvider")
	})

	t.Run("create Google provider without API key fails", func(t *testing.T) {
		config := geocoding.ProviderConfig{
			Type:   geocoding.ProviderTypeGoogle,
			Logger: logger,
		}

		provider, err := geocoding.NewProvider(config)

		require.Nil(t, provider)
		assert.ErrorContains(t, err, "API key is required for Google provider")
	})

	t.Run("create Nominatim provider successfully", func(t *testing.T) {
		config := geocoding.ProviderConfig{
			Type:      geocoding.ProviderTypeNominatim,
			UserAgent: "Test/1.0",
			Logger:    logger,
		}

		provider, err := geocoding.NewProvider(config)

		require.NoError(t, err)
		_, ok := provider.(*geocoding.NominatimProvider)
		assert.True(t, ok, "expected provider to be *NominatimProvider")
	})

	t.Run("unsupported provider type", func(t *testing.T) {
		config := geocoding.ProviderConfig{
			Type:   geocoding.ProviderType("unsupported"),
			Logger: logger,
		}

		provider, err := geocoding.NewProvider(config)

		require.Nil(t, provider)
		assert.ErrorContains(t, err, "unsupported provider type: unsupported")
	})

	t.Run("empty provider type", func(t *testing.T) {
		provider, err := geocoding.NewProvider(geocoding.ProviderConfig{Logger: logger})

		require.Nil(t, provider)
		assert.ErrorContains(t, err, "unsupported provider type")
	})
}

func TestProviderType_Constants(t *testing.T) {
	assert.Equal(t, "google", string(geocoding.ProviderTypeGoogle))
	assert.Equal(t, "nominatim", string(geocoding.ProviderTypeNominatim))
}
