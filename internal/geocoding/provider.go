package geocoding

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/cartographer/internal/models"
)

// Provider is an interface that defines a method for geocoding an address.
// The Geocode method takes a context and an address string as input,
// and returns the first matching location or an error if any occurs.
type Provider interface {
	Geocode(ctx context.Context, address string) (*models.Location, error)
}

// ErrNoResult is returned when the provider responds with zero candidates.
// The message is stored verbatim as the job's last error.
var ErrNoResult = errors.New("No result") //nolint:revive,staticcheck // persisted message

// excerptLimit bounds the response body carried by UpstreamError.
const excerptLimit = 200

// UpstreamError reports a non-success or unusable response from a geocoding provider.
// A successful status with a body that cannot be parsed is reported with Cause set.
type UpstreamError struct {
	Provider string // Provider is the name of the failing provider.
	Status   int    // Status is the HTTP status code returned.
	Body     string // Body is a truncated excerpt of the response.
	Cause    error  // Cause is the parse failure, if any.
}

func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s API returned unusable response (status %d): %v: %s", e.Provider, e.Status, e.Cause, e.Body)
	}
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// newUpstreamError builds an UpstreamError, truncating the body to excerptLimit runes.
func newUpstreamError(provider string, status int, body []byte) *UpstreamError {
	runes := []rune(string(body))
	if len(runes) > excerptLimit {
		runes = runes[:excerptLimit]
	}

	return &UpstreamError{Provider: provider, Status: status, Body: string(runes)}
}

// newMalformedResponseError reports a response whose body could not be used.
func newMalformedResponseError(provider string, status int, body []byte, cause error) *UpstreamError {
	upstream := newUpstreamError(provider, status, body)
	upstream.Cause = cause
	return upstream
}
