package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/cartographer/internal/models"
)

const (
	// NominatimBaseURL is the public Nominatim search endpoint.
	NominatimBaseURL = "https://nominatim.openstreetmap.org/search"
	// DefaultUserAgent identifies this service when no user agent is configured.
	DefaultUserAgent = "Cartographer-Geocoding-Queue/1.0 (https://github.com/UnknownOlympus/cartographer)"
	// DefaultLanguage is the Accept-Language sent when none is configured.
	DefaultLanguage = "en"
)

// NominatimProvider implements the Provider interface using OpenStreetMap's Nominatim API.
// This is a free geocoding service with usage limits (1 request/second for fair use),
// which callers enforce by wrapping the provider with RateLimited.
type NominatimProvider struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Base URL for the Nominatim API
	log     *slog.Logger // Logger for logging operations
	// userAgent is required by Nominatim usage policy; requests without a
	// valid identifier get degraded service.
	userAgent string
	language  string
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NominatimOptions configures the outbound requests of a NominatimProvider.
// Empty fields fall back to the package defaults.
type NominatimOptions struct {
	BaseURL   string
	UserAgent string
	Language  string
}

// nominatimResponse represents one candidate in the jsonv2 response.
type nominatimResponse struct {
	Lat         string `json:"lat"`          // Latitude as string
	Lon         string `json:"lon"`          // Longitude as string
	DisplayName string `json:"display_name"` // Formatted address
}

// NewNominatimProvider creates a new Nominatim geocoding provider with a default HTTP client.
func NewNominatimProvider(opts NominatimOptions, log *slog.Logger) *NominatimProvider {
	const timeout = 10
	return NewNominatimProviderWithClient(&http.Client{Timeout: timeout * time.Second}, opts, log)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(client HTTPClient, opts NominatimOptions, log *slog.Logger) *NominatimProvider {
	if opts.BaseURL == "" {
		opts.BaseURL = NominatimBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}

	return &NominatimProvider{
		client:    client,
		baseURL:   opts.BaseURL,
		log:       log,
		userAgent: opts.UserAgent,
		language:  opts.Language,
	}
}

// Geocode converts an address to a location using the Nominatim API.
// It always takes the first candidate; a response with no candidates yields ErrNoResult
// and any non-2xx status or unparseable body yields an *UpstreamError.
func (np *NominatimProvider) Geocode(ctx context.Context, address string) (*models.Location, error) {
	np.log.DebugContext(ctx, "Geocoding using Nominatim", "address", address)

	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("q", address)
	query.Set("format", "jsonv2")
	query.Set("limit", "1")
	query.Set("addressdetails", "1")
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set required headers per Nominatim usage policy
	req.Header.Set("User-Agent", np.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", np.language)

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, newUpstreamError("nominatim", resp.StatusCode, body)
	}

	var results []nominatimResponse
	if err = json.Unmarshal(body, &results); err != nil {
		np.log.ErrorContext(ctx, "Failed to parse Nominatim response", "error", err, "body", string(body))
		return nil, newMalformedResponseError("nominatim", resp.StatusCode, body,
			fmt.Errorf("failed to decode nominatim response: %w", err))
	}

	if len(results) == 0 {
		return nil, ErrNoResult
	}

	first := results[0]
	np.log.DebugContext(ctx, "Nominatim found result", "lat", first.Lat, "lon", first.Lon)

	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return nil, newMalformedResponseError("nominatim", resp.StatusCode, body,
			fmt.Errorf("invalid latitude %q: %w", first.Lat, err))
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return nil, newMalformedResponseError("nominatim", resp.StatusCode, body,
			fmt.Errorf("invalid longitude %q: %w", first.Lon, err))
	}

	return &models.Location{
		Latitude:    lat,
		Longitude:   lon,
		DisplayName: first.DisplayName,
	}, nil
}
