package geocoding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/cartographer/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Maps geocoding services.
type GoogleProvider struct {
	client   GoogleAPIClient // client is the Google Maps API client
	log      *slog.Logger    // log is the logger for logging operations
	language string          // language of the formatted address
}

type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// NewGoogleProvider initializes a new GoogleProvider with the given client, logger and result language.
func NewGoogleProvider(client GoogleAPIClient, language string, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log, language: language}
}

// Geocode takes a context and an address string as input, and returns the location
// of the provided address using the Google Maps Geocoding API. The first result wins;
// an empty response yields ErrNoResult.
func (gp *GoogleProvider) Geocode(ctx context.Context, address string) (*models.Location, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "address", address)

	req := maps.GeocodingRequest{Address: address, Language: gp.language}
	geocodeResponse, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}

	if len(geocodeResponse) == 0 {
		return nil, ErrNoResult
	}
	first := geocodeResponse[0]
	coords := first.Geometry.Location

	return &models.Location{
		Latitude:    coords.Lat,
		Longitude:   coords.Lng,
		DisplayName: first.FormattedAddress,
	}, nil
}
