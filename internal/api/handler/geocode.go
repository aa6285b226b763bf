package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/UnknownOlympus/cartographer/internal/api/response"
	"github.com/UnknownOlympus/cartographer/internal/geocoding"
)

// Pinger checks that the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type geocodeResponse struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	DisplayName string  `json:"displayName"`
}

// NewGeocodeHandler returns an http.HandlerFunc for GET /api/geocode?address=...
func NewGeocodeHandler(provider geocoding.Provider, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := strings.TrimSpace(r.URL.Query().Get("address"))
		if address == "" {
			response.Error(w, http.StatusBadRequest, "address is required")
			return
		}

		location, err := provider.Geocode(r.Context(), address)
		if errors.Is(err, geocoding.ErrNoResult) {
			response.Error(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			log.WarnContext(r.Context(), "Direct geocoding failed", "address", address, "error", err)
			response.Error(w, http.StatusBadGateway, err.Error())
			return
		}

		response.JSON(w, geocodeResponse{
			Lat:         location.Latitude,
			Lng:         location.Longitude,
			DisplayName: location.DisplayName,
		})
	}
}

// NewHealthHandler returns an http.HandlerFunc for GET /healthz.
func NewHealthHandler(db Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.DebugContext(r.Context(), "Performing health checks...")
		status, body := http.StatusOK, "OK"
		if err := db.Ping(r.Context()); err != nil {
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		}
		w.WriteHeader(status)
		if _, err := w.Write([]byte(body)); err != nil {
			log.ErrorContext(r.Context(), "failed to write reply", "error", err)
		}

		log.DebugContext(r.Context(), "Health checks completed", "status", status)
	}
}
