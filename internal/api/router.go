package api

import (
	"log/slog"
	"net/http"

	mw "github.com/UnknownOlympus/cartographer/internal/api/middleware"
	"github.com/UnknownOlympus/cartographer/internal/api/response"
	"github.com/go-chi/chi/v5"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Logger      *slog.Logger
	WorkerToken string

	HealthHandler     http.HandlerFunc
	MetricsHandler    http.Handler
	UploadHandler     http.HandlerFunc
	ProcessOneHandler http.HandlerFunc
	UsageHandler      http.HandlerFunc
	GeocodeHandler    http.HandlerFunc
}

// NewRouter builds the chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.Logger(deps.Logger))
	r.Use(mw.Recovery(deps.Logger))

	r.Get("/healthz", orNotImplemented(deps.HealthHandler))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}
	r.Get("/api/geocode", orNotImplemented(deps.GeocodeHandler))

	// User routes
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireUser)

		r.Post("/api/jobs/upload", orNotImplemented(deps.UploadHandler))
		r.Get("/api/jobs/usage", orNotImplemented(deps.UsageHandler))
	})

	// Worker routes
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireWorkerToken(deps.WorkerToken))

		r.Post("/api/jobs/process-one", orNotImplemented(deps.ProcessOneHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotImplemented, "Endpoint not yet implemented")
	}
}
