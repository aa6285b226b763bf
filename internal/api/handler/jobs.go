package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	mw "github.com/UnknownOlympus/cartographer/internal/api/middleware"
	"github.com/UnknownOlympus/cartographer/internal/api/response"
	"github.com/UnknownOlympus/cartographer/internal/models"
	"github.com/UnknownOlympus/cartographer/internal/queue"
	"github.com/UnknownOlympus/cartographer/internal/quota"
	"github.com/UnknownOlympus/cartographer/internal/service"
	"github.com/google/uuid"
)

// MaxUploadBytes caps the size of an upload request body.
const MaxUploadBytes = 4 << 20

// Enqueuer queues uploaded rows for a user.
type Enqueuer interface {
	Enqueue(ctx context.Context, userID string, rows []queue.InputRow, now time.Time) (*queue.Result, error)
}

// UsageReader reports a user's monthly quota usage.
type UsageReader interface {
	Usage(ctx context.Context, userID string, now time.Time) (models.Usage, error)
}

// Processor processes a single queued job.
type Processor interface {
	ProcessOne(ctx context.Context) (service.Result, error)
}

type uploadResponse struct {
	OK        bool `json:"ok"`
	Inserted  int  `json:"inserted"`
	Skipped   int  `json:"skipped"`
	Limit     int  `json:"limit"`
	Used      int  `json:"used"`
	Remaining int  `json:"remaining"`
}

type processResponse struct {
	OK        bool       `json:"ok"`
	Processed int        `json:"processed"`
	ID        *uuid.UUID `json:"id,omitempty"`
	Lat       *float64   `json:"lat,omitempty"`
	Lng       *float64   `json:"lng,omitempty"`
	Error     string     `json:"error,omitempty"`
	Skipped   string     `json:"skipped,omitempty"`
}

type periodResponse struct {
	Start time.Time `json:"start"`
	Next  time.Time `json:"next"`
}

type usageResponse struct {
	OK        bool           `json:"ok"`
	Limit     int            `json:"limit"`
	Used      int            `json:"used"`
	Remaining int            `json:"remaining"`
	Period    periodResponse `json:"period"`
}

// NewUploadHandler returns an http.HandlerFunc for POST /api/jobs/upload.
func NewUploadHandler(q Enqueuer, now func() time.Time, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req struct {
			Rows []queue.InputRow `json:"rows"`
		}
		r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Error(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			response.Error(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		result, err := q.Enqueue(r.Context(), userID, req.Rows, now())
		switch {
		case errors.Is(err, queue.ErrRowsRequired), errors.Is(err, queue.ErrNoValidRows):
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, quota.ErrQuotaExceeded):
			response.Error(w, http.StatusTooManyRequests, err.Error())
			return
		case err != nil:
			log.ErrorContext(r.Context(), "Failed to enqueue upload", "user", userID, "error", err)
			response.Error(w, http.StatusInternalServerError, "Failed to enqueue jobs")
			return
		}

		response.JSON(w, uploadResponse{
			OK:        true,
			Inserted:  result.Inserted,
			Skipped:   result.Skipped,
			Limit:     result.Limit,
			Used:      result.Used,
			Remaining: result.Remaining,
		})
	}
}

// NewProcessOneHandler returns an http.HandlerFunc for POST /api/jobs/process-one.
// A failed job is reported with status 200 and ok=false.
func NewProcessOneHandler(p Processor, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := p.ProcessOne(r.Context())
		if err != nil {
			log.ErrorContext(r.Context(), "Failed to claim job", "error", err)
			response.Error(w, http.StatusInternalServerError, err.Error())
			return
		}

		resp := processResponse{
			OK:        result.OK(),
			Processed: result.Processed(),
			Error:     result.Error,
			Skipped:   result.Skipped,
		}
		if result.Processed() > 0 {
			resp.ID = &result.JobID
		}
		if result.Location != nil {
			resp.Lat = &result.Location.Latitude
			resp.Lng = &result.Location.Longitude
		}

		response.JSON(w, resp)
	}
}

// NewUsageHandler returns an http.HandlerFunc for GET /api/jobs/usage.
func NewUsageHandler(u UsageReader, now func() time.Time, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := mw.GetUserID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		usage, err := u.Usage(r.Context(), userID, now())
		if err != nil {
			log.ErrorContext(r.Context(), "Failed to read usage", "user", userID, "error", err)
			response.Error(w, http.StatusInternalServerError, "Failed to read usage")
			return
		}

		response.JSON(w, usageResponse{
			OK:        true,
			Limit:     usage.Limit,
			Used:      usage.Used,
			Remaining: usage.Remaining,
			Period:    periodResponse{Start: usage.Period.Start, Next: usage.Period.Next},
		})
	}
}
