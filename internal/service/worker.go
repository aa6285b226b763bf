package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/cartographer/internal/geocoding"
	"github.com/UnknownOlympus/cartographer/internal/metrics"
	"github.com/UnknownOlympus/cartographer/internal/models"
	"github.com/UnknownOlympus/cartographer/internal/repository"
	"github.com/google/uuid"
)

// finalizeTimeout bounds the writes that move a claimed job out of processing.
const finalizeTimeout = 5 * time.Second

// Outcome is the branch a ProcessOne call took.
type Outcome string

const (
	OutcomeNoOp    Outcome = "noop"
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Result describes a single ProcessOne invocation.
type Result struct {
	Outcome  Outcome
	JobID    uuid.UUID        // JobID is set when a job was claimed
	Location *models.Location // Location is set on success
	Error    string           // Error is the message recorded on a failed job
	Skipped  string           // Skipped explains a no-op caused by a lost claim
}

// Processed is 1 when a job was claimed and 0 otherwise.
func (r Result) Processed() int {
	if r.Outcome == OutcomeNoOp {
		return 0
	}
	return 1
}

// OK reports whether the invocation ended without a failed job.
func (r Result) OK() bool {
	return r.Outcome != OutcomeFailure
}

// JobStore is the part of the repository the worker drives.
type JobStore interface {
	ClaimOldestQueued(ctx context.Context, now time.Time) (*models.Job, error)
	CompleteJob(ctx context.Context, customer models.Customer, now time.Time) error
	MarkFailed(ctx context.Context, jobID uuid.UUID, errMsg string, now time.Time) error
}

// Worker claims queued jobs one at a time, geocodes their address and stores
// the resulting customer record.
type Worker struct {
	log          *slog.Logger       // Logger for worker activity
	store        JobStore           // Job and customer persistence
	provider     geocoding.Provider // Rate limited geocoding provider
	metrics      *metrics.Metrics   // Metrics for tracking worker performance
	pollInterval time.Duration      // Interval between drain passes in Run
	now          func() time.Time
}

// NewWorker creates a Worker. The provider is expected to apply the outbound
// rate limit and request timing itself, see geocoding.RateLimited and geocoding.Timed.
func NewWorker(
	log *slog.Logger,
	store JobStore,
	provider geocoding.Provider,
	metrics *metrics.Metrics,
	pollInterval time.Duration,
) *Worker {
	return &Worker{
		log:          log,
		store:        store,
		provider:     provider,
		metrics:      metrics,
		pollInterval: pollInterval,
		now:          time.Now,
	}
}

// WithClock replaces the time source used to stamp job transitions.
func (w *Worker) WithClock(now func() time.Time) *Worker {
	w.now = now
	return w
}

// ProcessOne claims the oldest queued job and resolves it. An empty queue or a lost
// claim is a no-op. Once a job is claimed every failure is recorded on the job and
// reported through the result; only store errors before the claim are returned.
func (w *Worker) ProcessOne(ctx context.Context) (Result, error) {
	now := w.now()

	job, err := w.store.ClaimOldestQueued(ctx, now)
	switch {
	case errors.Is(err, repository.ErrNoQueuedJob):
		w.log.DebugContext(ctx, "No queued jobs.")
		return Result{Outcome: OutcomeNoOp}, nil
	case errors.Is(err, repository.ErrAlreadyClaimed):
		w.metrics.ClaimConflicts.Inc()
		return Result{Outcome: OutcomeNoOp, Skipped: err.Error()}, nil
	case err != nil:
		return Result{}, err
	}

	w.metrics.ActiveWorkers.Inc()
	defer w.metrics.ActiveWorkers.Dec()

	w.log.DebugContext(ctx, "Processing job", "job", job.ID, "attempt", job.Attempts)

	location, err := w.geocode(ctx, job.Address)
	if err != nil {
		return w.fail(ctx, job, err, now), nil
	}

	finalizeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	if err = w.store.CompleteJob(finalizeCtx, newCustomer(job, location), now); err != nil {
		w.log.ErrorContext(ctx, "Failed to store customer for job", "job", job.ID, "error", err)
		return w.fail(ctx, job, err, now), nil
	}

	w.metrics.JobsProcessed.WithLabelValues("success").Inc()
	w.log.DebugContext(ctx, "Job geocoded", "job", job.ID, "lat", location.Latitude, "lng", location.Longitude)

	return Result{Outcome: OutcomeSuccess, JobID: job.ID, Location: location}, nil
}

func (w *Worker) geocode(ctx context.Context, address string) (*models.Location, error) {
	location, err := w.provider.Geocode(ctx, address)
	if err != nil {
		if !errors.Is(err, geocoding.ErrNoResult) {
			w.metrics.APIErrors.Inc()
		}
		return nil, err
	}

	return location, nil
}

// fail records err on the job. A failure to do so is only logged: the job stays
// in processing and the caller still sees the geocoding failure.
func (w *Worker) fail(ctx context.Context, job *models.Job, cause error, now time.Time) Result {
	w.metrics.JobsProcessed.WithLabelValues("failure").Inc()
	w.log.WarnContext(ctx, "Job failed", "job", job.ID, "error", cause)

	finalizeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	if err := w.store.MarkFailed(finalizeCtx, job.ID, cause.Error(), now); err != nil {
		w.log.ErrorContext(ctx, "Could not mark job failed", "job", job.ID, "error", err)
	}

	return Result{Outcome: OutcomeFailure, JobID: job.ID, Error: cause.Error()}
}

// newCustomer builds the customer record of a resolved job. Sex defaults to male
// here and only here; the job itself keeps whatever was uploaded.
func newCustomer(job *models.Job, location *models.Location) models.Customer {
	sex := models.SexMale
	if job.Sex != nil {
		sex = *job.Sex
	}

	return models.Customer{
		JobID:   job.ID,
		UserID:  job.UserID,
		Address: location.DisplayName,
		Birth:   job.Birth,
		Sex:     sex,
		Lat:     location.Latitude,
		Lng:     location.Longitude,
	}
}

// Run polls the queue every pollInterval until ctx is cancelled. Each tick drains
// the queue: ProcessOne is called again for as long as it keeps claiming jobs.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.log.InfoContext(ctx, "Geocoding worker started...", "interval", w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			w.log.InfoContext(ctx, "Geocoding worker stopped.")
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain returns the number of jobs claimed before the queue ran dry,
// a store error occurred or ctx was cancelled.
func (w *Worker) drain(ctx context.Context) int {
	processed := 0
	for ctx.Err() == nil {
		result, err := w.ProcessOne(ctx)
		if err != nil {
			w.log.ErrorContext(ctx, "Failed to poll queue", "error", err)
			break
		}
		if result.Outcome == OutcomeNoOp {
			break
		}
		processed++
	}

	if processed > 0 {
		w.log.InfoContext(ctx, "Processing batch finished", "jobs", processed)
	}

	return processed
}
