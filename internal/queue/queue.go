// Package queue validates uploaded rows and enqueues them as geocoding jobs
// within the user's remaining monthly quota.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/cartographer/internal/metrics"
	"github.com/UnknownOlympus/cartographer/internal/models"
	"github.com/UnknownOlympus/cartographer/internal/quota"
	"github.com/google/uuid"
)

var (
	// ErrRowsRequired is returned when the upload carries no rows at all.
	ErrRowsRequired = errors.New("rows is required")
	// ErrNoValidRows is returned when every row was dropped during normalization.
	ErrNoValidRows = errors.New("no valid rows (address is empty)")
)

// JobInserter stores normalized rows as queued jobs.
type JobInserter interface {
	InsertJobs(ctx context.Context, userID string, rows []models.Row, now time.Time) ([]uuid.UUID, error)
}

// QuotaChecker reports the remaining monthly quota of a user.
type QuotaChecker interface {
	Limit() int
	Remaining(ctx context.Context, userID string, now time.Time) (int, error)
}

// Result describes the outcome of an upload. Used + Remaining == Limit and
// Inserted + Skipped equals the number of normalized rows.
type Result struct {
	Inserted  int
	Skipped   int
	Limit     int
	Used      int
	Remaining int
}

// Queue enqueues uploads, truncating them to the remaining quota.
type Queue struct {
	jobs    JobInserter
	quota   QuotaChecker
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewQueue creates a Queue.
func NewQueue(jobs JobInserter, quota QuotaChecker, log *slog.Logger, metrics *metrics.Metrics) *Queue {
	return &Queue{jobs: jobs, quota: quota, log: log, metrics: metrics}
}

// Enqueue normalizes rows and inserts at most the remaining quota of them, in order,
// as queued jobs of userID. Rows beyond the quota are counted as skipped. It fails
// with ErrRowsRequired, ErrNoValidRows or quota.ErrQuotaExceeded without inserting anything.
// Concurrent uploads of one user read the same remaining count and may overshoot the limit together.
func (q *Queue) Enqueue(ctx context.Context, userID string, rows []InputRow, now time.Time) (*Result, error) {
	if len(rows) == 0 {
		return nil, ErrRowsRequired
	}

	normalized := Normalize(rows)
	if len(normalized) == 0 {
		return nil, ErrNoValidRows
	}

	limit := q.quota.Limit()
	remaining, err := q.quota.Remaining(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 {
		q.log.InfoContext(ctx, "Upload rejected, monthly quota exhausted", "user", userID, "limit", limit)
		return nil, fmt.Errorf("%w: limit %d reached", quota.ErrQuotaExceeded, limit)
	}

	toInsert := normalized[:min(remaining, len(normalized))]
	if _, err = q.jobs.InsertJobs(ctx, userID, toInsert, now); err != nil {
		return nil, err
	}

	inserted := len(toInsert)
	skipped := len(normalized) - inserted
	remainingAfter := remaining - inserted

	q.metrics.JobsEnqueued.Add(float64(inserted))
	q.metrics.JobsSkipped.Add(float64(skipped))
	q.log.InfoContext(ctx, "Upload queued", "user", userID, "inserted", inserted, "skipped", skipped)

	return &Result{
		Inserted:  inserted,
		Skipped:   skipped,
		Limit:     limit,
		Used:      limit - remainingAfter,
		Remaining: remainingAfter,
	}, nil
}
