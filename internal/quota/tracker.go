// Package quota accounts for the number of jobs a user may create per calendar month.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UnknownOlympus/cartographer/internal/models"
)

// DefaultLimit is the monthly job ceiling per user.
const DefaultLimit = 200

// ErrQuotaExceeded is returned when a user has no remaining jobs this month.
var ErrQuotaExceeded = errors.New("monthly quota exceeded")

// Counter counts jobs a user created within [start, end).
type Counter interface {
	CountCreatedInWindow(ctx context.Context, userID string, start, end time.Time) (int, error)
}

// Tracker computes monthly usage against a fixed limit. It has no side effects;
// quota is consumed when jobs are created and is never refunded.
type Tracker struct {
	counter Counter
	limit   int
	loc     *time.Location
}

// NewTracker creates a Tracker. A nil location means UTC.
func NewTracker(counter Counter, limit int, loc *time.Location) *Tracker {
	if loc == nil {
		loc = time.UTC
	}

	return &Tracker{counter: counter, limit: limit, loc: loc}
}

// Limit returns the monthly ceiling.
func (t *Tracker) Limit() int {
	return t.limit
}

// Window returns the calendar month containing now as [start, next) in loc.
func Window(now time.Time, loc *time.Location) models.Period {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)

	return models.Period{Start: start, Next: start.AddDate(0, 1, 0)}
}

// Usage reports the limit, used and remaining counts of userID for the month containing now.
// Remaining is floored at zero.
func (t *Tracker) Usage(ctx context.Context, userID string, now time.Time) (models.Usage, error) {
	period := Window(now, t.loc)

	used, err := t.counter.CountCreatedInWindow(ctx, userID, period.Start, period.Next)
	if err != nil {
		return models.Usage{}, fmt.Errorf("failed to count monthly usage: %w", err)
	}

	return models.Usage{
		Limit:     t.limit,
		Used:      used,
		Remaining: max(0, t.limit-used),
		Period:    period,
	}, nil
}

// Remaining returns how many more jobs userID may create in the month containing now.
func (t *Tracker) Remaining(ctx context.Context, userID string, now time.Time) (int, error) {
	usage, err := t.Usage(ctx, userID, now)
	if err != nil {
		return 0, err
	}

	return usage.Remaining, nil
}
