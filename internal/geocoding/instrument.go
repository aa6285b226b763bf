package geocoding

import (
	"context"
	"time"

	"github.com/UnknownOlympus/cartographer/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

type timedProvider struct {
	next     Provider
	observer prometheus.Observer
}

// Timed records the duration of every Geocode call of next in seconds.
// Wrap it inside RateLimited so the gate wait is not part of the sample.
func Timed(next Provider, observer prometheus.Observer) Provider {
	return &timedProvider{next: next, observer: observer}
}

func (tp *timedProvider) Geocode(ctx context.Context, address string) (*models.Location, error) {
	startTime := time.Now()
	location, err := tp.next.Geocode(ctx, address)
	tp.observer.Observe(time.Since(startTime).Seconds())

	return location, err
}
