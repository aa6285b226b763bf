package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	JobsEnqueued   prometheus.Counter
	JobsSkipped    prometheus.Counter
	JobsProcessed  *prometheus.CounterVec
	ClaimConflicts prometheus.Counter
	APIErrors      prometheus.Counter
	RequestSeconds *prometheus.HistogramVec
	ActiveWorkers  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		JobsEnqueued: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "geoqueue_jobs_enqueued_total",
			Help: "Total number of jobs queued from uploads.",
		}),
		JobsSkipped: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "geoqueue_jobs_skipped_total",
			Help: "Total number of uploaded rows skipped because the monthly quota was reached.",
		}),
		JobsProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geoqueue_jobs_processed_total",
			Help: "Total number of claimed jobs by final status.",
		}, []string{"status"}),
		ClaimConflicts: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "geoqueue_claim_conflicts_total",
			Help: "Total number of claims lost to another worker.",
		}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "geoqueue_provider_errors_total",
			Help: "Total number of errors received from the geocoding provider API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geoqueue_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "geoqueue_active_workers",
			Help: "Current number of jobs being processed.",
		}),
	}
}
