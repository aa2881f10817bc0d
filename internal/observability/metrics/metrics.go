package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's prometheus instruments.
type Metrics struct {
	SnapshotRuns  *prometheus.CounterVec
	AlertsEmitted *prometheus.CounterVec
	JobDuration   *prometheus.HistogramVec
}

// New registers the engine instruments on the default registerer.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the engine instruments on the given registerer.
// Tests pass a fresh registry to avoid duplicate registration.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SnapshotRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "platewise",
			Subsystem: "engine",
			Name:      "snapshot_runs_total",
			Help:      "Snapshot aggregation runs by outcome.",
		}, []string{"status"}),
		AlertsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "platewise",
			Subsystem: "engine",
			Name:      "alerts_emitted_total",
			Help:      "Alerts emitted by the reactor, by level.",
		}, []string{"level"}),
		JobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "platewise",
			Subsystem: "engine",
			Name:      "job_duration_seconds",
			Help:      "Duration of engine jobs.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
	}
}

// ObserveJob records a job duration.
func (m *Metrics) ObserveJob(job string, started time.Time) {
	if m == nil {
		return
	}
	m.JobDuration.WithLabelValues(job).Observe(time.Since(started).Seconds())
}
