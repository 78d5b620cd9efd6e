package worker

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records scheduled job executions, labelled by job name.
type Metrics struct {
	RunsTotal       *prometheus.CounterVec
	DurationSeconds *prometheus.HistogramVec
	ItemsTotal      *prometheus.CounterVec
	LastSuccess     *prometheus.GaugeVec
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the process-wide job metrics.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		defaultMetrics = NewMetrics(promauto.With(prometheus.DefaultRegisterer))
	})
	return defaultMetrics
}

// NewMetrics builds job metrics with the given factory.
func NewMetrics(f promauto.Factory) *Metrics {
	return &Metrics{
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Total number of scheduled job runs by job and status",
		}, []string{"job", "status"}),
		DurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of scheduled job runs in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}, []string{"job"}),
		ItemsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_items_total",
			Help: "Items handled by scheduled jobs (recipients or imported articles)",
		}, []string{"job"}),
		LastSuccess: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful run",
		}, []string{"job"}),
	}
}

func (m *Metrics) recordRun(job, status string) {
	m.RunsTotal.WithLabelValues(job, status).Inc()
}

func (m *Metrics) recordDuration(job string, seconds float64) {
	m.DurationSeconds.WithLabelValues(job).Observe(seconds)
}

func (m *Metrics) recordItems(job string, n int) {
	m.ItemsTotal.WithLabelValues(job).Add(float64(n))
}

func (m *Metrics) recordSuccess(job string) {
	m.LastSuccess.WithLabelValues(job).SetToCurrentTime()
}
