package intro

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRecorder records intro generation metrics.
type MetricsRecorder interface {
	RecordWords(n int)
	RecordTruncated()
	RecordDuration(provider string, d time.Duration)
}

type prometheusMetrics struct {
	words     prometheus.Histogram
	truncated prometheus.Counter
	duration  *prometheus.HistogramVec
}

var (
	metricsInstance *prometheusMetrics
	metricsOnce     sync.Once
)

// registerOrExisting returns the already registered collector when c is a duplicate.
func registerOrExisting[T prometheus.Collector](c T) T {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

// NewPrometheusMetrics returns the process-wide recorder.
func NewPrometheusMetrics() MetricsRecorder {
	metricsOnce.Do(func() {
		metricsInstance = &prometheusMetrics{
			words: registerOrExisting(prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "newsletter_intro_words",
				Help:    "Length of generated digest intros in words",
				Buckets: []float64{10, 20, 40, 60, 80, 100, 150},
			})),
			truncated: registerOrExisting(prometheus.NewCounter(prometheus.CounterOpts{
				Name: "newsletter_intro_truncated_total",
				Help: "Intros cut down to the configured word limit",
			})),
			duration: registerOrExisting(prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "newsletter_intro_duration_seconds",
				Help:    "Time taken to generate a digest intro",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
			}, []string{"provider"})),
		}
	})
	return metricsInstance
}

func (p *prometheusMetrics) RecordWords(n int) { p.words.Observe(float64(n)) }

func (p *prometheusMetrics) RecordTruncated() { p.truncated.Inc() }

func (p *prometheusMetrics) RecordDuration(provider string, d time.Duration) {
	p.duration.WithLabelValues(provider).Observe(d.Seconds())
}
