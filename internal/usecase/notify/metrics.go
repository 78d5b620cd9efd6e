package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	alertSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_sent_total",
			Help: "Total number of alerts sent per channel",
		},
		[]string{"channel", "status"}, // status: success|failure
	)

	alertDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "alert_duration_seconds",
			Help:    "Alert send duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"channel"},
	)

	alertDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_dropped_total",
			Help: "Total number of dropped alerts",
		},
		[]string{"channel", "reason"}, // reason: pool_full|circuit_open|shutdown
	)

	alertChannelsEnabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alert_channels_enabled",
			Help: "Number of enabled alert channels",
		},
	)
)

func recordResult(channel string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	alertSentTotal.WithLabelValues(channel, status).Inc()
	alertDuration.WithLabelValues(channel).Observe(d.Seconds())
}

func recordDropped(channel, reason string) {
	alertDroppedTotal.WithLabelValues(channel, reason).Inc()
}
