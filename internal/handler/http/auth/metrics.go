package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Admin login attempts by channel and result",
		},
		[]string{"channel", "result"}, // channel: session | token
	)

	authDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auth_duration_seconds",
			Help:    "Credential check duration by channel",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
		[]string{"channel"},
	)

	gateRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_gate_rejections_total",
			Help: "Requests rejected by an auth gate",
		},
		[]string{"gate", "reason"},
	)
)

func recordLogin(channel, result string, seconds float64) {
	loginAttempts.WithLabelValues(channel, result).Inc()
	authDuration.WithLabelValues(channel).Observe(seconds)
}

func recordRejection(gate, reason string) {
	gateRejections.WithLabelValues(gate, reason).Inc()
}
