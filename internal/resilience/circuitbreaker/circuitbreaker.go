// Package circuitbreaker guards outbound calls (SendGrid, intro writers, feed
// fetches and alert webhooks) with github.com/sony/gobreaker.
package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

var stateGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "circuit_breaker_state",
	Help: "Circuit breaker state per circuit (0=closed, 1=half-open, 2=open)",
}, []string{"circuit"})

// Config tunes one breaker.
type Config struct {
	Name string

	// MaxRequests may pass while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts. Zero never clears them.
	Interval time.Duration

	// Timeout is how long the breaker stays open.
	Timeout time.Duration

	// FailureThreshold is the failure ratio that trips the breaker, 0.6 = 60%.
	FailureThreshold float64

	// MinRequests must be seen before the ratio is evaluated.
	MinRequests uint32
}

// DefaultConfig returns the settings the presets start from.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          time.Minute,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// EmailAPIConfig trips after fewer calls since one newsletter run makes few.
func EmailAPIConfig() Config {
	c := DefaultConfig("email-api")
	c.MaxRequests = 1
	c.Interval = time.Minute
	c.MinRequests = 3
	return c
}

func ClaudeAPIConfig() Config { return DefaultConfig("claude-api") }

func OpenAIAPIConfig() Config { return DefaultConfig("openai-api") }

// FeedFetchConfig is shared by every feed, so it tolerates more failures.
func FeedFetchConfig() Config {
	c := DefaultConfig("feed-fetch")
	c.MaxRequests = 5
	c.Interval = time.Minute
	c.Timeout = 2 * time.Minute
	c.FailureThreshold = 0.7
	c.MinRequests = 10
	return c
}

// WebhookConfig opens only when every recent alert to the channel failed.
func WebhookConfig(channel string) Config {
	c := DefaultConfig(channel + "-webhook")
	c.MaxRequests = 1
	c.Interval = 5 * time.Minute
	c.Timeout = 5 * time.Minute
	c.FailureThreshold = 1.0
	return c
}

// CircuitBreaker is a named gobreaker.CircuitBreaker that logs and exports
// its state transitions.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

func New(cfg Config) *CircuitBreaker {
	stateGauge.WithLabelValues(cfg.Name).Set(stateValue(gobreaker.StateClosed))
	return &CircuitBreaker{
		name: cfg.Name,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.Requests >= cfg.MinRequests &&
					float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				stateGauge.WithLabelValues(name).Set(stateValue(to))
				slog.Warn("circuit breaker state changed",
					slog.String("circuit", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			},
		}),
	}
}

// Execute runs fn unless the breaker is open, in which case it returns
// gobreaker.ErrOpenState without calling fn.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

func (cb *CircuitBreaker) State() gobreaker.State { return cb.breaker.State() }

func (cb *CircuitBreaker) Name() string { return cb.name }

func (cb *CircuitBreaker) IsOpen() bool { return cb.breaker.State() == gobreaker.StateOpen }

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
