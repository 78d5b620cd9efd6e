// Package slo tracks the newsletter delivery objective.
package slo

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"byte-highlight/internal/domain/entity"
)

const (
	// DeliverySuccessSLO is the target share of recipients that must be
	// accepted by the provider across the tracked window.
	DeliverySuccessSLO = 0.99

	// DefaultWindow is the number of recent real dispatches considered.
	DefaultWindow = 20
)

type sample struct {
	sent, failed int
}

// DeliveryTracker implements newsletter.DispatchObserver and exports the
// delivery success ratio over the last Window real dispatches. Test-mode and
// sandbox dispatches are ignored.
type DeliveryTracker struct {
	mu       sync.Mutex
	window   []sample
	size     int
	breach   bool
	ratio    prometheus.Gauge
	last     prometheus.Gauge
	breaches prometheus.Counter
}

// NewDeliveryTracker registers the SLO gauges with reg.
func NewDeliveryTracker(reg prometheus.Registerer, window int) *DeliveryTracker {
	if window <= 0 {
		window = DefaultWindow
	}
	f := promauto.With(reg)
	t := &DeliveryTracker{
		size: window,
		ratio: f.NewGauge(prometheus.GaugeOpts{
			Name: "slo_delivery_success_ratio",
			Help: "Share of recipients accepted by the e-mail provider over recent dispatches, target: 0.99",
		}),
		last: f.NewGauge(prometheus.GaugeOpts{
			Name: "slo_last_dispatch_timestamp_seconds",
			Help: "Unix time of the most recent real newsletter dispatch",
		}),
		breaches: f.NewCounter(prometheus.CounterOpts{
			Name: "slo_delivery_breaches_total",
			Help: "Number of times the delivery success ratio fell below target",
		}),
	}
	t.ratio.Set(1)
	return t
}

// DispatchRecorded folds a dispatch into the window.
func (t *DeliveryTracker) DispatchRecorded(_ context.Context, log *entity.SendLog) {
	if log == nil || log.TestMode || log.Mode == entity.DispatchModeSandbox {
		return
	}
	if log.Sent+log.Failed == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.window = append(t.window, sample{sent: log.Sent, failed: log.Failed})
	if len(t.window) > t.size {
		t.window = t.window[len(t.window)-t.size:]
	}

	ratio := t.ratioLocked()
	t.ratio.Set(ratio)
	at := log.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	t.last.Set(float64(at.Unix()))

	// 目標割れへの遷移時のみカウント
	below := ratio < DeliverySuccessSLO
	if below && !t.breach {
		t.breaches.Inc()
	}
	t.breach = below
}

// SuccessRatio returns the current ratio; 1 when nothing was sent yet.
func (t *DeliveryTracker) SuccessRatio() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ratioLocked()
}

// Meeting reports whether the objective currently holds.
func (t *DeliveryTracker) Meeting() bool {
	return t.SuccessRatio() >= DeliverySuccessSLO
}

func (t *DeliveryTracker) ratioLocked() float64 {
	var sent, total int
	for _, s := range t.window {
		sent += s.sent
		total += s.sent + s.failed
	}
	if total == 0 {
		return 1
	}
	return float64(sent) / float64(total)
}
