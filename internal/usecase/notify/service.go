package notify

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/resilience/circuitbreaker"
)

// DefaultMaxConcurrent is used when NewService gets a non-positive bound.
const DefaultMaxConcurrent = 4

const (
	workerPoolTimeout = 5 * time.Second
	alertTimeout      = 30 * time.Second
)

// ChannelHealthStatus reports one channel's state for health endpoints.
type ChannelHealthStatus struct {
	Name               string `json:"name"`
	Enabled            bool   `json:"enabled"`
	CircuitBreakerOpen bool   `json:"circuit_breaker_open"`
}

// Service dispatches alerts to every enabled channel in the background.
type Service struct {
	channels       []Channel
	breakers       map[string]*circuitbreaker.CircuitBreaker
	workerPool     chan struct{}
	wg             sync.WaitGroup
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// NewService creates a Service that runs at most maxConcurrent sends at once.
func NewService(channels []Channel, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		channels:       channels,
		breakers:       make(map[string]*circuitbreaker.CircuitBreaker, len(channels)),
		workerPool:     make(chan struct{}, maxConcurrent),
		shutdownCtx:    ctx,
		shutdownCancel: cancel,
	}
	enabled := 0
	for _, ch := range channels {
		s.breakers[ch.Name()] = circuitbreaker.New(circuitbreaker.WebhookConfig(ch.Name()))
		if ch.IsEnabled() {
			enabled++
		}
	}
	alertChannelsEnabled.Set(float64(enabled))
	return s
}

// Notify queues a for every enabled channel and returns immediately.
// Delivery failures are logged, never returned.
func (s *Service) Notify(_ context.Context, a Alert) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.OccurredAt.IsZero() {
		a.OccurredAt = time.Now()
	}
	if s.shutdownCtx.Err() != nil {
		for _, ch := range s.channels {
			recordDropped(ch.Name(), "shutdown")
		}
		return nil
	}

	for _, ch := range s.channels {
		if !ch.IsEnabled() {
			continue
		}
		s.wg.Add(1)
		go s.send(ch, a)
	}
	return nil
}

// DispatchRecorded forwards a newsletter dispatch record as an alert.
func (s *Service) DispatchRecorded(ctx context.Context, log *entity.SendLog) {
	if err := s.Notify(ctx, DispatchAlert(log)); err != nil {
		slog.Warn("failed to queue dispatch alert", slog.Any("error", err))
	}
}

func (s *Service) send(ch Channel, a Alert) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in alert channel",
				slog.String("channel", ch.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	select {
	case s.workerPool <- struct{}{}:
		defer func() { <-s.workerPool }()
	case <-time.After(workerPoolTimeout):
		slog.Warn("alert dropped: worker pool full", slog.String("channel", ch.Name()))
		recordDropped(ch.Name(), "pool_full")
		return
	}

	ctx, cancel := context.WithTimeout(s.shutdownCtx, alertTimeout)
	defer cancel()

	start := time.Now()
	_, err := s.breakers[ch.Name()].Execute(func() (interface{}, error) {
		return nil, ch.Send(ctx, a)
	})
	duration := time.Since(start)

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		slog.Warn("alert channel temporarily disabled", slog.String("channel", ch.Name()))
		recordDropped(ch.Name(), "circuit_open")
		return
	}

	recordResult(ch.Name(), err, duration)
	if err != nil {
		slog.Warn("alert delivery failed",
			slog.String("channel", ch.Name()),
			slog.String("title", a.Title),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return
	}
	slog.Info("alert delivered",
		slog.String("channel", ch.Name()),
		slog.String("title", a.Title),
		slog.Duration("duration", duration))
}

// ChannelHealth returns the state of every channel.
func (s *Service) ChannelHealth() []ChannelHealthStatus {
	out := make([]ChannelHealthStatus, 0, len(s.channels))
	for _, ch := range s.channels {
		out = append(out, ChannelHealthStatus{
			Name:               ch.Name(),
			Enabled:            ch.IsEnabled(),
			CircuitBreakerOpen: s.breakers[ch.Name()].IsOpen(),
		})
	}
	return out
}

// Shutdown stops accepting alerts and waits for in-flight sends.
func (s *Service) Shutdown(ctx context.Context) error {
	slog.Info("shutting down alert service")
	s.shutdownCancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		slog.Warn("alert service shutdown timeout")
		return ctx.Err()
	}
}
