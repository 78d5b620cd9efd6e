// Package retry re-runs transient failures with exponential backoff and jitter.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Config controls WithBackoff.
type Config struct {
	// MaxAttempts counts the first call. Values below 1 mean one call.
	MaxAttempts int

	InitialDelay time.Duration
	MaxDelay     time.Duration

	// Multiplier grows the delay after every failed attempt.
	Multiplier float64

	// JitterFraction adds up to this share of the delay at random (0-1).
	JitterFraction float64
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   time.Second,
		MaxDelay:       30 * time.Second,
		Multiplier:     2,
		JitterFraction: 0.1,
	}
}

// FeedFetchConfig retries feed downloads during an import.
func FeedFetchConfig() Config {
	c := DefaultConfig()
	c.MaxAttempts = 4
	c.MaxDelay = 20 * time.Second
	return c
}

// AIAPIConfig retries an intro writer once; the digest goes out without an
// intro if that also fails.
func AIAPIConfig() Config {
	c := DefaultConfig()
	c.MaxAttempts = 2
	c.InitialDelay = 2 * time.Second
	c.MaxDelay = 5 * time.Second
	return c
}

// DBStartupConfig waits for the database at boot.
func DBStartupConfig() Config {
	c := DefaultConfig()
	c.MaxAttempts = 10
	c.InitialDelay = 500 * time.Millisecond
	c.MaxDelay = 5 * time.Second
	return c
}

// WithBackoff calls fn until it succeeds, returns a non-retryable error, ctx
// is done or MaxAttempts is reached. Non-retryable errors are returned as is.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	attempts := max(cfg.MaxAttempts, 1)
	delay := cfg.InitialDelay

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			if attempt > 1 {
				slog.Info("operation succeeded after retry", slog.Int("attempt", attempt))
			}
			return nil
		}
		if !IsRetryable(err) {
			slog.Warn("non-retryable error, aborting",
				slog.Int("attempt", attempt),
				slog.Any("error", err))
			return err
		}
		if attempt >= attempts {
			break
		}

		wait := addJitter(delay, cfg.JitterFraction)
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.RetryAfter > wait {
			wait = httpErr.RetryAfter
		}
		slog.Warn("operation failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Duration("delay", wait),
			slog.Any("error", err))

		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		}

		delay = nextDelay(delay, cfg)
	}
	return fmt.Errorf("max retry attempts (%d) exceeded: %w", attempts, err)
}

func nextDelay(d time.Duration, cfg Config) time.Duration {
	mult := cfg.Multiplier
	if mult < 1 {
		mult = 1
	}
	next := time.Duration(float64(d) * mult)
	if cfg.MaxDelay > 0 && next > cfg.MaxDelay {
		next = cfg.MaxDelay
	}
	return next
}

// IsRetryable reports whether err is transient: network timeouts, refused or
// reset connections, and HTTP 408, 429 and 5xx. Context errors never are.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	for _, errno := range []syscall.Errno{syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ETIMEDOUT, syscall.ENETUNREACH} {
		if errors.Is(err, errno) {
			return true
		}
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch code := httpErr.StatusCode; {
		case code >= 500 && code < 600:
			return true
		case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout:
			return true
		}
	}
	return false
}

// HTTPError is an upstream HTTP failure. RetryAfter, when set, is the
// minimum wait before the next attempt.
type HTTPError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func addJitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return d
	}
	fraction = min(fraction, 1)
	// #nosec G404 -- jitter does not need crypto randomness
	return d + time.Duration(rand.Float64()*float64(d)*fraction)
}
