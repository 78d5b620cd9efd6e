// Package notifier delivers alerts to chat webhooks (Discord and Slack).
// Both notifiers implement notify.Channel.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// RateLimitError is returned for a 429 response.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError is returned for a 4xx response other than 429.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string { return e.Message }

// ServerError is returned for a 5xx response.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string { return e.Message }

// isRetryable reports whether err is worth another attempt.
// Client errors are final; rate limits are handled by the caller.
func isRetryable(err error) bool {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return true
	}
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return false
	}
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return false
	}
	return true
}

// webhook is the HTTP plumbing shared by the notifiers.
type webhook struct {
	service    string
	url        string
	httpClient *http.Client
	limiter    *RateLimiter
	baseDelay  time.Duration
	// retryAfter extracts the wait from a 429 body; nil means header only.
	retryAfter func(resp *http.Response, body []byte) time.Duration
}

const maxAttempts = 2

// post sends payload once and classifies the response.
func (w *webhook) post(ctx context.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 16<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		wait := headerRetryAfter(resp)
		if w.retryAfter != nil {
			wait = w.retryAfter(resp, body)
		}
		return &RateLimitError{Message: w.service + " rate limit exceeded", RetryAfter: wait}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s API client error: %s", w.service, string(body)),
		}
	case resp.StatusCode >= 500:
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s API server error: %s", w.service, string(body)),
		}
	}
	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// send applies the rate limiter and retries once on 429 or 5xx.
func (w *webhook) send(ctx context.Context, title string, payload any) error {
	if err := w.limiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = w.post(ctx, payload)
		if lastErr == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}

		var delay time.Duration
		var rl *RateLimitError
		switch {
		case errors.As(lastErr, &rl):
			delay = rl.RetryAfter
		case isRetryable(lastErr):
			delay = w.baseDelay * time.Duration(attempt)
		default:
			return lastErr
		}

		slog.Warn("webhook request failed, retrying",
			slog.String("service", w.service),
			slog.String("title", title),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.Any("error", lastErr))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
		}
	}
	return fmt.Errorf("%s notification failed after %d attempts: %w", w.service, maxAttempts, lastErr)
}

// headerRetryAfter reads Retry-After in seconds, defaulting to 5s.
func headerRetryAfter(resp *http.Response) time.Duration {
	if h := resp.Header.Get("Retry-After"); h != "" {
		if seconds, err := strconv.Atoi(h); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 5 * time.Second
}

// truncate cuts s to max bytes including suffix.
func truncate(s string, max int, suffix string) string {
	if len(s) <= max {
		return s
	}
	at := max - len(suffix)
	if at < 0 {
		at = 0
	}
	return s[:at] + suffix
}
