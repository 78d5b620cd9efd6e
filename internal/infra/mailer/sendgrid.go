// Package mailer delivers newsletter messages through the SendGrid v3 Mail Send API.
package mailer

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
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"byte-highlight/internal/resilience/circuitbreaker"
	"byte-highlight/internal/usecase/newsletter"
)

// DefaultBaseURL is the public SendGrid API endpoint.
const DefaultBaseURL = "https://api.sendgrid.com"

const (
	sendPath          = "/v3/mail/send"
	defaultRetryAfter = 5 * time.Second
)

// Config contains the provider settings.
type Config struct {
	APIKey    string
	FromEmail string
	FromName  string
	// BaseURL overrides DefaultBaseURL, mainly for tests.
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond throttles outgoing calls; zero means 10 req/s.
	RequestsPerSecond float64
}

// SendGrid implements newsletter.Mailer.
type SendGrid struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *circuitbreaker.CircuitBreaker
}

// NewSendGrid creates a client. Individual sends for small lists run
// sequentially, so the limiter only matters under concurrent admin use.
func NewSendGrid(cfg Config) *SendGrid {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	return &SendGrid{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		breaker:    circuitbreaker.New(circuitbreaker.EmailAPIConfig()),
	}
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type personalization struct {
	To            []address         `json:"to"`
	Substitutions map[string]string `json:"substitutions,omitempty"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type toggle struct {
	Enable bool `json:"enable"`
}

type mailSettings struct {
	SandboxMode toggle `json:"sandbox_mode"`
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
	MailSettings     *mailSettings     `json:"mail_settings,omitempty"`
}

type errorResponse struct {
	Errors []struct {
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"errors"`
}

// buildRequest maps msg to the Mail Send payload. Every recipient gets its
// own personalization so addresses are never disclosed to each other.
func (s *SendGrid) buildRequest(msg newsletter.Message) sendRequest {
	req := sendRequest{
		From:    address{Email: s.config.FromEmail, Name: s.config.FromName},
		Subject: msg.Subject,
	}
	for _, r := range msg.Recipients {
		req.Personalizations = append(req.Personalizations, personalization{
			To:            []address{{Email: r.Email}},
			Substitutions: r.Substitutions,
		})
	}
	// text/plain は text/html より先に置く必要がある
	if msg.Text != "" {
		req.Content = append(req.Content, content{Type: "text/plain", Value: msg.Text})
	}
	req.Content = append(req.Content, content{Type: "text/html", Value: msg.HTML})
	if msg.Sandbox {
		req.MailSettings = &mailSettings{SandboxMode: toggle{Enable: true}}
	}
	return req
}

// Send delivers msg in a single attempt. Failures are classified into
// RateLimitError, ClientError and ServerError and returned to the dispatcher,
// which decides whether to skip or abort.
func (s *SendGrid) Send(ctx context.Context, msg newsletter.Message) error {
	if len(msg.Recipients) == 0 {
		return errors.New("send: no recipients")
	}
	payload, err := json.Marshal(s.buildRequest(msg))
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	requestID := uuid.New().String()
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	start := time.Now()
	if err := s.execute(ctx, payload); err != nil {
		attrs := []any{
			slog.String("request_id", requestID),
			slog.Int("recipients", len(msg.Recipients)),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		}
		if rl, ok := asRateLimit(err); ok {
			attrs = append(attrs, slog.Duration("retry_after", rl.RetryAfter))
		}
		slog.Error("mail send failed", attrs...)
		return err
	}

	slog.Info("mail send accepted",
		slog.String("request_id", requestID),
		slog.Int("recipients", len(msg.Recipients)),
		slog.Bool("sandbox", msg.Sandbox),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// execute performs one HTTP call through the circuit breaker. Client errors
// are reported to the caller without counting against the breaker.
func (s *SendGrid) execute(ctx context.Context, payload []byte) error {
	var sendErr error
	_, err := s.breaker.Execute(func() (interface{}, error) {
		sendErr = s.post(ctx, payload)
		var clientErr *ClientError
		if errors.As(sendErr, &clientErr) {
			return nil, nil
		}
		return nil, sendErr
	})
	if err != nil {
		return err
	}
	return sendErr
}

func (s *SendGrid) post(ctx context.Context, payload []byte) error {
	url := strings.TrimRight(s.config.BaseURL, "/") + sendPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			Message:    "mail provider rate limit exceeded",
			RetryAfter: extractRetryAfter(resp),
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("mail provider client error (%d): %s", resp.StatusCode, errorText(body)),
		}
	case resp.StatusCode >= 500:
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("mail provider server error (%d): %s", resp.StatusCode, errorText(body)),
		}
	}
	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// errorText joins the provider's error messages, falling back to the raw body.
func errorText(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && len(er.Errors) > 0 {
		msgs := make([]string, 0, len(er.Errors))
		for _, e := range er.Errors {
			msgs = append(msgs, e.Message)
		}
		return strings.Join(msgs, "; ")
	}
	return strings.TrimSpace(string(body))
}

// extractRetryAfter reads the Retry-After header in seconds (default 5s).
func extractRetryAfter(resp *http.Response) time.Duration {
	if h := resp.Header.Get("Retry-After"); h != "" {
		if seconds, err := strconv.Atoi(h); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultRetryAfter
}
