package intro

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"

	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/resilience/circuitbreaker"
	"byte-highlight/internal/resilience/retry"
)

// DefaultClaudeModel is used when INTRO_MODEL is unset.
var DefaultClaudeModel = string(anthropic.ModelClaudeSonnet4_5_20250929)

// Claude writes intros with Anthropic's Messages API.
type Claude struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config
	metrics        MetricsRecorder
}

// NewClaude creates a Claude intro writer.
func NewClaude(apiKey string, cfg Config) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// retry は resilience/retry 側で行う
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	slog.Info("initialized claude intro writer",
		slog.String("model", cfg.Model),
		slog.Int("word_limit", cfg.WordLimit))

	return &Claude{
		client:         anthropic.NewClient(opts...),
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		config:         cfg,
		metrics:        NewPrometheusMetrics(),
	}
}

// WriteIntro implements newsletter.IntroWriter.
func (c *Claude) WriteIntro(ctx context.Context, articles []*entity.Article) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var result string
	err := retry.WithBackoff(ctx, c.retryConfig, func() error {
		out, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doWrite(ctx, articles)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, request rejected",
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}
		result = out.(string)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("claude intro failed: %w", err)
	}
	return result, nil
}

func (c *Claude) doWrite(ctx context.Context, articles []*entity.Article) (string, error) {
	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(articles, c.config.WordLimit))),
		},
	})
	duration := time.Since(start)
	c.metrics.RecordDuration("claude", duration)

	if err != nil {
		slog.ErrorContext(ctx, "claude intro request failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &retry.HTTPError{StatusCode: apiErr.StatusCode, Message: err.Error()}
		}
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("claude api returned empty response")
	}
	block, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned unexpected response type")
	}

	slog.InfoContext(ctx, "claude intro generated", slog.Duration("duration", duration))
	return finish(block.Text, c.config.WordLimit, c.metrics)
}
