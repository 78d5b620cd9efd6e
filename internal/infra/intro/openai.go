package intro

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/resilience/circuitbreaker"
	"byte-highlight/internal/resilience/retry"
)

// DefaultOpenAIModel is used when INTRO_MODEL is unset.
const DefaultOpenAIModel = openai.GPT4oMini

// OpenAI writes intros with the Chat Completions API.
type OpenAI struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config
	metrics        MetricsRecorder
}

// NewOpenAI creates an OpenAI intro writer.
func NewOpenAI(apiKey string, cfg Config) *OpenAI {
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	slog.Info("initialized openai intro writer",
		slog.String("model", cfg.Model),
		slog.Int("word_limit", cfg.WordLimit))

	return &OpenAI{
		client:         openai.NewClientWithConfig(clientCfg),
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		config:         cfg,
		metrics:        NewPrometheusMetrics(),
	}
}

// WriteIntro implements newsletter.IntroWriter.
func (o *OpenAI) WriteIntro(ctx context.Context, articles []*entity.Article) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	var result string
	err := retry.WithBackoff(ctx, o.retryConfig, func() error {
		out, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doWrite(ctx, articles)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai api circuit breaker open, request rejected",
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}
		result = out.(string)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("openai intro failed: %w", err)
	}
	return result, nil
}

func (o *OpenAI) doWrite(ctx context.Context, articles []*entity.Article) (string, error) {
	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.config.Model,
		MaxTokens: o.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(articles, o.config.WordLimit)},
		},
	})
	duration := time.Since(start)
	o.metrics.RecordDuration("openai", duration)

	if err != nil {
		slog.ErrorContext(ctx, "openai intro request failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &retry.HTTPError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		return "", fmt.Errorf("openai api error: %w", err)
	}

	// 空レスポンスでのインデックスアクセスを防ぐ
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai api returned empty response")
	}

	slog.InfoContext(ctx, "openai intro generated", slog.Duration("duration", duration))
	return finish(resp.Choices[0].Message.Content, o.config.WordLimit, o.metrics)
}
