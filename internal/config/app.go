// Package config loads the application settings shared by cmd/api and cmd/worker.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"byte-highlight/internal/infra/mailer"
	"byte-highlight/internal/usecase/newsletter"
	pkgconfig "byte-highlight/pkg/config"
)

const (
	// DefaultFromEmail is used when EMAIL_FROM is unset.
	DefaultFromEmail = "newsletter@thebytehighlight.com"
	DefaultFromName  = "The Byte Highlight"

	minJWTSecretLength = 32
)

// IntroProvider selects the weekly intro writer.
type IntroProvider string

const (
	IntroNone   IntroProvider = "none"
	IntroClaude IntroProvider = "claude"
	IntroOpenAI IntroProvider = "openai"
)

// AppConfig is the environment driven configuration of both binaries.
type AppConfig struct {
	// Env is APP_ENV. "development" limits newsletter recipients.
	Env           string
	PublicBaseURL string
	APIAddr       string

	Auth     AuthConfig
	Email    EmailConfig
	Intro    IntroConfig
	Alerts   AlertConfig
	Limits   RateLimitConfig
	Tracing  TracingConfig
	FeedFile string
}

type AuthConfig struct {
	AdminUser     string
	AdminPassword string
	JWTSecret     string
	CookieSecure  bool
	// CronSecret guards /api/cron/*. Empty rejects every cron call.
	CronSecret string
}

type EmailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	BaseURL        string
	Timeout        time.Duration
	// RateLimit is provider requests per second.
	RateLimit float64
	// ProviderSandbox forwards test-mode sends to the provider sandbox instead
	// of short-circuiting locally.
	ProviderSandbox bool
}

type IntroConfig struct {
	Provider        IntroProvider
	AnthropicAPIKey string
	OpenAIAPIKey    string
}

type AlertConfig struct {
	DiscordWebhookURL string
	SlackWebhookURL   string
	Timeout           time.Duration
}

type RateLimitConfig struct {
	// LoginPerMinute bounds login and token attempts per client IP.
	LoginPerMinute int
	// SubscribePerMinute bounds subscribe and unsubscribe calls per client IP.
	SubscribePerMinute int
	TrustedProxies     []string
}

type TracingConfig struct {
	SampleRatio float64
}

// Load reads AppConfig from the environment and validates it.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Env:           strings.ToLower(pkgconfig.GetEnvString("APP_ENV", "production")),
		PublicBaseURL: strings.TrimRight(pkgconfig.GetEnvString("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		APIAddr:       pkgconfig.GetEnvString("API_ADDR", ":8080"),
		Auth: AuthConfig{
			AdminUser:     pkgconfig.GetEnvString("ADMIN_USER", ""),
			AdminPassword: pkgconfig.GetEnvString("ADMIN_USER_PASSWORD", ""),
			JWTSecret:     pkgconfig.GetEnvString("JWT_SECRET", ""),
			CookieSecure:  pkgconfig.GetEnvBool("COOKIE_SECURE", false),
			CronSecret:    pkgconfig.GetEnvString("CRON_SECRET", ""),
		},
		Email: EmailConfig{
			SendGridAPIKey:  pkgconfig.GetEnvString("SENDGRID_API_KEY", ""),
			FromEmail:       pkgconfig.GetEnvString("EMAIL_FROM", DefaultFromEmail),
			FromName:        pkgconfig.GetEnvString("EMAIL_FROM_NAME", DefaultFromName),
			BaseURL:         pkgconfig.GetEnvString("EMAIL_API_BASE_URL", ""),
			Timeout:         pkgconfig.GetEnvDuration("EMAIL_TIMEOUT", 30*time.Second),
			RateLimit:       pkgconfig.GetEnvFloat("EMAIL_RATE_LIMIT", 10),
			ProviderSandbox: pkgconfig.GetEnvBool("SANDBOX_PROVIDER_FLAG", false),
		},
		Intro: IntroConfig{
			Provider:        IntroProvider(strings.ToLower(pkgconfig.GetEnvString("INTRO_PROVIDER", string(IntroNone)))),
			AnthropicAPIKey: pkgconfig.GetEnvString("ANTHROPIC_API_KEY", ""),
			OpenAIAPIKey:    pkgconfig.GetEnvString("OPENAI_API_KEY", ""),
		},
		Alerts: AlertConfig{
			DiscordWebhookURL: pkgconfig.GetEnvString("DISCORD_WEBHOOK_URL", ""),
			SlackWebhookURL:   pkgconfig.GetEnvString("SLACK_WEBHOOK_URL", ""),
			Timeout:           pkgconfig.GetEnvDuration("ALERT_TIMEOUT", 10*time.Second),
		},
		Limits: RateLimitConfig{
			LoginPerMinute:     pkgconfig.GetEnvInt("LOGIN_RATE_LIMIT", 5),
			SubscribePerMinute: pkgconfig.GetEnvInt("SUBSCRIBE_RATE_LIMIT", 10),
			TrustedProxies:     pkgconfig.GetEnvStringList("TRUSTED_PROXIES", nil),
		},
		Tracing: TracingConfig{
			SampleRatio: pkgconfig.GetEnvFloat("OTEL_SAMPLE_RATIO", 1),
		},
		FeedFile: pkgconfig.GetEnvString("FEEDS_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c *AppConfig) Validate() error {
	var errs []error
	if len(c.Auth.JWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength))
	}
	if u, err := url.Parse(c.PublicBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("PUBLIC_BASE_URL must be an absolute http(s) URL"))
	}
	switch c.Intro.Provider {
	case IntroNone:
	case IntroClaude:
		if c.Intro.AnthropicAPIKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required when INTRO_PROVIDER=claude"))
		}
	case IntroOpenAI:
		if c.Intro.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when INTRO_PROVIDER=openai"))
		}
	default:
		errs = append(errs, fmt.Errorf("INTRO_PROVIDER must be one of none, claude, openai, got %q", c.Intro.Provider))
	}
	if c.Email.RateLimit <= 0 {
		errs = append(errs, errors.New("EMAIL_RATE_LIMIT must be positive"))
	}
	if c.Email.Timeout <= 0 {
		errs = append(errs, errors.New("EMAIL_TIMEOUT must be positive"))
	}
	if c.Limits.LoginPerMinute < 1 || c.Limits.SubscribePerMinute < 1 {
		errs = append(errs, errors.New("rate limits must be at least 1 per minute"))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, errors.New("OTEL_SAMPLE_RATIO must be between 0 and 1"))
	}
	return errors.Join(errs...)
}

// DevMode reports whether APP_ENV is development.
func (c *AppConfig) DevMode() bool {
	return c.Env == "development"
}

// MailerConfig returns the SendGrid client settings.
func (c *AppConfig) MailerConfig() mailer.Config {
	return mailer.Config{
		APIKey:            c.Email.SendGridAPIKey,
		FromEmail:         c.Email.FromEmail,
		FromName:          c.Email.FromName,
		BaseURL:           c.Email.BaseURL,
		Timeout:           c.Email.Timeout,
		RequestsPerSecond: c.Email.RateLimit,
	}
}

// DispatchConfig returns the dispatcher settings.
func (c *AppConfig) DispatchConfig() newsletter.DispatchConfig {
	return newsletter.DispatchConfig{
		Configured:      c.Email.SendGridAPIKey != "",
		DevMode:         c.DevMode(),
		ProviderSandbox: c.Email.ProviderSandbox,
	}
}
