package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"byte-highlight/internal/usecase/importer"
	"byte-highlight/internal/usecase/newsletter"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var appEnvKeys = []string{
	"APP_ENV", "PUBLIC_BASE_URL", "API_ADDR", "ADMIN_USER", "ADMIN_USER_PASSWORD", "JWT_SECRET",
	"COOKIE_SECURE", "CRON_SECRET", "SENDGRID_API_KEY", "EMAIL_FROM", "EMAIL_FROM_NAME",
	"EMAIL_API_BASE_URL", "EMAIL_TIMEOUT", "EMAIL_RATE_LIMIT", "SANDBOX_PROVIDER_FLAG",
	"INTRO_PROVIDER", "ANTHROPIC_API_KEY", "OPENAI_API_KEY", "DISCORD_WEBHOOK_URL",
	"SLACK_WEBHOOK_URL", "ALERT_TIMEOUT", "LOGIN_RATE_LIMIT", "SUBSCRIBE_RATE_LIMIT",
	"TRUSTED_PROXIES", "OTEL_SAMPLE_RATIO", "FEEDS_FILE",
}

// clearEnv blanks every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range appEnvKeys {
		t.Setenv(k, "")
	}
}

/* ───────── 読み込み ───────── */

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.False(t, cfg.DevMode())
	assert.Equal(t, "http://localhost:8080", cfg.PublicBaseURL)
	assert.Equal(t, ":8080", cfg.APIAddr)
	assert.Equal(t, DefaultFromEmail, cfg.Email.FromEmail)
	assert.Equal(t, DefaultFromName, cfg.Email.FromName)
	assert.Equal(t, 30*time.Second, cfg.Email.Timeout)
	assert.Equal(t, 10.0, cfg.Email.RateLimit)
	assert.Equal(t, IntroNone, cfg.Intro.Provider)
	assert.Equal(t, 5, cfg.Limits.LoginPerMinute)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
	assert.Empty(t, cfg.Auth.CronSecret)

	assert.Equal(t, newsletter.DispatchConfig{}, cfg.DispatchConfig())
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("APP_ENV", "Development")
	t.Setenv("PUBLIC_BASE_URL", "https://bytehighlight.example/")
	t.Setenv("SENDGRID_API_KEY", "SG.key")
	t.Setenv("EMAIL_FROM", "editor@bytehighlight.example")
	t.Setenv("SANDBOX_PROVIDER_FLAG", "true")
	t.Setenv("INTRO_PROVIDER", "claude")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.DevMode())
	assert.Equal(t, "https://bytehighlight.example", cfg.PublicBaseURL)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.Equal(t, IntroClaude, cfg.Intro.Provider)
	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.0/12"}, cfg.Limits.TrustedProxies)

	assert.Equal(t, newsletter.DispatchConfig{Configured: true, DevMode: true, ProviderSandbox: true}, cfg.DispatchConfig())
	mc := cfg.MailerConfig()
	assert.Equal(t, "SG.key", mc.APIKey)
	assert.Equal(t, "editor@bytehighlight.example", mc.FromEmail)
}

func TestValidate(t *testing.T) {
	valid := func() *AppConfig {
		return &AppConfig{
			PublicBaseURL: "https://bytehighlight.example",
			Auth:          AuthConfig{JWTSecret: testSecret},
			Email:         EmailConfig{RateLimit: 1, Timeout: time.Second},
			Intro:         IntroConfig{Provider: IntroNone},
			Limits:        RateLimitConfig{LoginPerMinute: 5, SubscribePerMinute: 10},
			Tracing:       TracingConfig{SampleRatio: 0.5},
		}
	}
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", func(*AppConfig) {}, ""},
		{"短い JWT_SECRET", func(c *AppConfig) { c.Auth.JWTSecret = "short" }, "JWT_SECRET"},
		{"相対 URL", func(c *AppConfig) { c.PublicBaseURL = "/news" }, "PUBLIC_BASE_URL"},
		{"未知のプロバイダ", func(c *AppConfig) { c.Intro.Provider = "gemini" }, "INTRO_PROVIDER"},
		{"OpenAI キー未設定", func(c *AppConfig) { c.Intro.Provider = IntroOpenAI }, "OPENAI_API_KEY"},
		{"送信レート 0", func(c *AppConfig) { c.Email.RateLimit = 0 }, "EMAIL_RATE_LIMIT"},
		{"サンプル率超過", func(c *AppConfig) { c.Tracing.SampleRatio = 2 }, "OTEL_SAMPLE_RATIO"},
		{"ログイン制限 0", func(c *AppConfig) { c.Limits.LoginPerMinute = 0 }, "rate limits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

/* ───────── フィードファイル ───────── */

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFeeds(t *testing.T) {
	path := writeFile(t, `
defaults:
  newsletter: The Byte Highlight
  category: Technology
feeds:
  - url: https://example.com/rss
    channel: Example
    topic: AI
  - url: https://chips.example/atom.xml
    channel: Chips
    category: Hardware
    topic: Semiconductors
    author: Jane
`)

	feeds, err := LoadFeeds(path)
	require.NoError(t, err)

	want := []importer.FeedRequest{
		{FeedURL: "https://example.com/rss", Channel: "Example", Category: "Technology", Newsletter: "The Byte Highlight", Topic: "AI"},
		{FeedURL: "https://chips.example/atom.xml", Author: "Jane", Channel: "Chips", Category: "Hardware", Newsletter: "The Byte Highlight", Topic: "Semiconductors"},
	}
	if diff := cmp.Diff(want, feeds); diff != "" {
		t.Errorf("feeds mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFeeds_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"空", "feeds: []\n", "no feeds"},
		{"YAML 不正", "feeds: [\n", "parse feeds file"},
		{"必須項目なし", "feeds:\n  - url: https://example.com/rss\n", "feed 0"},
		{"URL 不正", "feeds:\n  - url: ftp://example.com\n    channel: a\n    category: b\n    newsletter: c\n    topic: d\n", "feed 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFeeds(writeFile(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := LoadFeeds(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
