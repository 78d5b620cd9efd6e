package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"byte-highlight/internal/handler/http/requestid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* ───────── ロガー生成 ───────── */

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Options{Level: "info", Output: &buf})

	logger.Debug("hidden")
	logger.Info("subscriber created", slog.String("email", "a@example.com"))

	out := strings.TrimSpace(buf.String())
	assert.NotContains(t, out, "hidden")
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &entry))
	assert.Equal(t, "subscriber created", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "a@example.com", entry["email"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Options{Level: "debug", Format: "text", Output: &buf})

	logger.Debug("digest rendered", slog.Int("articles", 4))

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "articles=4")
	assert.Contains(t, out, "source=")
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "text")

	assert.Equal(t, Options{Level: "warn", Format: "text"}, OptionsFromEnv())
}

/* ───────── コンテキスト ───────── */

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(Options{Output: &buf})

	ctx := requestid.WithRequestID(context.Background(), "req-123")
	WithRequestID(ctx, base).Info("with id")
	WithRequestID(context.Background(), base).Info("without id")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"request_id":"req-123"`)
	assert.NotContains(t, lines[1], "request_id")
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))
	assert.Equal(t, slog.Default(), FromContext(context.WithValue(context.Background(), loggerContextKey, "not a logger")))

	var buf bytes.Buffer
	logger := NewLogger(Options{Output: &buf})
	FromContext(WithLogger(context.Background(), logger)).Info("stored")
	assert.Contains(t, buf.String(), "stored")
}
