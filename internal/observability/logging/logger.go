// Package logging builds the process-wide slog logger and carries request
// scoped loggers through context.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"byte-highlight/internal/handler/http/requestid"
)

// Options selects the log output. Zero values give JSON at info level on stdout.
type Options struct {
	// Level is one of debug, info, warn, error.
	Level string
	// Format is json or text.
	Format string
	Output io.Writer
}

// OptionsFromEnv reads LOG_LEVEL and LOG_FORMAT.
func OptionsFromEnv() Options {
	return Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	}
}

// ParseLevel maps a level name to slog. Unknown names fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured logger from opts.
func NewLogger(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	level := ParseLevel(opts.Level)
	hopts := &slog.HandlerOptions{
		Level: level,
		// debug 時のみ呼び出し元を出力
		AddSource: level <= slog.LevelDebug,
	}

	var h slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		h = slog.NewTextHandler(out, hopts)
	} else {
		h = slog.NewJSONHandler(out, hopts)
	}
	return slog.New(h)
}

// WithRequestID returns logger annotated with the request ID in ctx, if any.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With(slog.String("request_id", reqID))
}

// FromContext retrieves the logger stored by WithLogger, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

type contextKey string

const loggerContextKey contextKey = "logger"
