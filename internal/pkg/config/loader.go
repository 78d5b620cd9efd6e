// Package config provides fail-open environment loading for long-running
// components. An invalid value never aborts startup; the default is used, a
// warning is logged and the fallback is counted.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Result is the outcome of loading a single environment variable.
type Result[T any] struct {
	Value           T
	Warning         string
	FallbackApplied bool
}

// Load reads envKey, parses it and validates it. An unset or blank variable
// yields def without a warning.
func Load[T any](envKey string, def T, parse func(string) (T, error), validate func(T) error) Result[T] {
	raw := strings.TrimSpace(os.Getenv(envKey))
	if raw == "" {
		return Result[T]{Value: def}
	}

	v, err := parse(raw)
	if err == nil && validate != nil {
		err = validate(v)
	}
	if err != nil {
		return Result[T]{
			Value:           def,
			Warning:         fmt.Sprintf("invalid %s=%q: %v, falling back to default %v", envKey, raw, err, def),
			FallbackApplied: true,
		}
	}
	return Result[T]{Value: v}
}

func parseString(s string) (string, error) { return s, nil }

// LoadEnvString loads a string variable.
func LoadEnvString(envKey, def string, validate func(string) error) Result[string] {
	return Load(envKey, def, parseString, validate)
}

// LoadEnvInt loads a base-10 integer variable.
func LoadEnvInt(envKey string, def int, validate func(int) error) Result[int] {
	return Load(envKey, def, strconv.Atoi, validate)
}

// LoadEnvDuration loads a Go duration string such as "30m".
func LoadEnvDuration(envKey string, def time.Duration, validate func(time.Duration) error) Result[time.Duration] {
	return Load(envKey, def, time.ParseDuration, validate)
}

// LoadEnvBool loads a boolean accepted by strconv.ParseBool.
func LoadEnvBool(envKey string, def bool) Result[bool] {
	return Load(envKey, def, strconv.ParseBool, nil)
}

// Tracker records fallbacks of one component to its logger and metrics.
type Tracker struct {
	Logger  *slog.Logger
	Metrics *ConfigMetrics
	active  bool
}

// Apply returns r.Value and reports the fallback, if any, under field.
func Apply[T any](t *Tracker, field string, r Result[T]) T {
	if r.FallbackApplied {
		t.active = true
		if t.Metrics != nil {
			t.Metrics.RecordValidationError(field)
			t.Metrics.RecordFallback(field)
		}
		if t.Logger != nil {
			t.Logger.Warn("configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", r.Warning))
		}
	}
	return r.Value
}

// Done publishes the load timestamp and whether any fallback is in effect.
func (t *Tracker) Done() {
	if t.Metrics == nil {
		return
	}
	t.Metrics.SetFallbackActive(t.active)
	t.Metrics.RecordLoadTimestamp()
}

// FallbackActive reports whether any field fell back to its default.
func (t *Tracker) FallbackActive() bool { return t.active }
