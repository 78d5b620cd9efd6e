// Package config holds small environment helpers shared by the binaries.
//
// Parse failures never abort startup: a warning is logged and the default is
// returned. Components that need validation and fallback metrics use
// internal/pkg/config instead.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvString returns the variable or def when unset or empty.
func GetEnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// GetEnvInt parses the variable as a base 10 integer.
func GetEnvInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		warnInvalid(key, raw, strconv.Itoa(def), err)
		return def
	}
	return v
}

// GetEnvFloat parses the variable as a float64.
func GetEnvFloat(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		warnInvalid(key, raw, strconv.FormatFloat(def, 'g', -1, 64), err)
		return def
	}
	return v
}

// GetEnvBool accepts the forms understood by strconv.ParseBool.
func GetEnvBool(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		warnInvalid(key, raw, strconv.FormatBool(def), err)
		return def
	}
	return v
}

// GetEnvDuration parses the variable with time.ParseDuration.
func GetEnvDuration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		warnInvalid(key, raw, def.String(), err)
		return def
	}
	return v
}

// GetEnvStringList splits a comma separated variable, dropping empty items.
func GetEnvStringList(key string, def []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func warnInvalid(key, value, def string, err error) {
	slog.Warn("invalid value for environment variable, using default",
		slog.String("key", key),
		slog.String("value", value),
		slog.String("default", def),
		slog.String("error", err.Error()))
}
