// Package fetcher downloads feeds and article pages for the importer. Every
// request, including each redirect hop, is checked against SSRF rules.
package fetcher

import (
	"fmt"
	"time"

	"byte-highlight/internal/pkg/config"
)

// Config controls feed and page fetching.
type Config struct {
	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// MaxBodySize is enforced while reading, not from Content-Length.
	MaxBodySize int64

	// MaxRedirects is the number of redirects followed before giving up.
	MaxRedirects int

	// DenyPrivateIPs rejects hosts resolving to loopback, private or
	// link-local addresses. Keep true outside tests.
	DenyPrivateIPs bool

	// FetchPages enables the readability excerpt for items without a
	// description.
	FetchPages bool

	UserAgent string
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:        10 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		FetchPages:     false,
		UserAgent:      "ByteHighlightBot/1.0",
	}
}

// Validate rejects limits that would make fetching unsafe or useless.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	const minBody, maxBody = int64(1024), int64(100 * 1024 * 1024)
	if c.MaxBodySize < minBody || c.MaxBodySize > maxBody {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBody, maxBody, c.MaxBodySize)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	return nil
}

// LoadConfigFromEnv reads IMPORT_FETCH_CONTENT, IMPORT_TIMEOUT,
// IMPORT_MAX_BODY_SIZE and IMPORT_MAX_REDIRECTS. Invalid values fall back to
// defaults and are reported through t.
func LoadConfigFromEnv(t *config.Tracker) Config {
	def := DefaultConfig()
	cfg := def
	cfg.FetchPages = config.Apply(t, "import_fetch_content", config.LoadEnvBool("IMPORT_FETCH_CONTENT", def.FetchPages))
	cfg.Timeout = config.Apply(t, "import_timeout",
		config.LoadEnvDuration("IMPORT_TIMEOUT", def.Timeout, config.DurationRange(time.Second, 2*time.Minute)))
	cfg.MaxBodySize = int64(config.Apply(t, "import_max_body_size",
		config.LoadEnvInt("IMPORT_MAX_BODY_SIZE", int(def.MaxBodySize), config.IntRange(1024, 100*1024*1024))))
	cfg.MaxRedirects = config.Apply(t, "import_max_redirects",
		config.LoadEnvInt("IMPORT_MAX_REDIRECTS", def.MaxRedirects, config.IntRange(0, 10)))
	return cfg
}
