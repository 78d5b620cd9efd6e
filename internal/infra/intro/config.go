// Package intro writes the short editorial paragraph that opens the weekly
// digest, using either Anthropic Claude or OpenAI chat models.
package intro

import (
	"fmt"
	"time"

	pkgconfig "byte-highlight/pkg/config"
)

const (
	defaultWordLimit = 80
	minWordLimit     = 20
	maxWordLimit     = 200
)

// Config holds the settings shared by both writers.
type Config struct {
	// WordLimit caps the intro length. Loaded from INTRO_WORD_LIMIT.
	WordLimit int
	// Model overrides the provider default. Loaded from INTRO_MODEL.
	Model     string
	MaxTokens int
	Timeout   time.Duration
	// BaseURL overrides the provider endpoint, mainly for tests.
	BaseURL string
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.WordLimit < minWordLimit || c.WordLimit > maxWordLimit {
		return fmt.Errorf("word limit %d outside %d-%d", c.WordLimit, minWordLimit, maxWordLimit)
	}
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// LoadConfig reads the intro settings from the environment. defaultModel is
// used when INTRO_MODEL is unset.
func LoadConfig(defaultModel string) (Config, error) {
	cfg := Config{
		WordLimit: pkgconfig.GetEnvInt("INTRO_WORD_LIMIT", defaultWordLimit),
		Model:     pkgconfig.GetEnvString("INTRO_MODEL", defaultModel),
		MaxTokens: 300,
		Timeout:   pkgconfig.GetEnvDuration("INTRO_TIMEOUT", 20*time.Second),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid intro configuration: %w", err)
	}
	return cfg, nil
}
