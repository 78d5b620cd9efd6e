package worker

import (
	"fmt"
	"log/slog"
	"time"

	"byte-highlight/internal/pkg/config"
)

// Config controls the background worker that sends the weekly newsletter
// and imports articles from configured feeds.
type Config struct {
	// NewsletterSchedule is the cron expression for the weekly send.
	// Default: "0 9 * * 1" (Mondays 09:00).
	NewsletterSchedule string

	// ImportSchedule is the cron expression for the feed import.
	// Empty disables the import job.
	ImportSchedule string

	// Timezone is the IANA location both schedules are evaluated in.
	Timezone string

	// AlertMaxConcurrent bounds concurrent alert deliveries (1-50).
	AlertMaxConcurrent int

	// JobTimeout bounds a single job run (1m-4h).
	JobTimeout time.Duration

	// HealthPort serves /health, /health/ready, /health/jobs and /metrics.
	HealthPort int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		NewsletterSchedule: "0 9 * * 1",
		ImportSchedule:     "",
		Timezone:           "UTC",
		AlertMaxConcurrent: 10,
		JobTimeout:         30 * time.Minute,
		HealthPort:         9091,
	}
}

// Validate collects every invalid field into one error.
func (c *Config) Validate() error {
	var errs []error
	if err := config.ValidateCronSchedule(c.NewsletterSchedule); err != nil {
		errs = append(errs, fmt.Errorf("newsletter schedule: %w", err))
	}
	if c.ImportSchedule != "" {
		if err := config.ValidateCronSchedule(c.ImportSchedule); err != nil {
			errs = append(errs, fmt.Errorf("import schedule: %w", err))
		}
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateIntRange(c.AlertMaxConcurrent, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("alert max concurrent: %w", err))
	}
	if err := config.ValidateDuration(c.JobTimeout, time.Minute, 4*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("job timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv reads the worker settings. It never fails: every invalid
// value falls back to its default, is logged and is counted in metrics.
//
//   - NEWSLETTER_CRON      (default "0 9 * * 1")
//   - IMPORT_CRON          (default empty, import disabled)
//   - NEWSLETTER_TIMEZONE  (default "UTC")
//   - ALERT_MAX_CONCURRENT (default 10)
//   - WORKER_JOB_TIMEOUT   (default 30m)
//   - WORKER_HEALTH_PORT   (default 9091)
func LoadConfigFromEnv(logger *slog.Logger, metrics *config.ConfigMetrics) Config {
	cfg := DefaultConfig()
	tr := &config.Tracker{Logger: logger, Metrics: metrics}

	cfg.NewsletterSchedule = config.Apply(tr, "newsletter_cron",
		config.LoadEnvString("NEWSLETTER_CRON", cfg.NewsletterSchedule, config.ValidateCronSchedule))
	cfg.ImportSchedule = config.Apply(tr, "import_cron",
		config.LoadEnvString("IMPORT_CRON", cfg.ImportSchedule, config.ValidateCronSchedule))
	cfg.Timezone = config.Apply(tr, "timezone",
		config.LoadEnvString("NEWSLETTER_TIMEZONE", cfg.Timezone, config.ValidateTimezone))
	cfg.AlertMaxConcurrent = config.Apply(tr, "alert_max_concurrent",
		config.LoadEnvInt("ALERT_MAX_CONCURRENT", cfg.AlertMaxConcurrent, config.IntRange(1, 50)))
	cfg.JobTimeout = config.Apply(tr, "job_timeout",
		config.LoadEnvDuration("WORKER_JOB_TIMEOUT", cfg.JobTimeout, config.DurationRange(time.Minute, 4*time.Hour)))
	cfg.HealthPort = config.Apply(tr, "health_port",
		config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, config.IntRange(1024, 65535)))

	tr.Done()
	return cfg
}

// Location resolves Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
