package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"byte-highlight/internal/app"
	appconfig "byte-highlight/internal/config"
	workerPkg "byte-highlight/internal/infra/worker"
	"byte-highlight/internal/observability/logging"
	"byte-highlight/internal/observability/tracing"
	pkgconfig "byte-highlight/internal/pkg/config"
	authservice "byte-highlight/internal/service/auth"
	"byte-highlight/internal/usecase/importer"
	nlUC "byte-highlight/internal/usecase/newsletter"
	"byte-highlight/internal/usecase/notify"
	"byte-highlight/pkg/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Warn("failed to load .env", slog.Any("error", err))
	}
	logger := initLogger()

	cfg, err := appconfig.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	shutdownTracing := tracing.Init(cfg.Tracing.SampleRatio)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, repos := initDatabase(ctx, logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	// Load worker configuration (fail-open strategy)
	workerConfig := workerPkg.LoadConfigFromEnv(logger,
		pkgconfig.NewConfigMetrics("worker", prometheus.DefaultRegisterer))
	logger.Info("worker configuration loaded",
		slog.String("newsletter_schedule", workerConfig.NewsletterSchedule),
		slog.String("import_schedule", workerConfig.ImportSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("alert_max_concurrent", workerConfig.AlertMaxConcurrent),
		slog.Duration("job_timeout", workerConfig.JobTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	notifier := app.NewNotifier(cfg.Alerts, workerConfig.AlertMaxConcurrent)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := notifier.Shutdown(shutdownCtx); err != nil {
			logger.Warn("alert delivery did not drain", slog.Any("error", err))
		}
	}()

	jobs, err := setupJobs(logger, cfg, workerConfig, repos, notifier)
	if err != nil {
		logger.Error("failed to set up jobs", slog.Any("error", err))
		os.Exit(1)
	}

	runWorker(ctx, logger, workerConfig, jobs, notifier)
}

// initLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func initLogger() *slog.Logger {
	logger := logging.NewLogger(logging.OptionsFromEnv())
	slog.SetDefault(logger)
	return logger
}

// initDatabase waits for the database, applies migrations and builds the repositories.
func initDatabase(ctx context.Context, logger *slog.Logger) (*sql.DB, app.Repositories) {
	database, driver, err := app.OpenDatabase(ctx)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	repos, err := app.NewRepositories(driver, database)
	if err != nil {
		logger.Error("failed to build repositories", slog.Any("error", err))
		os.Exit(1)
	}
	return database, repos
}

// setupJobs builds the weekly newsletter job and, when IMPORT_CRON is set,
// the feed import job.
func setupJobs(logger *slog.Logger, cfg *appconfig.AppConfig, wc workerPkg.Config, repos app.Repositories, notifier *notify.Service) ([]*workerPkg.Job, error) {
	tokens, err := authservice.NewTokenIssuer(cfg.Auth.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}
	nlSvc, err := app.NewNewsletterService(app.NewsletterDeps{
		Config:     cfg,
		Repos:      repos,
		Tokens:     tokens,
		Notifier:   notifier,
		Registerer: prometheus.DefaultRegisterer,
	})
	if err != nil {
		return nil, err
	}

	metrics := workerPkg.NewMetrics(promauto.With(prometheus.DefaultRegisterer))
	jobs := []*workerPkg.Job{
		workerPkg.NewJob("weekly_newsletter", wc.NewsletterSchedule, wc.JobTimeout, metrics, weeklyNewsletterJob(nlSvc)),
	}

	if wc.ImportSchedule != "" {
		tracker := &pkgconfig.Tracker{
			Logger:  logger,
			Metrics: pkgconfig.NewConfigMetrics("importer", prometheus.DefaultRegisterer),
		}
		imp := app.NewImporter(repos, notifier, tracker)
		tracker.Done()
		jobs = append(jobs, workerPkg.NewJob("feed_import", wc.ImportSchedule, wc.JobTimeout, metrics, feedImportJob(imp, cfg.FeedFile)))
	}
	return jobs, nil
}

func weeklyNewsletterJob(svc *nlUC.Service) workerPkg.JobFunc {
	return func(ctx context.Context) (int, error) {
		out, err := svc.SendWeekly(ctx)
		if err != nil {
			return 0, err
		}
		return out.Recipients, nil
	}
}

// feedImportJob re-reads the feed file on every run so edits apply without a restart.
func feedImportJob(imp *importer.Service, path string) workerPkg.JobFunc {
	return func(ctx context.Context) (int, error) {
		feeds, err := appconfig.LoadFeeds(path)
		if err != nil {
			return 0, err
		}
		stats, err := imp.ImportAll(ctx, feeds)
		if stats == nil {
			return 0, err
		}
		return stats.Inserted, err
	}
}

// runWorker serves health endpoints and runs the cron until ctx is done.
func runWorker(ctx context.Context, logger *slog.Logger, wc workerPkg.Config, jobs []*workerPkg.Job, notifier *notify.Service) {
	healthAddr := fmt.Sprintf(":%d", wc.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, jobs, notifier)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	c, err := workerPkg.NewScheduler(ctx, &wc, jobs...)
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()
	healthServer.SetReady(true)
	logger.Info("worker started", slog.Int("jobs", len(jobs)))

	<-ctx.Done()
	logger.Info("shutting down worker...")
	healthServer.SetReady(false)

	// 実行中のジョブの完了を待つ
	<-c.Stop().Done()
	logger.Info("worker stopped")
}
