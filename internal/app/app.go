// Package app assembles the services shared by cmd/api and cmd/worker from an
// AppConfig and an open database.
package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"byte-highlight/internal/config"
	pgRepo "byte-highlight/internal/infra/adapter/persistence/postgres"
	sqliteRepo "byte-highlight/internal/infra/adapter/persistence/sqlite"
	"byte-highlight/internal/infra/db"
	"byte-highlight/internal/infra/fetcher"
	"byte-highlight/internal/infra/intro"
	"byte-highlight/internal/infra/mailer"
	"byte-highlight/internal/infra/notifier"
	"byte-highlight/internal/observability/slo"
	pkgconfig "byte-highlight/internal/pkg/config"
	"byte-highlight/internal/repository"
	authservice "byte-highlight/internal/service/auth"
	"byte-highlight/internal/usecase/importer"
	nlUC "byte-highlight/internal/usecase/newsletter"
	"byte-highlight/internal/usecase/notify"
)

// Repositories groups the store adapters of one driver.
type Repositories struct {
	Articles    repository.ArticleRepository
	Subscribers repository.SubscriberRepository
	SendLogs    repository.SendLogRepository
}

// NewRepositories picks the adapters matching driver.
func NewRepositories(driver db.Driver, conn *sql.DB) (Repositories, error) {
	switch driver {
	case db.DriverPostgres:
		return Repositories{
			Articles:    pgRepo.NewArticleRepo(conn),
			Subscribers: pgRepo.NewSubscriberRepo(conn),
			SendLogs:    pgRepo.NewSendLogRepo(conn),
		}, nil
	case db.DriverSQLite:
		return Repositories{
			Articles:    sqliteRepo.NewArticleRepo(conn),
			Subscribers: sqliteRepo.NewSubscriberRepo(conn),
			SendLogs:    sqliteRepo.NewSendLogRepo(conn),
		}, nil
	default:
		return Repositories{}, fmt.Errorf("unsupported database driver %q", string(driver))
	}
}

// NewNotifier builds the alert service with the configured webhook channels.
func NewNotifier(cfg config.AlertConfig, maxConcurrent int) *notify.Service {
	channels := []notify.Channel{
		notifier.NewDiscord(notifier.DiscordConfig{
			Enabled:    cfg.DiscordWebhookURL != "",
			WebhookURL: cfg.DiscordWebhookURL,
			Timeout:    cfg.Timeout,
		}),
		notifier.NewSlack(notifier.SlackConfig{
			Enabled:    cfg.SlackWebhookURL != "",
			WebhookURL: cfg.SlackWebhookURL,
			Timeout:    cfg.Timeout,
		}),
	}
	return notify.NewService(channels, maxConcurrent)
}

// NewIntroWriter returns the configured intro writer, or nil for "none".
func NewIntroWriter(cfg config.IntroConfig) (nlUC.IntroWriter, error) {
	switch cfg.Provider {
	case config.IntroClaude:
		ic, err := intro.LoadConfig(intro.DefaultClaudeModel)
		if err != nil {
			return nil, err
		}
		return intro.NewClaude(cfg.AnthropicAPIKey, ic), nil
	case config.IntroOpenAI:
		ic, err := intro.LoadConfig(intro.DefaultOpenAIModel)
		if err != nil {
			return nil, err
		}
		return intro.NewOpenAI(cfg.OpenAIAPIKey, ic), nil
	default:
		return nil, nil
	}
}

// NewsletterDeps are the collaborators of NewNewsletterService.
type NewsletterDeps struct {
	Config   *config.AppConfig
	Repos    Repositories
	Tokens   *authservice.TokenIssuer
	Notifier *notify.Service
	// Registerer receives the delivery SLO metrics.
	Registerer prometheus.Registerer
}

// NewNewsletterService wires the SendGrid client, dispatcher, digest builder,
// intro writer and dispatch observers.
func NewNewsletterService(d NewsletterDeps) (*nlUC.Service, error) {
	writer, err := NewIntroWriter(d.Config.Intro)
	if err != nil {
		return nil, fmt.Errorf("intro writer: %w", err)
	}

	dispatchCfg := d.Config.DispatchConfig()
	if !dispatchCfg.Configured {
		slog.Warn("SENDGRID_API_KEY not set: newsletter sends will fail, sandbox sends still work")
	}

	observers := nlUC.Observers{slo.NewDeliveryTracker(d.Registerer, slo.DefaultWindow)}
	if d.Notifier != nil {
		observers = append(observers, d.Notifier)
	}

	svc := &nlUC.Service{
		Subscribers: d.Repos.Subscribers,
		Articles:    d.Repos.Articles,
		SendLogs:    d.Repos.SendLogs,
		Dispatcher: &nlUC.Dispatcher{
			Mailer: mailer.NewSendGrid(d.Config.MailerConfig()),
			Config: dispatchCfg,
		},
		Digest:   nlUC.DigestBuilder{BaseURL: d.Config.PublicBaseURL},
		Intro:    writer,
		Observer: observers,
		Now:      time.Now,
	}
	// nil ポインタをインターフェースに入れない
	if d.Tokens != nil {
		svc.Tokens = d.Tokens
	}
	return svc, nil
}

// NewImporter wires the feed and page fetchers. Invalid IMPORT_* values fall
// back to their defaults and are reported through tracker.
func NewImporter(repos Repositories, n importer.Notifier, tracker *pkgconfig.Tracker) *importer.Service {
	fcfg := fetcher.LoadConfigFromEnv(tracker)
	svc := &importer.Service{
		Articles: repos.Articles,
		Feeds:    fetcher.NewFeedFetcher(fcfg),
		Notifier: n,
		Now:      time.Now,
	}
	if fcfg.FetchPages {
		svc.Pages = fetcher.NewReadabilityFetcher(fcfg)
	}
	return svc
}
