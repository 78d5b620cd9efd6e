package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"byte-highlight/internal/app"
	"byte-highlight/internal/common/pagination"
	appconfig "byte-highlight/internal/config"
	"byte-highlight/internal/observability/logging"
	"byte-highlight/internal/observability/tracing"
	pkgconfig "byte-highlight/internal/pkg/config"
	"byte-highlight/pkg/config"

	artUC "byte-highlight/internal/usecase/article"
	nlUC "byte-highlight/internal/usecase/newsletter"
	"byte-highlight/internal/usecase/notify"
	subUC "byte-highlight/internal/usecase/subscriber"

	hhttp "byte-highlight/internal/handler/http"
	hadmin "byte-highlight/internal/handler/http/admin"
	harticle "byte-highlight/internal/handler/http/article"
	hauth "byte-highlight/internal/handler/http/auth"
	"byte-highlight/internal/handler/http/middleware"
	hnewsletter "byte-highlight/internal/handler/http/newsletter"
	"byte-highlight/internal/handler/http/requestid"
	hsub "byte-highlight/internal/handler/http/subscriber"
	authservice "byte-highlight/internal/service/auth"

	_ "byte-highlight/docs" // swagger docs
)

// @title           The Byte Highlight API
// @version         1.0
// @description     テックニュースレター The Byte Highlight の REST API
// @description     記事・購読者の管理、ニュースレターの配信と週刊ダイジェストの送信を提供します。

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT トークンによる認証。ヘッダーに "Bearer {token}" 形式で指定してください。

const maxRequestBody = 1 << 20

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
	validateAdminCredentials(logger, cfg)

	shutdownTracing := tracing.Init(cfg.Tracing.SampleRatio)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("failed to stop tracer provider", slog.Any("error", err))
		}
	}()

	database, repos := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	components := setupServer(logger, cfg, database, repos, version)

	runServer(logger, cfg, components, version)
}

// initLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func initLogger() *slog.Logger {
	logger := logging.NewLogger(logging.OptionsFromEnv())
	slog.SetDefault(logger)
	return logger
}

// validateAdminCredentials refuses to start with empty or weak admin credentials.
func validateAdminCredentials(logger *slog.Logger, cfg *appconfig.AppConfig) {
	if err := hauth.ValidateAdminCredentials(cfg.Auth.AdminUser, cfg.Auth.AdminPassword); err != nil {
		logger.Error("admin credentials validation failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// initDatabase opens the database, runs migrations and builds the repositories.
func initDatabase(logger *slog.Logger) (*sql.DB, app.Repositories) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

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

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// ServerComponents holds components needed for server operation and cleanup.
type ServerComponents struct {
	Handler  http.Handler
	Notifier *notify.Service
}

// setupServer builds the services and returns the fully wrapped handler.
func setupServer(logger *slog.Logger, cfg *appconfig.AppConfig, database *sql.DB, repos app.Repositories, version string) *ServerComponents {
	tokens, err := authservice.NewTokenIssuer(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Error("failed to create token issuer", slog.Any("error", err))
		os.Exit(1)
	}

	notifier := app.NewNotifier(cfg.Alerts, notify.DefaultMaxConcurrent)
	nlSvc, err := app.NewNewsletterService(app.NewsletterDeps{
		Config:     cfg,
		Repos:      repos,
		Tokens:     tokens,
		Notifier:   notifier,
		Registerer: prometheus.DefaultRegisterer,
	})
	if err != nil {
		logger.Error("failed to create newsletter service", slog.Any("error", err))
		os.Exit(1)
	}

	tracker := &pkgconfig.Tracker{
		Logger:  logger,
		Metrics: pkgconfig.NewConfigMetrics("api", prometheus.DefaultRegisterer),
	}
	imp := app.NewImporter(repos, notifier, tracker)
	tracker.Done()

	proxies, err := middleware.ParseTrustedProxies(strings.Join(cfg.Limits.TrustedProxies, ","))
	if err != nil {
		logger.Error("failed to parse TRUSTED_PROXIES", slog.Any("error", err))
		os.Exit(1)
	}
	ipExtractor := middleware.NewIPExtractor(proxies)
	if len(proxies) > 0 {
		logger.Info("rate limiting: trusted proxy mode enabled", slog.Int("trusted_proxies_count", len(proxies)))
	} else {
		logger.Info("rate limiting: using RemoteAddr (proxy headers ignored)")
	}

	sessions := &hauth.Sessions{Tokens: tokens, Secure: cfg.Auth.CookieSecure}
	authSvc := authservice.NewAuthService(hauth.NewAdminProvider(cfg.Auth.AdminUser, cfg.Auth.AdminPassword), tokens)

	mux := setupRoutes(routeDeps{
		logger:   logger,
		cfg:      cfg,
		database: database,
		version:  version,
		repos:    repos,
		tokens:   tokens,
		sessions: sessions,
		authSvc:  authSvc,
		nlSvc:    nlSvc,
		importer: imp,
		notifier: notifier,
	})

	// レート制限: ログイン系は1分間に LOGIN_RATE_LIMIT リクエストまで
	loginLimiter := middleware.NewRateLimiter("login", cfg.Limits.LoginPerMinute, time.Minute, ipExtractor)
	// レート制限: 購読登録・解除は1分間に SUBSCRIBE_RATE_LIMIT リクエストまで
	subscribeLimiter := middleware.NewRateLimiter("subscribe", cfg.Limits.SubscribePerMinute, time.Minute, ipExtractor)

	handler := hhttp.Chain(mux,
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		hhttp.LimitRequest(maxRequestBody),
		middleware.SecurityHeaders,
		hhttp.MetricsMiddleware,
		loginLimiter.ForPaths(hauth.LoginPath, "/auth/token"),
		subscribeLimiter.ForPaths("/api/subscribe", "/api/unsubscribe"),
		sessions.AdminGate,
	)

	logger.Info("server configured",
		slog.String("env", cfg.Env),
		slog.Bool("email_configured", cfg.Email.SendGridAPIKey != ""),
		slog.String("intro_provider", string(cfg.Intro.Provider)),
		slog.Int("login_rate_limit", cfg.Limits.LoginPerMinute),
		slog.Int("subscribe_rate_limit", cfg.Limits.SubscribePerMinute))

	return &ServerComponents{Handler: handler, Notifier: notifier}
}

type routeDeps struct {
	logger   *slog.Logger
	cfg      *appconfig.AppConfig
	database *sql.DB
	version  string
	repos    app.Repositories
	tokens   *authservice.TokenIssuer
	sessions *hauth.Sessions
	authSvc  *authservice.AuthService
	nlSvc    *nlUC.Service
	importer harticle.FeedImporter
	notifier *notify.Service
}

// setupRoutes registers all HTTP routes (public and protected).
func setupRoutes(d routeDeps) *http.ServeMux {
	mux := http.NewServeMux()

	// ヘルスチェックエンドポイント（認証不要）
	mux.Handle("GET /health", &hhttp.HealthHandler{
		DB:              d.database,
		Version:         d.version,
		EmailConfigured: d.cfg.Email.SendGridAPIKey != "",
		Channels:        d.notifier,
	})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: d.database})
	mux.Handle("GET /live", hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	// Swagger UI（認証不要）
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	mux.Handle("POST /auth/token", hauth.TokenHandler(d.authSvc))

	requireAdmin := d.sessions.RequireAdmin

	artSvc := &artUC.Service{Repo: d.repos.Articles}
	harticle.Register(mux, artSvc, d.importer, pagination.DefaultConfig(), requireAdmin, d.logger)

	subSvc := &subUC.Service{Repo: d.repos.Subscribers, Tokens: d.tokens}
	(&hsub.Handler{Svc: subSvc}).Register(mux, requireAdmin)

	(&hnewsletter.Handler{Svc: d.nlSvc}).Register(mux, requireAdmin, hauth.CronAuth(d.cfg.Auth.CronSecret))

	pages := &hadmin.Pages{
		Subscribers: subSvc,
		Sends:       d.nlSvc,
		Session: &hauth.SessionHandler{
			Auth:        d.authSvc,
			Sessions:    d.sessions,
			RenderLogin: hadmin.RenderLogin,
		},
	}
	pages.Register(mux)

	return mux
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, cfg *appconfig.AppConfig, components *ServerComponents, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.APIAddr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.APIAddr),
			slog.String("version", version),
			slog.String("public_base_url", cfg.PublicBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	// 送信中のアラートを待つ
	if err := components.Notifier.Shutdown(shutdownCtx); err != nil {
		logger.Warn("alert delivery did not drain", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
