package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"byte-highlight/internal/infra/db"
	"byte-highlight/internal/resilience/retry"
)

// OpenDatabase connects with DB_DRIVER/DATABASE_URL, waiting for the database
// to accept connections, and applies pending migrations.
func OpenDatabase(ctx context.Context) (*sql.DB, db.Driver, error) {
	cfg, err := db.LoadConfigFromEnv()
	if err != nil {
		return nil, "", err
	}

	var conn *sql.DB
	err = retry.WithBackoff(ctx, retry.DBStartupConfig(), func() error {
		var openErr error
		conn, openErr = db.Open(ctx, cfg)
		return openErr
	})
	if err != nil {
		return nil, "", fmt.Errorf("connect database: %w", err)
	}

	if err := db.MigrateUp(ctx, conn, cfg.Driver); err != nil {
		_ = conn.Close()
		return nil, "", fmt.Errorf("migrate database: %w", err)
	}
	slog.Info("database ready", slog.String("driver", string(cfg.Driver)))
	return conn, cfg.Driver, nil
}
