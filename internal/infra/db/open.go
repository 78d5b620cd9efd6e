package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Driver selects the relational store backing the repositories.
type Driver string

const (
	// DriverPostgres is the production store (pgx stdlib driver).
	DriverPostgres Driver = "postgres"
	// DriverSQLite is a single-file store for local development.
	DriverSQLite Driver = "sqlite"
)

// sqlDriverName maps a Driver to the name registered with database/sql.
func (d Driver) sqlDriverName() (string, error) {
	switch d {
	case DriverPostgres:
		return "pgx", nil
	case DriverSQLite:
		return "sqlite", nil
	}
	return "", fmt.Errorf("unsupported database driver %q", string(d))
}

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns the default connection pool configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// Config describes how to reach the store.
type Config struct {
	Driver Driver
	// DSN is DATABASE_URL for postgres or a file path for sqlite.
	DSN  string
	Pool ConnectionConfig
}

// LoadConfigFromEnv reads DATABASE_DRIVER, DATABASE_URL / SQLITE_PATH and pool settings.
func LoadConfigFromEnv() (Config, error) {
	cfg := Config{
		Driver: Driver(os.Getenv("DATABASE_DRIVER")),
		Pool:   getConnectionConfigFromEnv(),
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverPostgres
	}

	switch cfg.Driver {
	case DriverPostgres:
		cfg.DSN = os.Getenv("DATABASE_URL")
		if cfg.DSN == "" {
			return Config{}, fmt.Errorf("DATABASE_URL not set")
		}
	case DriverSQLite:
		cfg.DSN = os.Getenv("SQLITE_PATH")
		if cfg.DSN == "" {
			cfg.DSN = "byte-highlight.db"
		}
		// SQLiteは単一ライターのため接続を1本に制限
		cfg.Pool.MaxOpenConns = 1
		cfg.Pool.MaxIdleConns = 1
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", string(cfg.Driver))
	}
	return cfg, nil
}

// Open creates and configures a new database connection pool and verifies it with a ping.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	driverName, err := cfg.Driver.sqlDriverName()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Pool.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Pool.ConnMaxIdleTime)

	slog.Info("database connection pool configured",
		slog.String("driver", string(cfg.Driver)),
		slog.Int("max_open_conns", cfg.Pool.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.Pool.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.Pool.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.Pool.ConnMaxIdleTime))

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database connection established successfully")
	return db, nil
}

// getConnectionConfigFromEnv reads connection pool configuration from environment variables.
// Falls back to default values if not set.
func getConnectionConfigFromEnv() ConnectionConfig {
	cfg := DefaultConnectionConfig()

	if maxOpen := os.Getenv("DB_MAX_OPEN_CONNS"); maxOpen != "" {
		if val, err := strconv.Atoi(maxOpen); err == nil && val > 0 {
			cfg.MaxOpenConns = val
		}
	}

	if maxIdle := os.Getenv("DB_MAX_IDLE_CONNS"); maxIdle != "" {
		if val, err := strconv.Atoi(maxIdle); err == nil && val > 0 {
			cfg.MaxIdleConns = val
		}
	}

	if lifetime := os.Getenv("DB_CONN_MAX_LIFETIME"); lifetime != "" {
		if val, err := time.ParseDuration(lifetime); err == nil && val > 0 {
			cfg.ConnMaxLifetime = val
		}
	}

	if idleTime := os.Getenv("DB_CONN_MAX_IDLE_TIME"); idleTime != "" {
		if val, err := time.ParseDuration(idleTime); err == nil && val > 0 {
			cfg.ConnMaxIdleTime = val
		}
	}

	return cfg
}
