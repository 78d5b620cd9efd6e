package db

import (
	"context"
	"database/sql"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS articles (
    id          BIGSERIAL PRIMARY KEY,
    title       TEXT NOT NULL,
    subtitle    TEXT NOT NULL,
    url         TEXT NOT NULL DEFAULT '',
    author      TEXT NOT NULL,
    channel     TEXT NOT NULL,
    category    TEXT NOT NULL,
    newsletter  TEXT NOT NULL,
    topic       TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS subscribers (
    id          UUID PRIMARY KEY,
    email       TEXT NOT NULL UNIQUE,
    status      TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'unsubscribed')),
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS newsletter_sends (
    id          BIGSERIAL PRIMARY KEY,
    subject     TEXT NOT NULL,
    mode        TEXT NOT NULL,
    test_mode   BOOLEAN NOT NULL DEFAULT FALSE,
    recipients  INTEGER NOT NULL,
    sent        INTEGER NOT NULL,
    failed      INTEGER NOT NULL,
    error       TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	// ORDER BY created_at DESC で使用(一覧・週次ダイジェスト)
	`CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at DESC)`,
	// インポート時のURL重複チェック用
	`CREATE INDEX IF NOT EXISTS idx_articles_url ON articles(url) WHERE url <> ''`,
	// 配信対象(status = 'active')の絞り込み用
	`CREATE INDEX IF NOT EXISTS idx_subscribers_status ON subscribers(status)`,
}

// pg_trgm拡張がない環境でも起動できるよう、失敗を無視するDDL
var postgresOptional = []string{
	`CREATE EXTENSION IF NOT EXISTS pg_trgm`,
	`CREATE INDEX IF NOT EXISTS idx_articles_title_gin ON articles USING gin(title gin_trgm_ops)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_subtitle_gin ON articles USING gin(subtitle gin_trgm_ops)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS articles (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    title       TEXT NOT NULL,
    subtitle    TEXT NOT NULL,
    url         TEXT NOT NULL DEFAULT '',
    author      TEXT NOT NULL,
    channel     TEXT NOT NULL,
    category    TEXT NOT NULL,
    newsletter  TEXT NOT NULL,
    topic       TEXT NOT NULL,
    created_at  DATETIME NOT NULL,
    updated_at  DATETIME NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS subscribers (
    id          TEXT PRIMARY KEY,
    email       TEXT NOT NULL UNIQUE,
    status      TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'unsubscribed')),
    created_at  DATETIME NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS newsletter_sends (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    subject     TEXT NOT NULL,
    mode        TEXT NOT NULL,
    test_mode   BOOLEAN NOT NULL DEFAULT 0,
    recipients  INTEGER NOT NULL,
    sent        INTEGER NOT NULL,
    failed      INTEGER NOT NULL,
    error       TEXT NOT NULL DEFAULT '',
    created_at  DATETIME NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_url ON articles(url)`,
	`CREATE INDEX IF NOT EXISTS idx_subscribers_status ON subscribers(status)`,
}

// MigrateUp creates the schema for driver if it does not exist yet.
func MigrateUp(ctx context.Context, db *sql.DB, driver Driver) error {
	var statements, optional []string
	switch driver {
	case DriverPostgres:
		statements, optional = postgresSchema, postgresOptional
	case DriverSQLite:
		statements = sqliteSchema
	default:
		return fmt.Errorf("migrate: unsupported database driver %q", string(driver))
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	for _, stmt := range optional {
		_, _ = db.ExecContext(ctx, stmt)
	}
	return nil
}

// SchemaReady reports whether the tables required by the worker exist.
func SchemaReady(ctx context.Context, db *sql.DB) error {
	const probe = "SELECT 1 FROM subscribers LIMIT 1"
	rows, err := db.QueryContext(ctx, probe)
	if err != nil {
		return err
	}
	return rows.Close()
}
