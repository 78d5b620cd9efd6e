package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"byte-highlight/internal/infra/db"
)

// openTestDB returns a migrated in-memory database private to the test.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := db.Config{
		Driver: db.DriverSQLite,
		DSN:    ":memory:",
		Pool:   db.DefaultConnectionConfig(),
	}
	// :memory: は接続ごとに別DBになるため1本に固定
	cfg.Pool.MaxOpenConns = 1
	cfg.Pool.MaxIdleConns = 1

	conn, err := db.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if err := db.MigrateUp(context.Background(), conn, db.DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}
