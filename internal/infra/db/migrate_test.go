package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateUp_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS articles").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS subscribers").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS newsletter_sends").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_articles_created_at").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_articles_url").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_subscribers_status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	// 拡張・GINインデックスは失敗しても継続する
	mock.ExpectExec("CREATE EXTENSION IF NOT EXISTS pg_trgm").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_articles_title_gin").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_articles_subtitle_gin").
		WillReturnError(sql.ErrConnDone)

	err = MigrateUp(context.Background(), db, DriverPostgres)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_SQLite(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for range sqliteSchema {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	err = MigrateUp(context.Background(), db, DriverSQLite)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_TableError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS articles").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS subscribers").
		WillReturnError(sql.ErrTxDone)

	err = MigrateUp(context.Background(), db, DriverPostgres)
	assert.ErrorIs(t, err, sql.ErrTxDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateUp_UnknownDriver(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	err = MigrateUp(context.Background(), db, Driver("mysql"))
	assert.Error(t, err)
}

func TestSchemaReady(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT 1 FROM subscribers").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	assert.NoError(t, SchemaReady(context.Background(), db))

	mock.ExpectQuery("SELECT 1 FROM subscribers").
		WillReturnError(sql.ErrConnDone)
	assert.Error(t, SchemaReady(context.Background(), db))
}
