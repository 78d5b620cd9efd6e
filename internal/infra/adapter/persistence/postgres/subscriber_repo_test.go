package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgconn"

	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/infra/adapter/persistence/postgres"
)

/* ──────────────────────────────── ヘルパ ──────────────────────────────── */

func subscriberRows(subs ...*entity.Subscriber) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "email", "status", "created_at"})
	for _, s := range subs {
		rows.AddRow(s.ID, s.Email, string(s.Status), s.CreatedAt)
	}
	return rows
}

/* ──────────────────────────────── 1. Create ──────────────────────────────── */

func TestSubscriberRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	sub := &entity.Subscriber{
		ID: "0b6f4a8e-7c0a-4c55-9f0e-1b7d6f0d8a11", Email: "reader@example.com",
		Status: entity.SubscriberStatusActive, CreatedAt: now,
	}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO subscribers`)).
		WithArgs(sub.ID, sub.Email, "active", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := postgres.NewSubscriberRepo(db).Create(context.Background(), sub); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSubscriberRepo_Create_Duplicate(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`INSERT INTO subscribers`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := postgres.NewSubscriberRepo(db).Create(context.Background(), &entity.Subscriber{
		ID: "id", Email: "reader@example.com", Status: entity.SubscriberStatusActive,
	})
	if !errors.Is(err, entity.ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}
}

func TestSubscriberRepo_Create_OtherError(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`INSERT INTO subscribers`).
		WillReturnError(sql.ErrConnDone)

	err := postgres.NewSubscriberRepo(db).Create(context.Background(), &entity.Subscriber{ID: "id", Email: "a@b.co"})
	if errors.Is(err, entity.ErrDuplicate) || !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("want wrapped ErrConnDone, got %v", err)
	}
}

/* ──────────────────────────────── 2. Read ──────────────────────────────── */

func TestSubscriberRepo_List(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	want := []*entity.Subscriber{
		{ID: "2", Email: "b@example.com", Status: entity.SubscriberStatusActive, CreatedAt: now},
		{ID: "1", Email: "a@example.com", Status: entity.SubscriberStatusActive, CreatedAt: now.Add(-time.Hour)},
	}
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE status = $1`)).
		WithArgs("active").
		WillReturnRows(subscriberRows(want...))

	status := entity.SubscriberStatusActive
	got, err := postgres.NewSubscriberRepo(db).List(context.Background(), &status)
	if err != nil {
		t.Fatalf("List err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSubscriberRepo_ListActiveEmails(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`SELECT email`).
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow("a@example.com").AddRow("b@example.com"))

	got, err := postgres.NewSubscriberRepo(db).ListActiveEmails(context.Background())
	if err != nil {
		t.Fatalf("ListActiveEmails err=%v", err)
	}
	if diff := cmp.Diff([]string{"a@example.com", "b@example.com"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSubscriberRepo_GetByEmail_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`WHERE email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	got, err := postgres.NewSubscriberRepo(db).GetByEmail(context.Background(), "nobody@example.com")
	if err != nil || got != nil {
		t.Fatalf("want nil,nil got %v,%v", got, err)
	}
}

func TestSubscriberRepo_CountByStatus(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`GROUP BY status`)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("active", int64(12)).AddRow("unsubscribed", int64(3)))

	got, err := postgres.NewSubscriberRepo(db).CountByStatus(context.Background())
	if err != nil {
		t.Fatalf("CountByStatus err=%v", err)
	}
	want := map[entity.SubscriberStatus]int64{
		entity.SubscriberStatusActive:       12,
		entity.SubscriberStatusUnsubscribed: 3,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

/* ──────────────────────────────── 3. Update / Delete ──────────────────────────────── */

func TestSubscriberRepo_UpdateStatus(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE subscribers SET status = $1 WHERE id = $2`)).
		WithArgs("unsubscribed", "id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE subscribers SET status = $1 WHERE id = $2`)).
		WithArgs("unsubscribed", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewSubscriberRepo(db)
	if err := repo.UpdateStatus(context.Background(), "id-1", entity.SubscriberStatusUnsubscribed); err != nil {
		t.Fatalf("UpdateStatus err=%v", err)
	}
	if err := repo.UpdateStatus(context.Background(), "missing", entity.SubscriberStatusUnsubscribed); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSubscriberRepo_Delete(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM subscribers WHERE id = $1`)).
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := postgres.NewSubscriberRepo(db).Delete(context.Background(), "id-1"); err != nil {
		t.Fatalf("Delete err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
