package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/infra/adapter/persistence/postgres"
)

func TestSendLogRepo_CreateAndList(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	log := &entity.SendLog{
		Subject: "Weekly", Mode: entity.DispatchModeBatch, Recipients: 12,
		Sent: 12, CreatedAt: now,
	}
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO newsletter_sends`)).
		WithArgs("Weekly", "batch", false, 12, 12, 0, "", now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM newsletter_sends`)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "subject", "mode", "test_mode", "recipients", "sent", "failed", "error", "created_at",
		}).AddRow(int64(9), "Weekly", "batch", false, 12, 12, 0, "", now))

	repo := postgres.NewSendLogRepo(db)
	if err := repo.Create(context.Background(), log); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if log.ID != 9 {
		t.Fatalf("want ID 9, got %d", log.ID)
	}

	got, err := repo.ListRecent(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListRecent err=%v", err)
	}
	if diff := cmp.Diff([]*entity.SendLog{log}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
