package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/repository"
)

type SendLogRepo struct {
	db *sql.DB
}

func NewSendLogRepo(db *sql.DB) repository.SendLogRepository {
	return &SendLogRepo{db: db}
}

func (repo *SendLogRepo) Create(ctx context.Context, log *entity.SendLog) error {
	const query = `
INSERT INTO newsletter_sends
       (subject, mode, test_mode, recipients, sent, failed, error, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		log.Subject, string(log.Mode), log.TestMode, log.Recipients,
		log.Sent, log.Failed, log.Error, log.CreatedAt,
	).Scan(&log.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *SendLogRepo) ListRecent(ctx context.Context, limit int) ([]*entity.SendLog, error) {
	const query = `
SELECT id, subject, mode, test_mode, recipients, sent, failed, error, created_at
FROM newsletter_sends
ORDER BY created_at DESC, id DESC
LIMIT $1`
	rows, err := repo.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ListRecent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	logs := make([]*entity.SendLog, 0, limit)
	for rows.Next() {
		var l entity.SendLog
		var mode string
		if err := rows.Scan(&l.ID, &l.Subject, &mode, &l.TestMode, &l.Recipients,
			&l.Sent, &l.Failed, &l.Error, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListRecent: Scan: %w", err)
		}
		l.Mode = entity.DispatchMode(mode)
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
