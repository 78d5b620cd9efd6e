package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/repository"
)

// uniqueViolation is the SQLSTATE raised for duplicate keys.
const uniqueViolation = "23505"

type SubscriberRepo struct {
	db *sql.DB
}

func NewSubscriberRepo(db *sql.DB) repository.SubscriberRepository {
	return &SubscriberRepo{db: db}
}

func scanSubscriber(s rowScanner) (*entity.Subscriber, error) {
	var sub entity.Subscriber
	var status string
	if err := s.Scan(&sub.ID, &sub.Email, &status, &sub.CreatedAt); err != nil {
		return nil, err
	}
	sub.Status = entity.SubscriberStatus(status)
	return &sub, nil
}

func (repo *SubscriberRepo) List(ctx context.Context, status *entity.SubscriberStatus) ([]*entity.Subscriber, error) {
	query := `
SELECT id, email, status, created_at
FROM subscribers`
	var args []interface{}
	if status != nil {
		query += "\nWHERE status = $1"
		args = append(args, string(*status))
	}
	query += "\nORDER BY created_at DESC"

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	subscribers := make([]*entity.Subscriber, 0, 100)
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		subscribers = append(subscribers, sub)
	}
	return subscribers, rows.Err()
}

func (repo *SubscriberRepo) ListActiveEmails(ctx context.Context) ([]string, error) {
	const query = `
SELECT email
FROM subscribers
WHERE status = $1
ORDER BY created_at ASC`
	rows, err := repo.db.QueryContext(ctx, query, string(entity.SubscriberStatusActive))
	if err != nil {
		return nil, fmt.Errorf("ListActiveEmails: %w", err)
	}
	defer func() { _ = rows.Close() }()

	emails := make([]string, 0, 100)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("ListActiveEmails: Scan: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

func (repo *SubscriberRepo) Get(ctx context.Context, id string) (*entity.Subscriber, error) {
	const query = `
SELECT id, email, status, created_at
FROM subscribers
WHERE id = $1
LIMIT 1`
	sub, err := scanSubscriber(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return sub, nil
}

func (repo *SubscriberRepo) GetByEmail(ctx context.Context, email string) (*entity.Subscriber, error) {
	const query = `
SELECT id, email, status, created_at
FROM subscribers
WHERE email = $1
LIMIT 1`
	sub, err := scanSubscriber(repo.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByEmail: %w", err)
	}
	return sub, nil
}

func (repo *SubscriberRepo) Create(ctx context.Context, sub *entity.Subscriber) error {
	const query = `
INSERT INTO subscribers (id, email, status, created_at)
VALUES ($1, $2, $3, $4)`
	_, err := repo.db.ExecContext(ctx, query, sub.ID, sub.Email, string(sub.Status), sub.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("Create: %w", entity.ErrDuplicate)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *SubscriberRepo) UpdateStatus(ctx context.Context, id string, status entity.SubscriberStatus) error {
	const query = `UPDATE subscribers SET status = $1 WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("UpdateStatus: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *SubscriberRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM subscribers WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *SubscriberRepo) CountByStatus(ctx context.Context) (map[entity.SubscriberStatus]int64, error) {
	const query = `SELECT status, COUNT(*) FROM subscribers GROUP BY status`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("CountByStatus: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[entity.SubscriberStatus]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("CountByStatus: Scan: %w", err)
		}
		counts[entity.SubscriberStatus(status)] = n
	}
	return counts, rows.Err()
}
