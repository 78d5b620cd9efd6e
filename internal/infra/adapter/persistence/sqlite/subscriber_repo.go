package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/repository"
)

// SubscriberRepo implements the SubscriberRepository interface using SQLite.
type SubscriberRepo struct{ db *sql.DB }

// NewSubscriberRepo creates a new SQLite-backed subscriber repository.
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

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// List retrieves subscribers, optionally filtered by status, newest first.
func (repo *SubscriberRepo) List(ctx context.Context, status *entity.SubscriberStatus) ([]*entity.Subscriber, error) {
	query := "SELECT id, email, status, created_at FROM subscribers"
	var args []interface{}
	if status != nil {
		query += " WHERE status = ?"
		args = append(args, string(*status))
	}
	query += " ORDER BY created_at DESC"

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: QueryContext: %w", err)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows.Err: %w", err)
	}
	return subscribers, nil
}

// ListActiveEmails retrieves the addresses of every active subscriber.
func (repo *SubscriberRepo) ListActiveEmails(ctx context.Context) ([]string, error) {
	rows, err := repo.db.QueryContext(ctx,
		"SELECT email FROM subscribers WHERE status = ? ORDER BY created_at ASC",
		string(entity.SubscriberStatusActive))
	if err != nil {
		return nil, fmt.Errorf("ListActiveEmails: QueryContext: %w", err)
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

// Get retrieves a subscriber by ID.
func (repo *SubscriberRepo) Get(ctx context.Context, id string) (*entity.Subscriber, error) {
	sub, err := scanSubscriber(repo.db.QueryRowContext(ctx,
		"SELECT id, email, status, created_at FROM subscribers WHERE id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return sub, nil
}

// GetByEmail retrieves a subscriber by address.
func (repo *SubscriberRepo) GetByEmail(ctx context.Context, email string) (*entity.Subscriber, error) {
	sub, err := scanSubscriber(repo.db.QueryRowContext(ctx,
		"SELECT id, email, status, created_at FROM subscribers WHERE email = ? LIMIT 1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByEmail: %w", err)
	}
	return sub, nil
}

// Create inserts a subscriber; a duplicate address yields entity.ErrDuplicate.
func (repo *SubscriberRepo) Create(ctx context.Context, sub *entity.Subscriber) error {
	_, err := repo.db.ExecContext(ctx,
		"INSERT INTO subscribers (id, email, status, created_at) VALUES (?, ?, ?, ?)",
		sub.ID, sub.Email, string(sub.Status), sub.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Create: %w", entity.ErrDuplicate)
		}
		return fmt.Errorf("Create: ExecContext: %w", err)
	}
	return nil
}

// UpdateStatus changes a subscriber's status.
func (repo *SubscriberRepo) UpdateStatus(ctx context.Context, id string, status entity.SubscriberStatus) error {
	res, err := repo.db.ExecContext(ctx, "UPDATE subscribers SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("UpdateStatus: ExecContext: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("UpdateStatus: %w", entity.ErrNotFound)
	}
	return nil
}

// Delete removes a subscriber by ID.
func (repo *SubscriberRepo) Delete(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM subscribers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("Delete: ExecContext: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

// CountByStatus returns subscriber counts grouped by status.
func (repo *SubscriberRepo) CountByStatus(ctx context.Context) (map[entity.SubscriberStatus]int64, error) {
	rows, err := repo.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM subscribers GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("CountByStatus: QueryContext: %w", err)
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
