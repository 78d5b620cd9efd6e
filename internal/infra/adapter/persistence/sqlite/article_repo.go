package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/repository"
)

const articleColumns = `id, title, subtitle, url, author, channel, category, newsletter, topic, created_at, updated_at`

// ArticleRepo implements the ArticleRepository interface using SQLite.
type ArticleRepo struct {
	db           *sql.DB
	queryBuilder *ArticleQueryBuilder
}

// NewArticleRepo creates a new SQLite-backed article repository.
func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db, queryBuilder: NewArticleQueryBuilder()}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(s rowScanner) (*entity.Article, error) {
	var a entity.Article
	if err := s.Scan(&a.ID, &a.Title, &a.Subtitle, &a.URL, &a.Author, &a.Channel,
		&a.Category, &a.Newsletter, &a.Topic, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (repo *ArticleRepo) query(ctx context.Context, op, query string, args ...interface{}) ([]*entity.Article, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: QueryContext: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	// パフォーマンス最適化: メモリ再割り当てを削減するため事前割り当て
	articles := make([]*entity.Article, 0, 100)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: Scan: %w", op, err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows.Err: %w", op, err)
	}
	return articles, nil
}

// List retrieves filtered articles ordered by creation date (newest first).
func (repo *ArticleRepo) List(ctx context.Context, filter repository.ArticleFilter, offset, limit int) ([]*entity.Article, error) {
	whereClause, args := repo.queryBuilder.BuildWhereClause(filter)
	query := "SELECT " + articleColumns + " FROM articles " + whereClause +
		" ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}
	return repo.query(ctx, "List", query, args...)
}

// Count returns the number of articles matching filter.
func (repo *ArticleRepo) Count(ctx context.Context, filter repository.ArticleFilter) (int64, error) {
	whereClause, args := repo.queryBuilder.BuildWhereClause(filter)
	var count int64
	if err := repo.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles "+whereClause, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

// ListSince retrieves the newest articles created at or after since.
func (repo *ArticleRepo) ListSince(ctx context.Context, since time.Time, limit int) ([]*entity.Article, error) {
	query := "SELECT " + articleColumns + " FROM articles WHERE created_at >= ? ORDER BY created_at DESC, id DESC LIMIT ?"
	return repo.query(ctx, "ListSince", query, since, limit)
}

// Get retrieves a single article by ID.
func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	query := "SELECT " + articleColumns + " FROM articles WHERE id = ? LIMIT 1"
	a, err := scanArticle(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return a, nil
}

// Create inserts a new article and records the generated ID.
func (repo *ArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	const query = `
INSERT INTO articles
       (title, subtitle, url, author, channel, category, newsletter, topic, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := repo.db.ExecContext(ctx, query,
		article.Title, article.Subtitle, article.URL, article.Author, article.Channel,
		article.Category, article.Newsletter, article.Topic, article.CreatedAt, article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: ExecContext: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("Create: LastInsertId: %w", err)
	}
	article.ID = id
	return nil
}

// Update modifies an existing article.
func (repo *ArticleRepo) Update(ctx context.Context, article *entity.Article) error {
	const query = `
UPDATE articles SET
       title = ?, subtitle = ?, url = ?, author = ?, channel = ?,
       category = ?, newsletter = ?, topic = ?, updated_at = ?
WHERE id = ?`
	res, err := repo.db.ExecContext(ctx, query,
		article.Title, article.Subtitle, article.URL, article.Author, article.Channel,
		article.Category, article.Newsletter, article.Topic, article.UpdatedAt, article.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: ExecContext: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

// Delete removes an article by ID.
func (repo *ArticleRepo) Delete(ctx context.Context, id int64) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("Delete: ExecContext: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

// DistinctValues lists the distinct non-empty values of a whitelisted column.
func (repo *ArticleRepo) DistinctValues(ctx context.Context, field repository.ArticleOptionField) ([]string, error) {
	if !field.IsValid() {
		return nil, fmt.Errorf("DistinctValues: %w: %q", entity.ErrInvalidInput, string(field))
	}
	col := string(field)
	query := "SELECT DISTINCT " + col + " FROM articles WHERE " + col + " <> '' ORDER BY " + col

	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("DistinctValues: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	values := make([]string, 0, 32)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("DistinctValues: Scan: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// ExistsByURLBatch checks multiple URLs in a single query.
func (repo *ArticleRepo) ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(urls) == 0 {
		return result, nil
	}

	// SQLiteは配列バインドを持たないためプレースホルダを展開する
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(urls)), ",")
	args := make([]interface{}, len(urls))
	for i, u := range urls {
		args[i] = u
	}

	rows, err := repo.db.QueryContext(ctx, "SELECT url FROM articles WHERE url IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("ExistsByURLBatch: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("ExistsByURLBatch: Scan: %w", err)
		}
		result[url] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ExistsByURLBatch: rows.Err: %w", err)
	}
	return result, nil
}
