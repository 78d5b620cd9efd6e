package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/repository"

	"github.com/lib/pq"
)

const articleColumns = `id, title, subtitle, url, author, channel, category, newsletter, topic, created_at, updated_at`

type ArticleRepo struct {
	db           *sql.DB
	queryBuilder *ArticleQueryBuilder
}

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{
		db:           db,
		queryBuilder: NewArticleQueryBuilder(),
	}
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

func collectArticles(rows *sql.Rows, capacity int) ([]*entity.Article, error) {
	// パフォーマンス最適化: メモリ再割り当てを削減するため事前割り当て
	articles := make([]*entity.Article, 0, capacity)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("Scan: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (repo *ArticleRepo) List(ctx context.Context, filter repository.ArticleFilter, offset, limit int) ([]*entity.Article, error) {
	whereClause, args := repo.queryBuilder.BuildWhereClause(filter)
	query := fmt.Sprintf(`
SELECT %s
FROM articles
%s
ORDER BY created_at DESC, id DESC`, articleColumns, whereClause)

	capacity := 100
	if limit > 0 {
		paramIndex := len(args) + 1
		query += fmt.Sprintf("\nLIMIT $%d OFFSET $%d", paramIndex, paramIndex+1)
		args = append(args, limit, offset)
		capacity = limit
	}

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles, err := collectArticles(rows, capacity)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return articles, nil
}

func (repo *ArticleRepo) Count(ctx context.Context, filter repository.ArticleFilter) (int64, error) {
	whereClause, args := repo.queryBuilder.BuildWhereClause(filter)
	query := "SELECT COUNT(*) FROM articles " + whereClause

	var count int64
	if err := repo.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

func (repo *ArticleRepo) ListSince(ctx context.Context, since time.Time, limit int) ([]*entity.Article, error) {
	query := `
SELECT ` + articleColumns + `
FROM articles
WHERE created_at >= $1
ORDER BY created_at DESC, id DESC
LIMIT $2`
	rows, err := repo.db.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("ListSince: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles, err := collectArticles(rows, limit)
	if err != nil {
		return nil, fmt.Errorf("ListSince: %w", err)
	}
	return articles, nil
}

func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	query := `
SELECT ` + articleColumns + `
FROM articles
WHERE id = $1
LIMIT 1`
	a, err := scanArticle(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return a, nil
}

func (repo *ArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	const query = `
INSERT INTO articles
       (title, subtitle, url, author, channel, category, newsletter, topic, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		article.Title, article.Subtitle, article.URL, article.Author, article.Channel,
		article.Category, article.Newsletter, article.Topic, article.CreatedAt, article.UpdatedAt,
	).Scan(&article.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *ArticleRepo) Update(ctx context.Context, article *entity.Article) error {
	const query = `
UPDATE articles SET
       title      = $1,
       subtitle   = $2,
       url        = $3,
       author     = $4,
       channel    = $5,
       category   = $6,
       newsletter = $7,
       topic      = $8,
       updated_at = $9
WHERE id = $10`
	res, err := repo.db.ExecContext(ctx, query,
		article.Title, article.Subtitle, article.URL, article.Author, article.Channel,
		article.Category, article.Newsletter, article.Topic, article.UpdatedAt, article.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *ArticleRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM articles WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *ArticleRepo) DistinctValues(ctx context.Context, field repository.ArticleOptionField) ([]string, error) {
	// カラム名はプレースホルダにできないためホワイトリストで検証する
	if !field.IsValid() {
		return nil, fmt.Errorf("DistinctValues: %w: %q", entity.ErrInvalidInput, string(field))
	}
	query := fmt.Sprintf(`
SELECT DISTINCT %[1]s
FROM articles
WHERE %[1]s <> ''
ORDER BY %[1]s`, string(field))

	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("DistinctValues: %w", err)
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

// ExistsByURLBatch はバッチでURL存在チェックを行い、N+1問題を解消する
func (repo *ArticleRepo) ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error) {
	if len(urls) == 0 {
		return make(map[string]bool), nil
	}

	const query = `SELECT url FROM articles WHERE url = ANY($1)`
	rows, err := repo.db.QueryContext(ctx, query, pq.Array(urls))
	if err != nil {
		return nil, fmt.Errorf("ExistsByURLBatch: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]bool)
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
