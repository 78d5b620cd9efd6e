// Package sqlite provides SQLite implementations of repository interfaces.
// It backs DATABASE_DRIVER=sqlite for local development.
package sqlite

import (
	"strings"

	"byte-highlight/internal/repository"
)

// ArticleQueryBuilder builds WHERE clauses for article listing.
// This builder is shared between COUNT and SELECT queries to eliminate duplication.
type ArticleQueryBuilder struct{}

// NewArticleQueryBuilder creates a new query builder instance.
func NewArticleQueryBuilder() *ArticleQueryBuilder {
	return &ArticleQueryBuilder{}
}

// BuildWhereClause builds WHERE clause and arguments for filter.
// SQLite's LIKE is already case-insensitive for ASCII.
func (qb *ArticleQueryBuilder) BuildWhereClause(filter repository.ArticleFilter) (clause string, args []interface{}) {
	var conditions []string

	for _, keyword := range filter.Keywords {
		likePattern := "%" + escapeLike(keyword) + "%"
		conditions = append(conditions, `(title LIKE ? ESCAPE '\' OR subtitle LIKE ? ESCAPE '\')`)
		args = append(args, likePattern, likePattern)
	}

	exact := []struct {
		column string
		value  string
	}{
		{"author", filter.Author},
		{"category", filter.Category},
		{"topic", filter.Topic},
		{"channel", filter.Channel},
		{"newsletter", filter.Newsletter},
	}
	for _, e := range exact {
		if e.value != "" {
			conditions = append(conditions, e.column+" = ?")
			args = append(args, e.value)
		}
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
