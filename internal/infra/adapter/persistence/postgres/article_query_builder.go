// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"fmt"
	"strings"

	"byte-highlight/internal/repository"
)

// ArticleQueryBuilder builds WHERE clauses for article listing in PostgreSQL.
// This builder is shared between COUNT and SELECT queries to eliminate duplication.
// It uses PostgreSQL-specific features like ILIKE and numbered placeholders ($1, $2, etc.).
type ArticleQueryBuilder struct{}

// NewArticleQueryBuilder creates a new query builder instance.
func NewArticleQueryBuilder() *ArticleQueryBuilder {
	return &ArticleQueryBuilder{}
}

// BuildWhereClause builds the WHERE clause and arguments for filter.
// Keywords are ANDed, each matching title or subtitle case-insensitively;
// the remaining filters are exact matches. Returns an empty clause when
// filter has no criteria.
func (qb *ArticleQueryBuilder) BuildWhereClause(filter repository.ArticleFilter) (clause string, args []interface{}) {
	var conditions []string
	paramIndex := 1

	for _, keyword := range filter.Keywords {
		conditions = append(conditions,
			fmt.Sprintf("(title ILIKE $%d OR subtitle ILIKE $%d)", paramIndex, paramIndex))
		args = append(args, "%"+escapeLike(keyword)+"%")
		paramIndex++
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
		if e.value == "" {
			continue
		}
		conditions = append(conditions, fmt.Sprintf("%s = $%d", e.column, paramIndex))
		args = append(args, e.value)
		paramIndex++
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// escapeLike escapes LIKE/ILIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
