package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"byte-highlight/internal/repository"
)

func TestArticleQueryBuilder_BuildWhereClause(t *testing.T) {
	qb := NewArticleQueryBuilder()

	tests := []struct {
		name       string
		filter     repository.ArticleFilter
		wantClause string
		wantArgs   []interface{}
	}{
		{
			name:       "empty filter",
			filter:     repository.ArticleFilter{},
			wantClause: "",
			wantArgs:   nil,
		},
		{
			name:       "single keyword",
			filter:     repository.ArticleFilter{Keywords: []string{"go"}},
			wantClause: `WHERE (title LIKE ? ESCAPE '\' OR subtitle LIKE ? ESCAPE '\')`,
			wantArgs:   []interface{}{"%go%", "%go%"},
		},
		{
			name:       "keyword with wildcard characters is escaped",
			filter:     repository.ArticleFilter{Keywords: []string{"100%_off"}},
			wantClause: `WHERE (title LIKE ? ESCAPE '\' OR subtitle LIKE ? ESCAPE '\')`,
			wantArgs:   []interface{}{`%100\%\_off%`, `%100\%\_off%`},
		},
		{
			name:       "exact matches",
			filter:     repository.ArticleFilter{Author: "Ada", Topic: "AI"},
			wantClause: "WHERE author = ? AND topic = ?",
			wantArgs:   []interface{}{"Ada", "AI"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args := qb.BuildWhereClause(tt.filter)
			assert.Equal(t, tt.wantClause, clause)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
