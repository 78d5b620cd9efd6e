package repository

import (
	"context"
	"time"

	"byte-highlight/internal/domain/entity"
)

// ArticleFilter narrows article listings. Empty fields are ignored;
// keywords are ANDed and matched against title and subtitle.
type ArticleFilter struct {
	Keywords   []string
	Author     string
	Category   string
	Topic      string
	Channel    string
	Newsletter string
}

// IsEmpty reports whether no filter criteria are set.
func (f ArticleFilter) IsEmpty() bool {
	return len(f.Keywords) == 0 && f.Author == "" && f.Category == "" &&
		f.Topic == "" && f.Channel == "" && f.Newsletter == ""
}

// ArticleOptionField names a column whose distinct values can be listed.
type ArticleOptionField string

const (
	OptionAuthor     ArticleOptionField = "author"
	OptionCategory   ArticleOptionField = "category"
	OptionTopic      ArticleOptionField = "topic"
	OptionChannel    ArticleOptionField = "channel"
	OptionNewsletter ArticleOptionField = "newsletter"
)

// IsValid reports whether f is one of the listable columns.
func (f ArticleOptionField) IsValid() bool {
	switch f {
	case OptionAuthor, OptionCategory, OptionTopic, OptionChannel, OptionNewsletter:
		return true
	}
	return false
}

type ArticleRepository interface {
	// List returns articles matching filter ordered by created_at DESC.
	// A limit of 0 means no limit.
	List(ctx context.Context, filter ArticleFilter, offset, limit int) ([]*entity.Article, error)
	// Count returns the number of articles matching filter.
	Count(ctx context.Context, filter ArticleFilter) (int64, error)
	// ListSince returns up to limit articles created at or after since, newest first.
	ListSince(ctx context.Context, since time.Time, limit int) ([]*entity.Article, error)
	// Get returns (nil, nil) when the article does not exist.
	Get(ctx context.Context, id int64) (*entity.Article, error)
	// Create inserts article and sets its ID.
	Create(ctx context.Context, article *entity.Article) error
	// Update returns entity.ErrNotFound when no row matched.
	Update(ctx context.Context, article *entity.Article) error
	// Delete returns entity.ErrNotFound when no row matched.
	Delete(ctx context.Context, id int64) error
	// DistinctValues lists the non-empty distinct values of field, sorted.
	DistinctValues(ctx context.Context, field ArticleOptionField) ([]string, error)
	// ExistsByURLBatch はバッチでURL存在チェックを行い、N+1問題を解消する
	ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error)
}
