package article

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"byte-highlight/internal/common/pagination"
	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/repository"
)

// CreateInput represents the input parameters for creating a new article.
type CreateInput struct {
	Title      string
	Subtitle   string
	URL        string
	Author     string
	Channel    string
	Category   string
	Newsletter string
	Topic      string
}

// UpdateInput represents the input parameters for updating an existing article.
// Fields with nil values will not be updated.
type UpdateInput struct {
	ID         int64
	Title      *string
	Subtitle   *string
	URL        *string
	Author     *string
	Channel    *string
	Category   *string
	Newsletter *string
	Topic      *string
}

// Service provides article management use cases.
type Service struct {
	Repo repository.ArticleRepository
}

// PaginatedResult represents the result of a paginated query.
type PaginatedResult struct {
	Data       []*entity.Article
	Pagination pagination.Metadata
}

// ParseKeywords splits a free-text query into AND-ed keywords.
func ParseKeywords(q string) []string {
	return strings.Fields(q)
}

// List retrieves filtered articles with pagination metadata.
func (s *Service) List(ctx context.Context, filter repository.ArticleFilter, params pagination.Params) (*PaginatedResult, error) {
	total, err := s.Repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}

	articles, err := s.Repo.List(ctx, filter, params.Offset(), params.Limit)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	return &PaginatedResult{
		Data:       articles,
		Pagination: pagination.NewMetadata(total, params),
	}, nil
}

// Get retrieves a single article by its ID.
// Returns ErrInvalidArticleID if the ID is not positive.
// Returns ErrArticleNotFound if the article does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Article, error) {
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}

	article, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}
	return article, nil
}

// Options lists the distinct values of one article column for filter dropdowns.
func (s *Service) Options(ctx context.Context, optionType string) ([]string, error) {
	field := repository.ArticleOptionField(optionType)
	if !field.IsValid() {
		return nil, ErrInvalidOptionType
	}
	values, err := s.Repo.DistinctValues(ctx, field)
	if err != nil {
		return nil, fmt.Errorf("list %s options: %w", optionType, err)
	}
	return values, nil
}

// Create validates and stores a new article.
// Returns a ValidationError if any input field is invalid.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Article, error) {
	now := time.Now()
	art := &entity.Article{
		Title:      in.Title,
		Subtitle:   in.Subtitle,
		URL:        in.URL,
		Author:     in.Author,
		Channel:    in.Channel,
		Category:   in.Category,
		Newsletter: in.Newsletter,
		Topic:      in.Topic,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	art.Normalize()
	if err := art.Validate(); err != nil {
		return nil, err
	}

	if err := s.Repo.Create(ctx, art); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return art, nil
}

// Update modifies an existing article with the provided input.
// Only non-nil fields in the input will be updated.
// Returns ErrInvalidArticleID if the ID is not positive.
// Returns ErrArticleNotFound if the article does not exist.
// Returns a ValidationError if any updated field is invalid.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*entity.Article, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidArticleID
	}

	art, err := s.Repo.Get(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if art == nil {
		return nil, ErrArticleNotFound
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&art.Title, in.Title)
	apply(&art.Subtitle, in.Subtitle)
	apply(&art.URL, in.URL)
	apply(&art.Author, in.Author)
	apply(&art.Channel, in.Channel)
	apply(&art.Category, in.Category)
	apply(&art.Newsletter, in.Newsletter)
	apply(&art.Topic, in.Topic)

	art.Normalize()
	if err := art.Validate(); err != nil {
		return nil, err
	}
	art.UpdatedAt = time.Now()

	if err := s.Repo.Update(ctx, art); err != nil {
		// 取得後に別リクエストで削除された場合
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("update article: %w", err)
	}
	return art, nil
}

// Delete removes an article by its ID.
// Returns ErrInvalidArticleID if the ID is not positive.
// Returns ErrArticleNotFound if no article has that ID.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidArticleID
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrArticleNotFound
		}
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}
