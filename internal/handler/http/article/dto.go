// Package article serves the public article catalogue and the admin article
// editor endpoints.
package article

import (
	"time"

	"byte-highlight/internal/domain/entity"
)

// DTO is the JSON shape of an article.
type DTO struct {
	ID         int64     `json:"id" example:"1"`
	Title      string    `json:"title" example:"Go 1.26 released"`
	Subtitle   string    `json:"subtitle" example:"Iterators, faster maps and a new GC"`
	URL        string    `json:"url,omitempty" example:"https://go.dev/blog/go1.26"`
	Author     string    `json:"author" example:"The Go Team"`
	Channel    string    `json:"channel" example:"Blog"`
	Category   string    `json:"category" example:"Languages"`
	Newsletter string    `json:"newsletter" example:"Weekly"`
	Topic      string    `json:"topic" example:"Go"`
	CreatedAt  time.Time `json:"created_at" example:"2026-02-11T10:00:00Z"`
	UpdatedAt  time.Time `json:"updated_at" example:"2026-02-11T12:00:00Z"`
}

func toDTO(a *entity.Article) DTO {
	return DTO{
		ID:         a.ID,
		Title:      a.Title,
		Subtitle:   a.Subtitle,
		URL:        a.URL,
		Author:     a.Author,
		Channel:    a.Channel,
		Category:   a.Category,
		Newsletter: a.Newsletter,
		Topic:      a.Topic,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// writeRequest is the body of create and update requests. Pointer fields
// let an update leave a column untouched.
type writeRequest struct {
	Title      *string `json:"title"`
	Subtitle   *string `json:"subtitle"`
	URL        *string `json:"url"`
	Author     *string `json:"author"`
	Channel    *string `json:"channel"`
	Category   *string `json:"category"`
	Newsletter *string `json:"newsletter"`
	Topic      *string `json:"topic"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
