// Package entity defines the core domain entities and validation logic for the application.
// It contains the newsletter's business objects, Article and Subscriber, along with
// their validation rules and domain-specific errors.
package entity

import (
	"strings"
	"time"
)

// Article represents a curated article that can be featured in a newsletter issue.
// URL is optional; every other descriptive field is required.
type Article struct {
	ID         int64
	Title      string
	Subtitle   string
	URL        string
	Author     string
	Channel    string
	Category   string
	Newsletter string
	Topic      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks the required fields and the optional URL.
// The first failing field is reported as a *ValidationError.
func (a *Article) Validate() error {
	required := []struct {
		field string
		value string
		label string
	}{
		{"title", a.Title, "Title"},
		{"subtitle", a.Subtitle, "Subtitle"},
		{"author", a.Author, "Author"},
		{"channel", a.Channel, "Channel"},
		{"category", a.Category, "Category"},
		{"newsletter", a.Newsletter, "Newsletter"},
		{"topic", a.Topic, "Topic"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Message: r.label + " is required"}
		}
	}

	// URLは任意項目。指定された場合のみ形式を検証する
	if strings.TrimSpace(a.URL) != "" {
		if err := ValidateURL(a.URL); err != nil {
			return err
		}
	}
	return nil
}

// Normalize trims surrounding whitespace from every text field.
func (a *Article) Normalize() {
	a.Title = strings.TrimSpace(a.Title)
	a.Subtitle = strings.TrimSpace(a.Subtitle)
	a.URL = strings.TrimSpace(a.URL)
	a.Author = strings.TrimSpace(a.Author)
	a.Channel = strings.TrimSpace(a.Channel)
	a.Category = strings.TrimSpace(a.Category)
	a.Newsletter = strings.TrimSpace(a.Newsletter)
	a.Topic = strings.TrimSpace(a.Topic)
}
