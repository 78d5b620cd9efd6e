// Package pagination parses page/limit query parameters and builds the
// metadata block returned alongside paginated listings.
package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

// Config holds pagination limits.
type Config struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultConfig returns limit=20, max=100.
func DefaultConfig() Config {
	return Config{DefaultLimit: 20, MaxLimit: 100}
}

// Params represents pagination query parameters from an HTTP request.
type Params struct {
	Page  int // 1-based page number
	Limit int // Items per page
}

// Offset returns the database OFFSET for p. Page 1 has offset 0.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParseQueryParams reads "page" and "limit" from the query string.
// Missing values fall back to page 1 and cfg.DefaultLimit.
func ParseQueryParams(r *http.Request, cfg Config) (Params, error) {
	params := Params{Page: 1, Limit: cfg.DefaultLimit}
	q := r.URL.Query()

	if pageStr := q.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return params, fmt.Errorf("invalid query parameter: page must be a positive integer")
		}
		params.Page = page
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > cfg.MaxLimit {
			return params, fmt.Errorf("invalid query parameter: limit must be between 1 and %d", cfg.MaxLimit)
		}
		params.Limit = limit
	}

	return params, nil
}

// Metadata contains pagination metadata included in API responses.
type Metadata struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// NewMetadata computes the page count for total items. There is always at least one page.
func NewMetadata(total int64, p Params) Metadata {
	pages := 1
	if total > 0 && p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Metadata{Total: total, Page: p.Page, Limit: p.Limit, TotalPages: pages}
}

// Response is a generic paginated response wrapper.
type Response[T any] struct {
	Data       []T      `json:"data"`
	Pagination Metadata `json:"pagination"`
}
