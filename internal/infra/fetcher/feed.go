package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"byte-highlight/internal/resilience/circuitbreaker"
	"byte-highlight/internal/resilience/retry"
	"byte-highlight/internal/usecase/importer"
)

// FeedFetcher downloads RSS/Atom feeds and parses them with gofeed.
// Transient failures are retried; a run of failures opens the breaker.
type FeedFetcher struct {
	client         *http.Client
	cfg            Config
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewFeedFetcher creates a fetcher for cfg.
func NewFeedFetcher(cfg Config) *FeedFetcher {
	return &FeedFetcher{
		client:         newClient(cfg),
		cfg:            cfg,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
	}
}

// WithRetry replaces the retry policy. Tests use it to avoid backoff sleeps.
func (f *FeedFetcher) WithRetry(cfg retry.Config) *FeedFetcher {
	f.retryConfig = cfg
	return f
}

// Fetch implements importer.FeedFetcher.
func (f *FeedFetcher) Fetch(ctx context.Context, feedURL string) ([]importer.FeedItem, error) {
	if err := validateURL(ctx, feedURL, f.cfg.DenyPrivateIPs); err != nil {
		return nil, err
	}

	var items []importer.FeedItem
	err := retry.WithBackoff(ctx, f.retryConfig, func() error {
		res, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, feedURL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("url", feedURL),
					slog.String("state", f.circuitBreaker.State().String()))
			}
			return err
		}
		items = res.([]importer.FeedItem)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (f *FeedFetcher) doFetch(ctx context.Context, feedURL string) ([]importer.FeedItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", importer.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return nil, fmt.Errorf("%w: %w", importer.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", importer.ErrFeedFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	body, err := readLimited(resp.Body, f.cfg.MaxBodySize)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %v", importer.ErrFeedFetchFailed, err)
	}

	items := make([]importer.FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		// Descriptionが空ならContentを使う
		desc := it.Description
		if desc == "" {
			desc = it.Content
		}
		item := importer.FeedItem{
			Title:       it.Title,
			Description: desc,
			Link:        it.Link,
		}
		if it.Author != nil {
			item.Author = it.Author.Name
		} else if len(it.Authors) > 0 && it.Authors[0] != nil {
			item.Author = it.Authors[0].Name
		}
		if it.PublishedParsed != nil {
			item.PublishedAt = *it.PublishedParsed
		}
		items = append(items, item)
	}
	return items, nil
}

func readLimited(r io.Reader, max int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(b)) > max {
		return nil, fmt.Errorf("%w: exceeds limit %d bytes", importer.ErrBodyTooLarge, max)
	}
	return b, nil
}
