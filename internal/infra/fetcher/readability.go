package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"byte-highlight/internal/resilience/circuitbreaker"
	"byte-highlight/internal/usecase/importer"
)

// ReadabilityFetcher extracts a plain-text excerpt from an article page with
// go-readability. Safe for concurrent use.
type ReadabilityFetcher struct {
	client         *http.Client
	cfg            Config
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewReadabilityFetcher creates a page fetcher for cfg.
func NewReadabilityFetcher(cfg Config) *ReadabilityFetcher {
	return &ReadabilityFetcher{
		client: newClient(cfg),
		cfg:    cfg,
		circuitBreaker: circuitbreaker.New(circuitbreaker.Config{
			Name:             "page-fetch",
			MaxRequests:      5,
			Interval:         60 * time.Second,
			Timeout:          60 * time.Second,
			FailureThreshold: 0.6,
			MinRequests:      5,
		}),
	}
}

// FetchExcerpt implements importer.PageFetcher. The page's own excerpt is
// preferred; otherwise the extracted text is returned.
func (f *ReadabilityFetcher) FetchExcerpt(ctx context.Context, urlStr string) (string, error) {
	if err := validateURL(ctx, urlStr, f.cfg.DenyPrivateIPs); err != nil {
		return "", err
	}
	res, err := f.circuitBreaker.Execute(func() (interface{}, error) {
		return f.doFetch(ctx, urlStr)
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

func (f *ReadabilityFetcher) doFetch(ctx context.Context, urlStr string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", importer.ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			if urlErr.Timeout() {
				return "", fmt.Errorf("%w: request exceeded %v", importer.ErrTimeout, f.cfg.Timeout)
			}
			return "", urlErr.Err
		}
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := readLimited(resp.Body, f.cfg.MaxBodySize)
	if err != nil {
		return "", err
	}

	pageURL := resp.Request.URL
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", importer.ErrReadabilityFailed, err)
	}

	if excerpt := strings.TrimSpace(article.Excerpt); excerpt != "" {
		return excerpt, nil
	}
	if txt := strings.TrimSpace(article.TextContent); txt != "" {
		return txt, nil
	}
	return "", fmt.Errorf("%w: no readable content found", importer.ErrReadabilityFailed)
}
