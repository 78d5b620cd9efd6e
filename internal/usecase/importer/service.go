package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/observability/metrics"
	"byte-highlight/internal/observability/tracing"
	"byte-highlight/internal/repository"
	"byte-highlight/internal/usecase/notify"
	"byte-highlight/internal/utils/text"
)

const (
	// SubtitleMaxRunes bounds subtitles derived from feed descriptions.
	SubtitleMaxRunes = 280

	// FeedParallelism is the number of feeds imported at once by ImportAll.
	FeedParallelism = 4
)

// FeedItem is one parsed entry of a feed.
type FeedItem struct {
	Title       string
	Description string
	Link        string
	Author      string
	PublishedAt time.Time
}

// FeedFetcher downloads and parses a feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]FeedItem, error)
}

// PageFetcher returns a short plain-text excerpt of the page at url.
type PageFetcher interface {
	FetchExcerpt(ctx context.Context, url string) (string, error)
}

// Notifier receives a summary after ImportAll.
type Notifier interface {
	Notify(ctx context.Context, a notify.Alert) error
}

// FeedRequest names a feed and the editorial labels applied to its items.
type FeedRequest struct {
	FeedURL    string `json:"feedUrl" yaml:"url"`
	Author     string `json:"author,omitempty" yaml:"author"`
	Channel    string `json:"channel" yaml:"channel"`
	Category   string `json:"category" yaml:"category"`
	Newsletter string `json:"newsletter" yaml:"newsletter"`
	Topic      string `json:"topic" yaml:"topic"`
}

// Validate checks the request before any network access.
func (r FeedRequest) Validate() error {
	if strings.TrimSpace(r.FeedURL) == "" {
		return ErrMissingFeedURL
	}
	if err := entity.ValidateURL(r.FeedURL); err != nil {
		return err
	}
	labels := []struct{ field, value string }{
		{"channel", r.Channel},
		{"category", r.Category},
		{"newsletter", r.Newsletter},
		{"topic", r.Topic},
	}
	for _, l := range labels {
		if strings.TrimSpace(l.value) == "" {
			return &entity.ValidationError{Field: l.field, Message: l.field + " is required"}
		}
	}
	return nil
}

// Stats counts what happened to the items of one or more feeds.
type Stats struct {
	Feeds       int `json:"feeds"`
	FailedFeeds int `json:"failedFeeds"`
	Items       int `json:"items"`
	Inserted    int `json:"inserted"`
	Duplicated  int `json:"duplicated"`
	Invalid     int `json:"invalid"`
}

func (s *Stats) add(o *Stats) {
	s.Feeds += o.Feeds
	s.FailedFeeds += o.FailedFeeds
	s.Items += o.Items
	s.Inserted += o.Inserted
	s.Duplicated += o.Duplicated
	s.Invalid += o.Invalid
}

// Service imports feed items as articles.
type Service struct {
	Articles repository.ArticleRepository
	Feeds    FeedFetcher
	// Pages is optional. When set, items without a description get a
	// readability excerpt of their page as subtitle.
	Pages PageFetcher
	// Notifier is optional and only used by ImportAll.
	Notifier Notifier
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ImportFeed imports the items of one feed. Items whose URL is already
// stored are counted as duplicates; items failing validation as invalid.
func (s *Service) ImportFeed(ctx context.Context, req FeedRequest) (stats *Stats, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ctx, span := tracing.Start(ctx, "importer.ImportFeed", attribute.String("feed_url", req.FeedURL))
	defer func() {
		if stats != nil {
			span.SetAttributes(attribute.Int("inserted", stats.Inserted), attribute.Int("duplicated", stats.Duplicated))
		}
		tracing.End(span, err)
	}()
	start := time.Now()
	logger := slog.With(slog.String("feed_url", req.FeedURL))

	items, err := s.Feeds.Fetch(ctx, req.FeedURL)
	if err != nil {
		metrics.RecordFeedImportError("fetch_failed")
		return nil, err
	}
	stats = &Stats{Feeds: 1, Items: len(items)}
	if len(items) == 0 {
		logger.Info("feed is empty")
		return stats, nil
	}

	// N+1を避けるため既存URLはまとめて確認する
	urls := make([]string, 0, len(items))
	for _, it := range items {
		if it.Link != "" {
			urls = append(urls, strings.TrimSpace(it.Link))
		}
	}
	exists, err := s.Articles.ExistsByURLBatch(ctx, urls)
	if err != nil {
		metrics.RecordFeedImportError("batch_check_failed")
		return nil, fmt.Errorf("check existing urls: %w", err)
	}

	seen := make(map[string]bool, len(items))
	for _, it := range items {
		link := strings.TrimSpace(it.Link)
		if link != "" && (exists[link] || seen[link]) {
			stats.Duplicated++
			continue
		}
		seen[link] = true

		art := s.toArticle(ctx, req, it)
		art.Normalize()
		if err := art.Validate(); err != nil {
			stats.Invalid++
			logger.Debug("skipping invalid feed item",
				slog.String("title", it.Title),
				slog.Any("error", err))
			continue
		}
		if err := s.Articles.Create(ctx, art); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return stats, err
			}
			metrics.RecordFeedImportError("insert_failed")
			return stats, fmt.Errorf("create article: %w", err)
		}
		stats.Inserted++
	}

	metrics.RecordFeedImport(time.Since(start), stats.Inserted, stats.Duplicated, stats.Invalid)
	logger.Info("feed import completed",
		slog.Int("items", stats.Items),
		slog.Int("inserted", stats.Inserted),
		slog.Int("duplicated", stats.Duplicated),
		slog.Int("invalid", stats.Invalid),
		slog.Duration("duration", time.Since(start)))
	return stats, nil
}

// ImportAll imports feeds concurrently. A failing feed is logged and counted
// in FailedFeeds; only context cancellation aborts the run.
func (s *Service) ImportAll(ctx context.Context, feeds []FeedRequest) (*Stats, error) {
	total := &Stats{}
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(FeedParallelism)
	for _, feed := range feeds {
		eg.Go(func() error {
			st, err := s.ImportFeed(egCtx, feed)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				slog.Warn("feed import failed",
					slog.String("feed_url", feed.FeedURL),
					slog.Any("error", err))
				total.Feeds++
				total.FailedFeeds++
				if st != nil {
					total.Inserted += st.Inserted
				}
				return nil
			}
			total.add(st)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return total, err
	}

	if s.Notifier != nil && len(feeds) > 0 {
		alert := notify.ImportAlert(total.Feeds, total.Inserted, total.Duplicated, total.Invalid, total.FailedFeeds, s.now())
		if err := s.Notifier.Notify(ctx, alert); err != nil {
			slog.Warn("failed to queue import alert", slog.Any("error", err))
		}
	}
	return total, nil
}

func (s *Service) toArticle(ctx context.Context, req FeedRequest, it FeedItem) *entity.Article {
	subtitle := text.Snippet(it.Description, SubtitleMaxRunes)
	if subtitle == "" && s.Pages != nil && it.Link != "" {
		excerpt, err := s.Pages.FetchExcerpt(ctx, it.Link)
		if err != nil {
			slog.Debug("page excerpt unavailable",
				slog.String("url", it.Link),
				slog.Any("error", err))
		} else {
			subtitle = text.Truncate(strings.Join(strings.Fields(excerpt), " "), SubtitleMaxRunes)
		}
	}

	author := it.Author
	if author == "" {
		author = req.Author
	}

	created := s.now()
	if !it.PublishedAt.IsZero() {
		created = it.PublishedAt
	}
	return &entity.Article{
		Title:      text.Snippet(it.Title, SubtitleMaxRunes),
		Subtitle:   subtitle,
		URL:        it.Link,
		Author:     author,
		Channel:    req.Channel,
		Category:   req.Category,
		Newsletter: req.Newsletter,
		Topic:      req.Topic,
		CreatedAt:  created,
		UpdatedAt:  s.now(),
	}
}
