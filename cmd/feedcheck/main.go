// Command feedcheck fetches every feed in FEEDS_FILE once and reports which
// ones are healthy, without touching the database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	appconfig "byte-highlight/internal/config"
	"byte-highlight/internal/infra/fetcher"
	"byte-highlight/internal/observability/logging"
	pkgconfig "byte-highlight/internal/pkg/config"
	"byte-highlight/internal/resilience/retry"
	"byte-highlight/internal/usecase/importer"
	"byte-highlight/pkg/config"
)

// Feed statuses.
const (
	StatusOK         = "OK"
	StatusEmpty      = "EMPTY"
	StatusHTTPError  = "HTTP_ERROR"
	StatusTimeout    = "TIMEOUT"
	StatusInvalidURL = "INVALID_URL"
	StatusFetchError = "FETCH_ERROR"
)

// FeedDiagnostic is the result for a single feed.
type FeedDiagnostic struct {
	Channel      string `json:"channel"`
	URL          string `json:"url"`
	Status       string `json:"status"`
	HTTPCode     int    `json:"http_code,omitempty"`
	ItemCount    int    `json:"item_count"`
	LatestDate   string `json:"latest_date,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	ResponseTime int64  `json:"response_time_ms"`
}

func main() {
	path := flag.String("feeds", "", "feed file (defaults to FEEDS_FILE)")
	asJSON := flag.Bool("json", false, "print JSON instead of a table")
	delay := flag.Duration("delay", 500*time.Millisecond, "pause between feeds")
	flag.Parse()

	_ = config.LoadDotEnv()
	logger := logging.NewLogger(logging.OptionsFromEnv())
	slog.SetDefault(logger)

	if *path == "" {
		*path = config.GetEnvString("FEEDS_FILE", "feeds.yaml")
	}
	feeds, err := appconfig.LoadFeeds(*path)
	if err != nil {
		logger.Error("failed to load feeds", slog.Any("error", err))
		os.Exit(1)
	}

	// 診断ではリトライせず1回の結果を見る
	f := fetcher.NewFeedFetcher(fetcher.LoadConfigFromEnv(&pkgconfig.Tracker{Logger: logger})).
		WithRetry(retry.Config{MaxAttempts: 1})

	ctx := context.Background()
	diags := make([]FeedDiagnostic, 0, len(feeds))
	for i, feed := range feeds {
		logger.Info("diagnosing feed",
			slog.Int("n", i+1),
			slog.Int("of", len(feeds)),
			slog.String("url", feed.FeedURL))
		diags = append(diags, diagnose(ctx, f, feed))
		if i < len(feeds)-1 {
			time.Sleep(*delay)
		}
	}

	if *asJSON {
		err = writeJSON(os.Stdout, diags)
	} else {
		err = writeReport(os.Stdout, diags)
	}
	if err != nil {
		logger.Error("failed to write report", slog.Any("error", err))
		os.Exit(1)
	}
	for _, d := range diags {
		if d.Status != StatusOK {
			os.Exit(2)
		}
	}
}

func diagnose(ctx context.Context, f importer.FeedFetcher, feed importer.FeedRequest) FeedDiagnostic {
	d := FeedDiagnostic{Channel: feed.Channel, URL: feed.FeedURL}

	start := time.Now()
	items, err := f.Fetch(ctx, feed.FeedURL)
	d.ResponseTime = time.Since(start).Milliseconds()

	if err != nil {
		d.ErrorMessage = err.Error()
		var httpErr *retry.HTTPError
		switch {
		case errors.As(err, &httpErr):
			d.Status = StatusHTTPError
			d.HTTPCode = httpErr.StatusCode
		case errors.Is(err, importer.ErrTimeout):
			d.Status = StatusTimeout
		case errors.Is(err, importer.ErrInvalidURL):
			d.Status = StatusInvalidURL
		default:
			d.Status = StatusFetchError
		}
		return d
	}

	d.ItemCount = len(items)
	if len(items) == 0 {
		d.Status = StatusEmpty
		d.ErrorMessage = "feed has no items"
		return d
	}
	d.Status = StatusOK

	var latest time.Time
	for _, it := range items {
		if it.PublishedAt.After(latest) {
			latest = it.PublishedAt
		}
	}
	if !latest.IsZero() {
		d.LatestDate = latest.UTC().Format(time.RFC3339)
	}
	return d
}

func writeJSON(w io.Writer, diags []FeedDiagnostic) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}

func writeReport(w io.Writer, diags []FeedDiagnostic) error {
	counts := make(map[string]int)
	for _, d := range diags {
		counts[d.Status]++
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "CHANNEL\tSTATUS\tITEMS\tLATEST\tTIME\tURL\n")
	for _, d := range diags {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%dms\t%s\n",
			d.Channel, d.Status, d.ItemCount, d.LatestDate, d.ResponseTime, d.URL)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	fmt.Fprintf(w, "\n%d feeds:", len(diags))
	for _, s := range statuses {
		fmt.Fprintf(w, " %s=%d", s, counts[s])
	}
	_, err := fmt.Fprintln(w)

	for _, d := range diags {
		if d.ErrorMessage != "" && err == nil {
			_, err = fmt.Fprintf(w, "  %s: %s\n", d.URL, d.ErrorMessage)
		}
	}
	return err
}
