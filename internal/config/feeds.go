package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"byte-highlight/internal/usecase/importer"
)

// feedsFile is the YAML layout of FEEDS_FILE:
//
//	defaults:
//	  newsletter: The Byte Highlight
//	feeds:
//	  - url: https://example.com/rss
//	    channel: Example
//	    category: Technology
//	    topic: AI
type feedsFile struct {
	Defaults importer.FeedRequest   `yaml:"defaults"`
	Feeds    []importer.FeedRequest `yaml:"feeds"`
}

// LoadFeeds reads the feed list used by the scheduled import. Missing fields
// of each feed are taken from defaults; every feed must then validate.
func LoadFeeds(path string) ([]importer.FeedRequest, error) {
	// #nosec G304 -- path comes from FEEDS_FILE, set by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feeds file: %w", err)
	}

	var f feedsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse feeds file: %w", err)
	}
	if len(f.Feeds) == 0 {
		return nil, errors.New("feeds file lists no feeds")
	}

	out := make([]importer.FeedRequest, 0, len(f.Feeds))
	var errs []error
	for i, feed := range f.Feeds {
		feed = withDefaults(feed, f.Defaults)
		if err := feed.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("feed %d (%s): %w", i, feed.FeedURL, err))
			continue
		}
		out = append(out, feed)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

func withDefaults(f, d importer.FeedRequest) importer.FeedRequest {
	pick := func(v, def string) string {
		if v != "" {
			return v
		}
		return def
	}
	f.Author = pick(f.Author, d.Author)
	f.Channel = pick(f.Channel, d.Channel)
	f.Category = pick(f.Category, d.Category)
	f.Newsletter = pick(f.Newsletter, d.Newsletter)
	f.Topic = pick(f.Topic, d.Topic)
	return f
}
