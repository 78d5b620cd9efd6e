// Package importer turns RSS/Atom feed items into articles. A single feed can
// be imported on demand from the admin API, and the worker imports every
// configured feed on a schedule.
package importer

import "errors"

var (
	// ErrMissingFeedURL is returned when a request has no feed URL.
	ErrMissingFeedURL = errors.New("feedUrl is required")

	// ErrInvalidURL indicates a feed or page URL that cannot be fetched.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrPrivateIP indicates a URL resolving to a loopback, private or
	// link-local address.
	ErrPrivateIP = errors.New("URL resolves to private IP address")

	// ErrTooManyRedirects indicates the redirect limit was exceeded.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response exceeded the size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the fetch exceeded its deadline.
	ErrTimeout = errors.New("fetch timeout")

	// ErrFeedFetchFailed wraps network and parse failures for a feed.
	ErrFeedFetchFailed = errors.New("failed to fetch feed")

	// ErrReadabilityFailed indicates no readable text could be extracted.
	ErrReadabilityFailed = errors.New("readability extraction failed")
)
