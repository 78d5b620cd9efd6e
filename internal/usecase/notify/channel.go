package notify

import "context"

// Channel is an alert destination. Implementations apply their own rate
// limiting and retries and must be safe for concurrent use.
type Channel interface {
	// Name identifies the channel in logs, metrics and health output.
	Name() string
	// IsEnabled reports whether the channel is configured.
	IsEnabled() bool
	// Send delivers a. It returns ErrChannelDisabled when not enabled.
	Send(ctx context.Context, a Alert) error
}
