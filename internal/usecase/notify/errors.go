package notify

import "errors"

var (
	// ErrChannelDisabled is returned by Send on a channel that is not configured.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrInvalidAlert is returned for an alert missing required fields.
	ErrInvalidAlert = errors.New("invalid alert")
)
