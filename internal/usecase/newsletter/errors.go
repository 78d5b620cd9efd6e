// Package newsletter implements newsletter delivery: the send-dispatch policy
// (per-recipient vs batch, sandbox), manual and test sends from the admin
// area, and the weekly digest built from recent articles.
package newsletter

import "errors"

var (
	// ErrNotConfigured indicates that no e-mail provider API key is set.
	ErrNotConfigured = errors.New("Email service not configured")

	// ErrSenderNotVerified indicates that the provider rejected the from address.
	ErrSenderNotVerified = errors.New("Sender email not verified")

	// ErrMissingContent indicates a manual send without subject or body.
	ErrMissingContent = errors.New("Subject and content are required")

	// ErrMissingRecipient indicates a test or debug send without a recipient.
	ErrMissingRecipient = errors.New("Recipient email is required")

	// ErrBatchFailed wraps the provider error of a failed batch call.
	ErrBatchFailed = errors.New("Failed to send newsletter batch")
)
