// Package subscriber provides use cases for the newsletter mailing list:
// public sign-up and unsubscribe, and the admin list management operations.
package subscriber

import "errors"

var (
	// ErrAlreadySubscribed indicates the address is already on the active list.
	ErrAlreadySubscribed = errors.New("already subscribed")

	// ErrSubscriberNotFound indicates that the requested subscriber does not exist.
	ErrSubscriberNotFound = errors.New("subscriber not found")

	// ErrInvalidStatus indicates an unknown subscriber status value.
	ErrInvalidStatus = errors.New("invalid subscriber status")

	// ErrInvalidUnsubscribeToken indicates a missing, forged, or mismatched unsubscribe token.
	ErrInvalidUnsubscribeToken = errors.New("invalid unsubscribe token")
)
