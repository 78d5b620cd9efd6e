package entity

import (
	"regexp"
	"strings"
	"time"
)

// SubscriberStatus is the delivery state stored per e-mail address.
type SubscriberStatus string

const (
	// SubscriberStatusActive receives newsletter issues.
	SubscriberStatusActive SubscriberStatus = "active"
	// SubscriberStatusUnsubscribed is kept for history but never mailed.
	SubscriberStatusUnsubscribed SubscriberStatus = "unsubscribed"
)

// IsValid reports whether s is a known status.
func (s SubscriberStatus) IsValid() bool {
	switch s {
	case SubscriberStatusActive, SubscriberStatusUnsubscribed:
		return true
	}
	return false
}

// Subscriber is a newsletter recipient.
type Subscriber struct {
	ID        string
	Email     string
	Status    SubscriberStatus
	CreatedAt time.Time
}

// maxEmailLength follows the RFC 5321 forward-path limit.
const maxEmailLength = 254

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// NormalizeEmail lower-cases and trims an address so that uniqueness
// checks are not defeated by case or padding.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email looks like an address.
func ValidateEmail(email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if len(email) > maxEmailLength {
		return &ValidationError{Field: "email", Message: "email is too long"}
	}
	if !emailPattern.MatchString(email) {
		return &ValidationError{Field: "email", Message: "email is not a valid address"}
	}
	return nil
}
