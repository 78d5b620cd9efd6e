// Package auth gates the admin area: session cookies for the browser pages,
// bearer tokens for API clients and the shared secret for the cron trigger.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	authservice "byte-highlight/internal/service/auth"
)

// ErrInvalidCredentials is returned for any username/password mismatch.
var ErrInvalidCredentials = errors.New("Invalid username or password")

// AdminProvider validates the single configured admin account.
type AdminProvider struct {
	user string
	pass string
}

// NewAdminProvider creates a provider for the configured pair. Validate the
// pair with ValidateAdminCredentials at startup.
func NewAdminProvider(user, pass string) *AdminProvider {
	return &AdminProvider{user: user, pass: pass}
}

// ValidateCredentials compares both fields in constant time.
func (p *AdminProvider) ValidateCredentials(_ context.Context, creds authservice.Credentials) error {
	if creds.Username == "" || creds.Password == "" || p.user == "" {
		return ErrInvalidCredentials
	}
	userMatch := subtle.ConstantTimeCompare([]byte(creds.Username), []byte(p.user)) == 1
	passMatch := subtle.ConstantTimeCompare([]byte(creds.Password), []byte(p.pass)) == 1
	if !userMatch || !passMatch {
		return ErrInvalidCredentials
	}
	return nil
}

// GetRequirements returns the password policy enforced at startup.
func (p *AdminProvider) GetRequirements() authservice.CredentialRequirements {
	return authservice.CredentialRequirements{
		MinPasswordLength: minPasswordLength,
		WeakPasswords:     weakPasswordList,
	}
}

func (p *AdminProvider) Name() string { return "admin" }
