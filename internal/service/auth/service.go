// Package auth holds the framework-agnostic authentication logic: credential
// checks for the single admin account and the signed tokens handed to
// browsers, API clients and newsletter recipients.
package auth

import (
	"context"
)

// Credentials represents authentication credentials.
type Credentials struct {
	Username string
	Password string
}

// CredentialRequirements defines password policy requirements.
type CredentialRequirements struct {
	MinPasswordLength int
	WeakPasswords     []string
}

// AuthProvider defines the interface for authentication providers.
type AuthProvider interface {
	// ValidateCredentials validates user credentials.
	ValidateCredentials(ctx context.Context, creds Credentials) error

	// GetRequirements returns the credential requirements for this provider.
	GetRequirements() CredentialRequirements

	// Name returns the name of this provider.
	Name() string
}

// AuthService handles authentication business logic.
// It pairs a credential provider with the token issuer so that a successful
// login always results in a signed session.
type AuthService struct {
	provider AuthProvider
	tokens   *TokenIssuer
}

// NewAuthService creates a new authentication service.
func NewAuthService(provider AuthProvider, tokens *TokenIssuer) *AuthService {
	return &AuthService{provider: provider, tokens: tokens}
}

// ValidateCredentials validates user credentials via the configured provider.
func (s *AuthService) ValidateCredentials(ctx context.Context, creds Credentials) error {
	return s.provider.ValidateCredentials(ctx, creds)
}

// Login validates creds and returns a session token for the admin cookie.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (string, error) {
	if err := s.provider.ValidateCredentials(ctx, creds); err != nil {
		return "", err
	}
	return s.tokens.Issue(creds.Username, RoleAdmin, PurposeSession, SessionTTL)
}

// Tokens returns the issuer used to sign and verify tokens.
func (s *AuthService) Tokens() *TokenIssuer {
	return s.tokens
}

// GetProvider returns the current authentication provider.
func (s *AuthService) GetProvider() AuthProvider {
	return s.provider
}
