package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role this service issues.
const RoleAdmin = "admin"

// Token purposes. A token is only accepted for the purpose it was issued for,
// so an unsubscribe link can never be replayed as an admin session.
const (
	PurposeSession     = "session"
	PurposeAPI         = "api"
	PurposeUnsubscribe = "unsubscribe"
)

const (
	// SessionTTL matches the admin-auth cookie Max-Age.
	SessionTTL = 24 * time.Hour
	// APITokenTTL is the lifetime of tokens issued by POST /auth/token.
	APITokenTTL = 1 * time.Hour
	// UnsubscribeTTL keeps links in archived newsletters usable for a year.
	UnsubscribeTTL = 365 * 24 * time.Hour
)

// MinSecretLength is the minimum accepted HS256 secret length.
const MinSecretLength = 32

// ErrInvalidToken is returned for malformed, expired, or mis-purposed tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the verified content of a token.
type Claims struct {
	Subject   string
	Role      string
	Purpose   string
	ExpiresAt time.Time
}

type tokenClaims struct {
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 tokens.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewTokenIssuer creates an issuer for secret.
// Returns an error when the secret is shorter than MinSecretLength.
func NewTokenIssuer(secret string) (*TokenIssuer, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters", MinSecretLength)
	}
	return &TokenIssuer{secret: []byte(secret), now: time.Now}, nil
}

// WithClock returns a copy of the issuer that reads time from now.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	cp := *t
	cp.now = now
	return &cp
}

// Issue signs a token for subject valid for ttl.
func (t *TokenIssuer) Issue(subject, role, purpose string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := tokenClaims{
		Role:    role,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry and purpose of token.
func (t *TokenIssuer) Verify(token, purpose string) (*Claims, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (interface{}, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != purpose || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &Claims{
		Subject:   claims.Subject,
		Role:      claims.Role,
		Purpose:   claims.Purpose,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// IssueUnsubscribe signs the token embedded in newsletter unsubscribe links.
func (t *TokenIssuer) IssueUnsubscribe(email string) (string, error) {
	return t.Issue(email, "", PurposeUnsubscribe, UnsubscribeTTL)
}

// VerifyUnsubscribe returns the address an unsubscribe token was issued for.
func (t *TokenIssuer) VerifyUnsubscribe(token string) (string, error) {
	c, err := t.Verify(token, PurposeUnsubscribe)
	if err != nil {
		return "", err
	}
	return c.Subject, nil
}
