package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	iss, err := NewTokenIssuer(testSecret)
	require.NoError(t, err)
	return iss
}

func TestNewTokenIssuer_ShortSecret(t *testing.T) {
	_, err := NewTokenIssuer("too-short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	iss := newIssuer(t)

	tok, err := iss.Issue("admin", RoleAdmin, PurposeSession, SessionTTL)
	require.NoError(t, err)

	claims, err := iss.Verify(tok, PurposeSession)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.WithinDuration(t, time.Now().Add(SessionTTL), claims.ExpiresAt, 5*time.Second)
}

func TestTokenIssuer_Verify_Rejects(t *testing.T) {
	iss := newIssuer(t)
	session, err := iss.Issue("admin", RoleAdmin, PurposeSession, SessionTTL)
	require.NoError(t, err)

	expired, err := iss.WithClock(func() time.Time { return time.Now().Add(-48 * time.Hour) }).
		Issue("admin", RoleAdmin, PurposeSession, SessionTTL)
	require.NoError(t, err)

	other, err := NewTokenIssuer(strings.Repeat("z", 32))
	require.NoError(t, err)
	foreign, err := other.Issue("admin", RoleAdmin, PurposeSession, SessionTTL)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "admin", "role": "admin", "purpose": PurposeSession,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		purpose string
	}{
		{"plain marker value", "true", PurposeSession},
		{"empty", "", PurposeSession},
		{"expired", expired, PurposeSession},
		{"wrong secret", foreign, PurposeSession},
		{"alg none", none, PurposeSession},
		{"wrong purpose", session, PurposeUnsubscribe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := iss.Verify(tt.token, tt.purpose)
			assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)
		})
	}
}

func TestTokenIssuer_Unsubscribe(t *testing.T) {
	iss := newIssuer(t)

	tok, err := iss.IssueUnsubscribe("reader@example.com")
	require.NoError(t, err)

	email, err := iss.VerifyUnsubscribe(tok)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", email)
}
