package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAuthProvider is a mock implementation of AuthProvider for testing
type mockAuthProvider struct {
	name                   string
	validateCredentialsErr error
	requirements           CredentialRequirements
}

func (m *mockAuthProvider) ValidateCredentials(ctx context.Context, creds Credentials) error {
	return m.validateCredentialsErr
}

func (m *mockAuthProvider) GetRequirements() CredentialRequirements {
	return m.requirements
}

func (m *mockAuthProvider) Name() string {
	return m.name
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name        string
		providerErr error
		expectToken bool
	}{
		{name: "valid credentials", providerErr: nil, expectToken: true},
		{name: "invalid credentials", providerErr: errors.New("invalid credentials"), expectToken: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iss := newIssuer(t)
			svc := NewAuthService(&mockAuthProvider{name: "mock", validateCredentialsErr: tt.providerErr}, iss)

			tok, err := svc.Login(context.Background(), Credentials{Username: "admin", Password: "pw"})
			if !tt.expectToken {
				require.Error(t, err)
				assert.Empty(t, tok)
				return
			}
			require.NoError(t, err)
			claims, err := iss.Verify(tok, PurposeSession)
			require.NoError(t, err)
			assert.Equal(t, "admin", claims.Subject)
			assert.Equal(t, RoleAdmin, claims.Role)
		})
	}
}

func TestAuthService_Accessors(t *testing.T) {
	provider := &mockAuthProvider{name: "mock"}
	iss := newIssuer(t)
	svc := NewAuthService(provider, iss)

	assert.Same(t, iss, svc.Tokens())
	assert.Equal(t, "mock", svc.GetProvider().Name())
	assert.NoError(t, svc.ValidateCredentials(context.Background(), Credentials{}))
}
