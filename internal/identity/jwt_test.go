package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestTokenVerifier_Resolve(t *testing.T) {
	verifier, err := NewTokenVerifier("sekret")
	require.NoError(t, err)

	token := signToken(t, "sekret", tokenClaims{
		Name:      "Dana Driver",
		AvatarURL: "https://cdn.example.com/dana.png",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	id, err := verifier.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", id.ID)
	assert.Equal(t, "Dana Driver", id.DisplayName)
	require.NotNil(t, id.AvatarURL)
	assert.Equal(t, "https://cdn.example.com/dana.png", *id.AvatarURL)
}

func TestTokenVerifier_DisplayNameFallsBackToSubject(t *testing.T) {
	verifier, err := NewTokenVerifier("sekret")
	require.NoError(t, err)

	token := signToken(t, "sekret", jwt.RegisteredClaims{Subject: "user-456"})

	id, err := verifier.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-456", id.DisplayName)
	assert.Nil(t, id.AvatarURL)
}

func TestTokenVerifier_Rejects(t *testing.T) {
	verifier, err := NewTokenVerifier("sekret")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"wrong secret", signToken(t, "other", jwt.RegisteredClaims{Subject: "user-1"})},
		{"expired", signToken(t, "sekret", jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		})},
		{"missing subject", signToken(t, "sekret", jwt.RegisteredClaims{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Resolve(context.Background(), tt.token)
			assert.ErrorIs(t, err, ErrUnknownToken)
		})
	}
}

func TestNewTokenVerifier_EmptySecret(t *testing.T) {
	_, err := NewTokenVerifier("")
	assert.Error(t, err)
}
