package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier resolves identities locally by verifying HS256 JWTs signed
// with a shared secret. The subject claim carries the account id; optional
// name/avatar claims fill the public identity.
type TokenVerifier struct {
	secret []byte
}

// NewTokenVerifier builds a local JWT resolver.
func NewTokenVerifier(secret string) (*TokenVerifier, error) {
	if secret == "" {
		return nil, errors.New("identity: jwt secret must not be empty")
	}
	return &TokenVerifier{secret: []byte(secret)}, nil
}

type tokenClaims struct {
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	jwt.RegisteredClaims
}

// Resolve verifies the token signature and expiry and extracts the identity.
func (v *TokenVerifier) Resolve(_ context.Context, token string) (Identity, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrUnknownToken
	}
	if claims.Subject == "" {
		return Identity{}, ErrUnknownToken
	}

	name := claims.Name
	if name == "" {
		name = claims.Subject
	}
	var avatar *string
	if claims.AvatarURL != "" {
		avatar = &claims.AvatarURL
	}
	return Identity{ID: claims.Subject, DisplayName: name, AvatarURL: avatar}, nil
}
