package identity

import (
	"context"
	"errors"
)

// ErrUnknownToken is returned when a token does not resolve to any account.
var ErrUnknownToken = errors.New("identity: unknown token")

// Identity is the verified actor behind a request.
type Identity struct {
	ID          string
	DisplayName string
	AvatarURL   *string
}

// Resolver turns a bearer token into a verified identity.
type Resolver interface {
	Resolve(ctx context.Context, token string) (Identity, error)
}
