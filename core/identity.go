package core

import (
	"context"
	"errors"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the verified caller as reported by the identity provider.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// IdentityVerifier turns a bearer token into the caller's Identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}
