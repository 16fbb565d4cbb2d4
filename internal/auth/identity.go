package auth

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidToken is returned by verifiers when a credential is rejected.
var ErrInvalidToken = errors.New("auth: invalid token")

// Identity is the verified subject behind a bearer token.
type Identity struct {
	Email     string
	UserID    string
	Name      *string
	AvatarURL *string
}

// Verifier resolves a raw bearer token into a verified Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, token string) (Identity, error)

// Verify implements Verifier.
func (f VerifierFunc) Verify(ctx context.Context, token string) (Identity, error) {
	return f(ctx, token)
}

type identityKey struct{}

// WithIdentity stores the verified identity on ctx.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func finalizeIdentity(identity Identity) (Identity, error) {
	identity.Email = strings.TrimSpace(identity.Email)
	if identity.Email == "" {
		return Identity{}, errors.Join(ErrInvalidToken, errors.New("auth: token has no email claim"))
	}
	return identity, nil
}
