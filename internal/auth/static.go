package auth

import (
	"context"
	"strings"
)

// StaticIdentity is the configuration form of a fixed token mapping.
type StaticIdentity struct {
	Email     string `mapstructure:"email"`
	UserID    string `mapstructure:"user_id"`
	Name      string `mapstructure:"name"`
	AvatarURL string `mapstructure:"avatar_url"`
}

// StaticVerifier accepts a fixed set of tokens. It backs local development and tests.
type StaticVerifier struct {
	tokens map[string]Identity
}

// NewStaticVerifier builds a verifier from token mappings. Entries without an email are
// skipped; an empty map accepts no tokens.
func NewStaticVerifier(tokens map[string]StaticIdentity) *StaticVerifier {
	mapped := make(map[string]Identity, len(tokens))
	for token, entry := range tokens {
		token = strings.TrimSpace(token)
		if token == "" || strings.TrimSpace(entry.Email) == "" {
			continue
		}
		userID := entry.UserID
		if userID == "" {
			userID = entry.Email
		}
		mapped[token] = Identity{
			Email:     strings.TrimSpace(entry.Email),
			UserID:    userID,
			Name:      optionalString(entry.Name),
			AvatarURL: optionalString(entry.AvatarURL),
		}
	}
	return &StaticVerifier{tokens: mapped}
}

// Len reports how many tokens the verifier accepts.
func (v *StaticVerifier) Len() int {
	return len(v.tokens)
}

// Verify implements Verifier.
func (v *StaticVerifier) Verify(_ context.Context, token string) (Identity, error) {
	identity, ok := v.tokens[token]
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	return identity, nil
}
