package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charlesng35/pitchbase/internal/auth"
)

// Supported auth.provider values.
const (
	AuthProviderStatic = "static"
	AuthProviderJWT    = "jwt"
	AuthProviderOIDC   = "oidc"
)

var errNoStaticTokens = errors.New("config: auth.static.tokens must map at least one token to an email for the static provider")

func (c OIDCSettings) issuer() string {
	if issuer := strings.TrimSpace(c.Issuer); issuer != "" {
		return issuer
	}
	if project := strings.TrimSpace(c.FirebaseProject); project != "" {
		return auth.FirebaseIssuer(project)
	}
	return ""
}

func (c OIDCSettings) audience() string {
	if audience := strings.TrimSpace(c.Audience); audience != "" {
		return audience
	}
	return strings.TrimSpace(c.FirebaseProject)
}

// JWTVerifierConfig converts AuthConfig into the parameters expected by the JWT verifier.
func (c AuthConfig) JWTVerifierConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultTokenTTL
	}
	return auth.JWTConfig{
		Secret:   c.JWT.Secret,
		Issuer:   c.JWT.Issuer,
		Audience: c.JWT.Audience,
		TokenTTL: ttl,
	}
}

// OIDCVerifierConfig converts AuthConfig into OIDC verifier parameters. A Firebase project
// fills in the issuer and audience when they are not set explicitly.
func (c AuthConfig) OIDCVerifierConfig() auth.OIDCConfig {
	return auth.OIDCConfig{
		Issuer:   c.OIDC.issuer(),
		Audience: c.OIDC.audience(),
		Timeout:  c.OIDC.Timeout,
	}
}

// NewVerifier builds the bearer token verifier selected by Provider. The oidc provider
// performs issuer discovery and therefore needs network access.
func (c AuthConfig) NewVerifier(ctx context.Context) (auth.Verifier, error) {
	switch strings.ToLower(strings.TrimSpace(c.Provider)) {
	case "", AuthProviderStatic:
		verifier := auth.NewStaticVerifier(c.Static.Tokens)
		if verifier.Len() == 0 {
			return nil, errNoStaticTokens
		}
		return verifier, nil
	case AuthProviderJWT:
		return auth.NewJWTVerifier(c.JWTVerifierConfig())
	case AuthProviderOIDC:
		return auth.NewOIDCVerifier(ctx, c.OIDCVerifierConfig())
	default:
		return nil, fmt.Errorf("config: unsupported auth provider %q", c.Provider)
	}
}
