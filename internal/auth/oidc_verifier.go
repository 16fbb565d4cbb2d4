package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
)

// FirebaseIssuer returns the token issuer used by Firebase Authentication for project.
func FirebaseIssuer(project string) string {
	return "https://securetoken.google.com/" + strings.TrimSpace(project)
}

// OIDCConfig configures ID token verification against an OpenID Connect issuer.
type OIDCConfig struct {
	Issuer     string
	Audience   string
	HTTPClient *http.Client
	Timeout    time.Duration
}

type oidcClaims struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	UserID        string `json:"user_id"`
}

// OIDCVerifier validates ID tokens issued by an OpenID Connect provider such as Firebase.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier performs issuer discovery and returns a verifier bound to the audience.
func NewOIDCVerifier(ctx context.Context, cfg OIDCConfig) (*OIDCVerifier, error) {
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, errors.New("oidc verifier: issuer is required")
	}
	if strings.TrimSpace(cfg.Audience) == "" {
		return nil, errors.New("oidc verifier: audience is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.HTTPClient != nil {
		ctx = oidc.ClientContext(ctx, cfg.HTTPClient)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	discoveryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	provider, err := oidc.NewProvider(discoveryCtx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc verifier: discovery failed: %w", err)
	}

	return &OIDCVerifier{verifier: provider.Verifier(&oidc.Config{ClientID: cfg.Audience})}, nil
}

func newOIDCVerifier(issuer, audience string, keySet oidc.KeySet, opts ...func(*oidc.Config)) *OIDCVerifier {
	cfg := &oidc.Config{ClientID: audience}
	for _, opt := range opts {
		opt(cfg)
	}
	return &OIDCVerifier{verifier: oidc.NewVerifier(issuer, keySet, cfg)}
}

// Verify implements Verifier.
func (v *OIDCVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	idToken, err := v.verifier.Verify(ctx, token)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var claims oidcClaims
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, fmt.Errorf("%w: decode claims: %v", ErrInvalidToken, err)
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return Identity{}, fmt.Errorf("%w: email not verified", ErrInvalidToken)
	}

	userID := claims.UserID
	if userID == "" {
		userID = idToken.Subject
	}

	return finalizeIdentity(Identity{
		Email:     claims.Email,
		UserID:    userID,
		Name:      optionalString(claims.Name),
		AvatarURL: optionalString(claims.Picture),
	})
}
