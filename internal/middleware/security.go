package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// APIContentSecurityPolicy allows nothing to load from JSON responses; the docs page only
// needs same-origin resources.
const (
	APIContentSecurityPolicy  = "default-src 'none'; frame-ancestors 'none'"
	DocsContentSecurityPolicy = "default-src 'self'; frame-ancestors 'none'"
)

const defaultHSTSMaxAge = 365 * 24 * time.Hour

type securityConfig struct {
	hstsMaxAge time.Duration
	docsPaths  map[string]struct{}
}

// SecurityOption customises SecurityHeaders.
type SecurityOption func(*securityConfig)

// WithHSTSMaxAge sets the Strict-Transport-Security max-age. Zero disables the header.
func WithHSTSMaxAge(maxAge time.Duration) SecurityOption {
	return func(cfg *securityConfig) {
		cfg.hstsMaxAge = maxAge
	}
}

// WithDocsPaths relaxes the content security policy for the listed HTML paths.
func WithDocsPaths(paths ...string) SecurityOption {
	return func(cfg *securityConfig) {
		for _, path := range paths {
			cfg.docsPaths[path] = struct{}{}
		}
	}
}

// SecurityHeaders sets hardening headers on every response. Responses to requests that
// carry credentials are marked non-cacheable because they contain profile data.
func SecurityHeaders(opts ...SecurityOption) gin.HandlerFunc {
	cfg := &securityConfig{
		hstsMaxAge: defaultHSTSMaxAge,
		docsPaths:  map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var hsts string
	if cfg.hstsMaxAge > 0 {
		hsts = "max-age=" + strconv.FormatInt(int64(cfg.hstsMaxAge/time.Second), 10) + "; includeSubDomains"
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")
		if hsts != "" {
			h.Set("Strict-Transport-Security", hsts)
		}

		csp := APIContentSecurityPolicy
		if _, ok := cfg.docsPaths[c.Request.URL.Path]; ok {
			csp = DocsContentSecurityPolicy
		}
		h.Set("Content-Security-Policy", csp)

		if c.GetHeader("Authorization") != "" {
			h.Set("Cache-Control", "no-store")
		}
		c.Next()
	}
}
