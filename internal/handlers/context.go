package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/pitchbase/internal/auth"
	"github.com/charlesng35/pitchbase/internal/middleware"
	appErrors "github.com/charlesng35/pitchbase/pkg/errors"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentIdentity returns the identity stored by the auth middleware.
func currentIdentity(c *gin.Context) (iauth.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok || strings.TrimSpace(identity.Email) == "" {
		return iauth.Identity{}, appErrors.ErrUnauthorized
	}
	return identity, nil
}

var sensitiveHeaders = map[string]struct{}{
	"authorization": {},
	"cookie":        {},
}

// signupAttribution captures the request headers, minus credentials, and the client address.
func signupAttribution(c *gin.Context) map[string]string {
	out := make(map[string]string, len(c.Request.Header)+1)
	for key, values := range c.Request.Header {
		name := strings.ToLower(key)
		if _, skip := sensitiveHeaders[name]; skip {
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	if ip := c.ClientIP(); ip != "" {
		out["client_ip"] = ip
	}
	return out
}
