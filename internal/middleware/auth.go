package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iauth "github.com/charlesng35/pitchbase/internal/auth"
	apperrors "github.com/charlesng35/pitchbase/pkg/errors"
	"github.com/charlesng35/pitchbase/pkg/logger"
	"github.com/charlesng35/pitchbase/pkg/metrics"
	"github.com/charlesng35/pitchbase/pkg/response"
)

const (
	// CtxIdentityKey holds the verified auth.Identity on the gin context.
	CtxIdentityKey = "authIdentity"
)

// Auth enforces bearer token authentication using the supplied verifier. The verified
// identity is stored on the gin context and on the request context.
func Auth(verifier iauth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			metrics.AuthAttempts.WithLabelValues("missing").Inc()
			c.Header("WWW-Authenticate", "Bearer")
			response.Abort(c, apperrors.ErrMissingToken)
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			metrics.AuthAttempts.WithLabelValues("invalid").Inc()
			if !errors.Is(err, iauth.ErrInvalidToken) {
				logger.WithModule("auth").Warn("token verification error", zap.Error(err))
			}
			// Normalise all verification failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Abort(c, apperrors.ErrInvalidToken)
			return
		}

		metrics.AuthAttempts.WithLabelValues("success").Inc()
		c.Set(CtxIdentityKey, identity)
		c.Request = c.Request.WithContext(iauth.WithIdentity(c.Request.Context(), identity))

		c.Next()
	}
}

// IdentityFrom returns the identity stored by Auth.
func IdentityFrom(c *gin.Context) (iauth.Identity, bool) {
	value, ok := c.Get(CtxIdentityKey)
	if !ok {
		return iauth.Identity{}, false
	}
	identity, ok := value.(iauth.Identity)
	return identity, ok
}

func bearerToken(header string) (string, bool) {
	if len(header) < 8 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}
