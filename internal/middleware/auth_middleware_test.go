package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/charlesng35/pitchbase/internal/auth"
)

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	verifier := iauth.NewStaticVerifier(map[string]iauth.StaticIdentity{
		"petr_token": {Email: "petr@indiepitcher.com"},
	})
	r.GET("/secure", Auth(verifier), func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		fromCtx, ctxOK := iauth.IdentityFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"email":     identity.Email,
			"ok":        ok && ctxOK,
			"ctx_email": fromCtx.Email,
		})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := newAuthRouter()

	// Valid token -> downstream handler executes
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer petr_token")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, "petr@indiepitcher.com", payload["email"])
	require.Equal(t, "petr@indiepitcher.com", payload["ctx_email"])
	require.Equal(t, true, payload["ok"])
}

func TestAuthMiddlewareRejections(t *testing.T) {
	r := newAuthRouter()

	cases := []struct {
		name   string
		header string
		detail string
	}{
		{"missing header", "", "Missing token"},
		{"wrong scheme", "Basic abc", "Missing token"},
		{"empty bearer", "Bearer    ", "Missing token"},
		{"unknown token", "Bearer nope", "Invalid token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusUnauthorized, w.Code)
			require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

			var payload map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
			require.Equal(t, tc.detail, payload["detail"])
		})
	}
}

func TestBearerTokenIsCaseInsensitive(t *testing.T) {
	token, ok := bearerToken("bearer john_token")
	require.True(t, ok)
	require.Equal(t, "john_token", token)
}
