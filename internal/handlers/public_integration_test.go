package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/pitchbase/internal/handlers/testutil"
)

func TestRootGreeting(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"Hello":"World"}`, w.Body.String())
}

func TestHealthEndpoints(t *testing.T) {
	env := testutil.NewEnv(t)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		w := env.Request(http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		body := testutil.Decode[map[string]any](t, w)
		require.Equal(t, true, body["success"], path)
	}
}

func TestHealthDisabled(t *testing.T) {
	cfg := testutil.DefaultConfig()
	cfg.Monitoring.Health.Enabled = false
	env := testutil.NewEnv(t, testutil.WithConfig(cfg))

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		w := env.Request(http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusNotFound, w.Code, path)

		body := testutil.Decode[map[string]any](t, w)
		require.Equal(t, "NOT_FOUND", body["code"], path)
		require.Equal(t, "route "+path+" not found", body["detail"], path)
		require.NotContains(t, body, "success", path)
		require.NotContains(t, body, "status", path)
	}
}

func TestDocsAndMetricsArePublic(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/openapi.json", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	doc := testutil.Decode[map[string]any](t, w)
	require.Contains(t, doc["paths"], "/organizations/{id}")

	w = env.Request(http.MethodGet, "/docs", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))

	env.Request(http.MethodGet, "/", nil, "")
	w = env.Request(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "pitchbase_api_latency_seconds")
	require.Contains(t, w.Body.String(), `pitchbase_api_latency_seconds_count{class="2xx",method="GET",path="/"}`)
	require.Contains(t, w.Body.String(), "pitchbase_http_responses_total")
}

func TestUnknownRoutes(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/nope", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.Request(http.MethodPut, "/profiles/", nil, testutil.PetrToken)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
