package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/pitchbase/pkg/metrics"
)

func TestStatusClass(t *testing.T) {
	cases := map[int]string{
		200: "2xx",
		204: "2xx",
		301: "3xx",
		404: "4xx",
		409: "4xx",
		503: "5xx",
		0:   "other",
		600: "other",
	}
	for code, want := range cases {
		require.Equal(t, want, statusClass(code), code)
	}
}

func TestMetricsLabelsRouteTemplateAndStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/metrics-test/:id", func(c *gin.Context) { c.Status(http.StatusConflict) })

	before := testutil.ToFloat64(metrics.HTTPResponses.WithLabelValues(http.MethodGet, "/metrics-test/:id", "409"))
	unmatchedBefore := testutil.ToFloat64(metrics.HTTPResponses.WithLabelValues(http.MethodGet, unmatchedRoute, "404"))

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics-test/"+id, nil))
		require.Equal(t, http.StatusConflict, w.Code)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/elsewhere", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	require.Equal(t, before+2, testutil.ToFloat64(metrics.HTTPResponses.WithLabelValues(http.MethodGet, "/metrics-test/:id", "409")))
	require.Equal(t, unmatchedBefore+1, testutil.ToFloat64(metrics.HTTPResponses.WithLabelValues(http.MethodGet, unmatchedRoute, "404")))
	require.GreaterOrEqual(t, testutil.CollectAndCount(metrics.APILatency, "pitchbase_api_latency_seconds"), 2)
}
