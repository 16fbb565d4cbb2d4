package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/pitchbase/internal/api"
	"github.com/charlesng35/pitchbase/internal/app"
	iauth "github.com/charlesng35/pitchbase/internal/auth"
	sharedtestutil "github.com/charlesng35/pitchbase/internal/database/testutil"
	"github.com/charlesng35/pitchbase/internal/middleware"
	"github.com/charlesng35/pitchbase/internal/models"
)

// Static tokens accepted by every Env.
const (
	PetrToken = "petr_token"
	JohnToken = "john_token"
)

// StaticTokens maps PetrToken and JohnToken to their test identities.
func StaticTokens() map[string]iauth.StaticIdentity {
	return map[string]iauth.StaticIdentity{
		PetrToken: {Email: "petr@indiepitcher.com", UserID: "petr", Name: "Petr"},
		JohnToken: {Email: "john@indiepitcher.com", UserID: "john", Name: "John"},
	}
}

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T        *testing.T
	DB       *gorm.DB
	Router   *gin.Engine
	Events   *RecordingNotifier
	Verifier iauth.Verifier
}

// EnvOption customises NewEnv.
type EnvOption func(*envConfig)

type envConfig struct {
	cfg      *app.Config
	verifier iauth.Verifier
}

// WithConfig replaces the default router configuration.
func WithConfig(cfg *app.Config) EnvOption {
	return func(e *envConfig) {
		e.cfg = cfg
	}
}

// WithVerifier replaces the static token verifier.
func WithVerifier(v iauth.Verifier) EnvOption {
	return func(e *envConfig) {
		e.verifier = v
	}
}

// DefaultConfig returns the router configuration used by NewEnv.
func DefaultConfig() *app.Config {
	return &app.Config{
		Server: app.ServerConfig{
			CORS:      app.CORSConfig{AllowedOrigins: []string{"*"}},
			RateLimit: app.RateLimitConfig{Requests: 10000},
		},
		Auth: app.AuthConfig{
			Provider: app.AuthProviderStatic,
			Static:   app.StaticConfig{Tokens: StaticTokens()},
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true},
		},
	}
}

// NewEnv provisions a fresh handler test environment with migrations applied.
func NewEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	settings := envConfig{
		cfg:      DefaultConfig(),
		verifier: iauth.NewStaticVerifier(StaticTokens()),
	}
	for _, opt := range opts {
		opt(&settings)
	}

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate())
	events := &RecordingNotifier{}

	router, err := api.NewRouter(api.Dependencies{
		DB:        db,
		Verifier:  settings.verifier,
		Config:    settings.cfg,
		Notifier:  events,
		RateStore: middleware.NewMemoryRateStore(),
	})
	require.NoError(t, err)

	return &Env{
		T:        t,
		DB:       db,
		Router:   router,
		Events:   events,
		Verifier: settings.verifier,
	}
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return e.Do(req)
}

// Do serves a prepared request.
func (e *Env) Do(req *http.Request) *httptest.ResponseRecorder {
	e.T.Helper()
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// CreateProfile calls POST /profiles/ with token and returns the decoded body.
func (e *Env) CreateProfile(token string) map[string]any {
	e.T.Helper()
	w := e.Request(http.MethodPost, "/profiles/", nil, token)
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())
	return Decode[map[string]any](e.T, w)
}

// CreateOrganization calls POST /organizations/ and returns the new organization id.
func (e *Env) CreateOrganization(token, name string) string {
	e.T.Helper()
	w := e.Request(http.MethodPost, "/organizations/", map[string]string{"name": name}, token)
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())
	return Decode[map[string]any](e.T, w)["id"].(string)
}

// Decode unmarshals the JSON response body.
func Decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
	Code   string          `json:"code"`
}

// DetailString returns Detail when it is a plain message.
func (r ErrorResponse) DetailString() string {
	var s string
	_ = json.Unmarshal(r.Detail, &s)
	return s
}

// RecordingNotifier captures post-commit events synchronously.
type RecordingNotifier struct {
	mu                   sync.Mutex
	Created              []string
	Identified           []string
	Deleted              []string
	OrganizationsCreated []string
}

func (r *RecordingNotifier) ProfileCreated(_ context.Context, profile models.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Created = append(r.Created, profile.Email)
}

func (r *RecordingNotifier) ProfileIdentified(_ context.Context, profile models.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Identified = append(r.Identified, profile.Email)
}

func (r *RecordingNotifier) ProfileDeleted(_ context.Context, profileID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Deleted = append(r.Deleted, profileID)
}

func (r *RecordingNotifier) OrganizationCreated(_ context.Context, org models.Organization, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.OrganizationsCreated = append(r.OrganizationsCreated, org.ID)
}

// Snapshot returns copies of the recorded events.
func (r *RecordingNotifier) Snapshot() (created, identified, deleted []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.Created...),
		append([]string(nil), r.Identified...),
		append([]string(nil), r.Deleted...)
}
