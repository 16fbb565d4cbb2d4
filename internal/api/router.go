package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/charlesng35/pitchbase/internal/app"
	iauth "github.com/charlesng35/pitchbase/internal/auth"
	"github.com/charlesng35/pitchbase/internal/handlers"
	"github.com/charlesng35/pitchbase/internal/middleware"
	"github.com/charlesng35/pitchbase/internal/monitoring"
	"github.com/charlesng35/pitchbase/internal/services"
)

const (
	defaultRateLimitRequests = 120
	defaultRateLimitWindow   = time.Minute
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	DB       *gorm.DB
	Verifier iauth.Verifier
	Config   *app.Config
	// Notifier receives post-commit events. Nil discards them.
	Notifier services.Notifier
	// RateStore backs the rate limiter. Nil uses an in-process store.
	RateStore middleware.RateStore
	// Health holds readiness probes. Nil reports every probe as up.
	Health *monitoring.HealthManager
}

// NewRouter builds the Gin engine, wires middleware and registers every route.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, errors.New("database handle must be provided")
	}
	if deps.Verifier == nil {
		return nil, errors.New("token verifier must be provided")
	}
	if deps.Config == nil {
		return nil, errors.New("config must be provided")
	}
	cfg := deps.Config

	ledger := services.NewMembershipLedger()
	guard := services.NewGuard(ledger)
	profileSvc, err := services.NewProfileService(deps.DB, ledger, deps.Notifier)
	if err != nil {
		return nil, err
	}
	orgSvc, err := services.NewOrganizationService(deps.DB, ledger, guard, deps.Notifier)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	// /profiles and /profiles/ are both first-class routes, not redirects.
	r.RedirectTrailingSlash = false
	r.HandleMethodNotAllowed = true

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders(middleware.WithDocsPaths("/docs")))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowedOrigins...))
	requests, window := rateLimit(cfg.Server.RateLimit)
	r.Use(middleware.RateLimit(deps.RateStore, requests, window))

	// Public routes
	registerPublicRoutes(r, cfg)
	registerHealthRoutes(r, cfg, handlers.NewHealthHandler(deps.Health))

	// Protected routes
	requireAuth := middleware.Auth(deps.Verifier)
	registerProfileRoutes(r, requireAuth, handlers.NewProfileHandler(profileSvc))
	registerOrganizationRoutes(r, requireAuth, handlers.NewOrganizationHandler(profileSvc, orgSvc))

	r.NoRoute(middleware.NotFoundHandler)
	r.NoMethod(middleware.MethodNotAllowedHandler)

	return r, nil
}

func registerPublicRoutes(r *gin.Engine, cfg *app.Config) {
	r.GET("/", handlers.Root())
	r.GET("/openapi.json", handlers.OpenAPI())
	r.GET("/docs", handlers.Docs())

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}
}

func rateLimit(cfg app.RateLimitConfig) (int, time.Duration) {
	requests, window := cfg.Requests, cfg.Window
	if requests <= 0 {
		requests = defaultRateLimitRequests
	}
	if window <= 0 {
		window = defaultRateLimitWindow
	}
	return requests, window
}

// both registers handler for path with and without a trailing slash.
func both(group *gin.RouterGroup, method, path string, chain ...gin.HandlerFunc) {
	group.Handle(method, path, chain...)
	group.Handle(method, path+"/", chain...)
}
