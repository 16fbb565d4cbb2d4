package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records bearer token verifications by result (success|missing|invalid).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchbase_auth_attempts_total",
			Help: "Total number of bearer token verifications",
		},
		[]string{"result"},
	)

	// AuthorizationDecisions counts organization access checks by outcome (allow|deny).
	AuthorizationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchbase_authorization_decisions_total",
			Help: "Total number of organization authorization decisions",
		},
		[]string{"decision"},
	)

	// ProfilesCreated counts profiles created on first sign-in.
	ProfilesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pitchbase_profiles_created_total",
			Help: "Number of profiles created",
		},
	)

	// NotificationOutcomes tracks side-effect deliveries by kind (welcome|identify|track) and result.
	NotificationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchbase_notification_outcomes_total",
			Help: "Outcome of welcome email and analytics deliveries",
		},
		[]string{"kind", "result"},
	)

	// OrganizationsReconciled counts organizations removed by the maintenance reconciler.
	OrganizationsReconciled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pitchbase_organizations_reconciled_total",
			Help: "Organizations deleted because no admin remained",
		},
	)

	// APILatency measures HTTP request latencies by route and status class (2xx, 4xx, ...).
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pitchbase_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "class"},
	)

	// HTTPResponses counts responses by route and exact status code.
	HTTPResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchbase_http_responses_total",
			Help: "HTTP responses by route and status code",
		},
		[]string{"method", "path", "status"},
	)
)
