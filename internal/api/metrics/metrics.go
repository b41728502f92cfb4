// Package metrics defines and registers all custom Prometheus metrics for the
// portal. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Authentication metrics ───────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - outcome: "success", "invalid_credentials" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// LoginDuration measures how long a login takes, hash comparison included.
var LoginDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "login_duration_seconds",
		Help:      "Duration of login requests from form decode to session issue.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// ── Session metrics ──────────────────────────────────────────────────────────

// SessionsStartedTotal counts sessions issued after a successful login.
var SessionsStartedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_started_total",
		Help:      "Total number of sessions started.",
	},
)

// SessionsEndedTotal counts sessions ended by an explicit logout.
var SessionsEndedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_ended_total",
		Help:      "Total number of sessions ended by logout.",
	},
)

// ── Authorization metrics ────────────────────────────────────────────────────

// GuardDenialsTotal counts requests rejected by the access guard.
// Labels:
//   - level: the required access level ("authenticated", "admin")
//   - reason: "unauthenticated" or "forbidden"
var GuardDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_denials_total",
		Help:      "Total number of requests denied by the access guard.",
	},
	[]string{"level", "reason"},
)

// ── Provisioning metrics ─────────────────────────────────────────────────────

// UsersProvisionedTotal counts accounts created through registration or bootstrap.
// Labels:
//   - role: "admin" or "techniker"
//   - source: "register" or "bootstrap"
var UsersProvisionedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_provisioned_total",
		Help:      "Total number of user accounts created, by role and source.",
	},
	[]string{"role", "source"},
)

// ExportsTotal counts export downloads.
// Label:
//   - outcome: "success" or "error"
var ExportsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Total number of project exports, by outcome.",
	},
	[]string{"outcome"},
)

// ── HTTP metrics ─────────────────────────────────────────────────────────────

// HTTPRequestDuration measures request latency per route.
// Labels:
//   - method: HTTP method
//   - route: the registered route pattern, not the raw path
//   - status: response status code
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)
