// Package metrics defines and registers the custom Prometheus metrics of the
// auth service. It is the single source of truth for metric names, labels and
// help strings.
//
// All metrics are registered with the default Prometheus registry at package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// ── Credential metrics ────────────────────────────────────────────────────────

// AuthOperationsTotal counts register/login/change-password/logout outcomes.
// Labels:
//   - operation: "register", "login", "update_password", "logout"
//   - result: "success", "duplicate", "invalid_credentials", "error"
var AuthOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of credential operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// PasswordHashDuration measures a single bcrypt hash or verify.
// Label:
//   - op: "hash" or "verify"
var PasswordHashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of password hashing and verification.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"op"},
)

// HashPoolQueueDepth tracks jobs waiting for a hashing worker.
var HashPoolQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "hash_pool_queue_depth",
		Help:      "Current number of password hashing jobs waiting for a worker.",
	},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionsIssuedTotal counts session tokens written to a cookie.
var SessionsIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_issued_total",
		Help:      "Total number of session tokens issued.",
	},
)

// SessionsRejectedTotal counts presented cookies that did not resolve to a session.
// Label:
//   - reason: "invalid" (forged, malformed, expired) or "revoked"
var SessionsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_rejected_total",
		Help:      "Total number of session cookies rejected, by reason.",
	},
	[]string{"reason"},
)
