// Package metrics defines and registers all custom Prometheus metrics for the
// marketplace API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Collectors register with the default Prometheus registry on package init
// through promauto; /metrics serves that registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Lifecycle metrics ─────────────────────────────────────────────────────────

// QuoteTransitionsTotal counts quote lifecycle attempts.
// Labels:
//   - transition: "accept" or "reject"
//   - result: "ok", "conflict", "not_found", "forbidden" or "error"
var QuoteTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quote_transitions_total",
		Help:      "Total number of quote accept/reject attempts, by outcome.",
	},
	[]string{"transition", "result"},
)

// QuotesSubmittedTotal counts quotes created by sole traders.
var QuotesSubmittedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_submitted_total",
		Help:      "Total number of quotes submitted.",
	},
)

// ListingsCreatedTotal counts new listings.
// Label:
//   - service: the service required by the listing
var ListingsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_created_total",
		Help:      "Total number of listings created, by service required.",
	},
	[]string{"service"},
)

// RatingsSubmittedTotal counts rating submissions.
// Label:
//   - result: "ok" or "rejected"
var RatingsSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ratings_submitted_total",
		Help:      "Total number of rating submissions, by outcome.",
	},
	[]string{"result"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// AuthFailuresTotal counts rejected credentials. The label is internal only;
// callers always see the same generic response.
// Label:
//   - reason: "missing", "malformed", "expired", "revoked", "unknown_user"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of session credentials rejected, by internal reason.",
	},
	[]string{"reason"},
)

// ── Activity metrics ──────────────────────────────────────────────────────────

// ActivityQueueDepth tracks entries waiting in each activity worker channel.
// Label:
//   - worker_id: numeric worker index
var ActivityQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activity_queue_depth",
		Help:      "Current number of activity entries pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// ActivityDroppedTotal counts entries dropped because a worker channel was full.
var ActivityDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_dropped_total",
		Help:      "Total number of activity entries dropped on a full queue.",
	},
)

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestDuration measures request latency.
// Labels:
//   - method, route: request method and registered route pattern
//   - code: response status code
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "code"},
)
