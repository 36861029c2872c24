// Package metrics defines and registers all custom Prometheus metrics for the
// contest service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package init
// via promauto; HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "contests"

// ── Payment metrics ───────────────────────────────────────────────────────────

// PaymentConfirmationsTotal counts confirm calls by outcome.
// Label:
//   - result: "recorded" (new payment), "duplicate" (already recorded),
//     "cached" (served from the confirmation cache), "incomplete", "error"
var PaymentConfirmationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_confirmations_total",
		Help:      "Total number of payment confirmations, by outcome.",
	},
	[]string{"result"},
)

// CheckoutSessionsTotal counts checkout session creation attempts.
// Label:
//   - result: "created" or "error"
var CheckoutSessionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_sessions_total",
		Help:      "Total number of checkout sessions requested from the payment provider.",
	},
	[]string{"result"},
)

// CounterUpdateFailuresTotal counts follow-up counter increments that failed
// after the primary write succeeded.
// Label:
//   - counter: e.g. "participant_count", "contests_participated", "contests_won"
var CounterUpdateFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "counter_update_failures_total",
		Help:      "Total number of best-effort counter increments that failed.",
	},
	[]string{"counter"},
)

// ProviderCallDuration measures payment provider round-trips.
// Label:
//   - operation: "create_session" or "retrieve_session"
var ProviderCallDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "payment_provider_call_duration_seconds",
		Help:      "Duration of calls to the payment provider.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"operation"},
)

// ── Contest metrics ───────────────────────────────────────────────────────────

// ContestDecisionsTotal counts admin moderation decisions.
// Label:
//   - outcome: "approved" or "rejected"
var ContestDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contest_decisions_total",
		Help:      "Total number of contest moderation decisions, by outcome.",
	},
	[]string{"outcome"},
)

// ContestsCreatedTotal counts newly created contests.
// Label:
//   - contest_type: free-form type chosen by the creator
var ContestsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contests_created_total",
		Help:      "Total number of contests created, by contest type.",
	},
	[]string{"contest_type"},
)

// WinnerDeclarationsTotal counts declaration attempts.
// Label:
//   - result: "declared", "already_declared" or "grading_failed"
var WinnerDeclarationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "winner_declarations_total",
		Help:      "Total number of winner declaration attempts, by result.",
	},
	[]string{"result"},
)

// SubmissionsTotal counts accepted submissions.
// Label:
//   - result: "created" or "updated"
var SubmissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Total number of accepted task submissions.",
	},
	[]string{"result"},
)
