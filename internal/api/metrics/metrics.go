// Package metrics defines the custom Prometheus metrics of the OrderFlow
// service. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "orderflow"

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrdersCreatedTotal counts created orders.
// Label:
//   - department: "fish" or "pork"
var OrdersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of orders created, by department.",
	},
	[]string{"department"},
)

// OrderTransitionsTotal counts lifecycle moves.
// Labels:
//   - from, to: order statuses (e.g. "new" → "in process")
var OrderTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_transitions_total",
		Help:      "Total number of order status transitions.",
	},
	[]string{"from", "to"},
)

var OrdersDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_deleted_total",
		Help:      "Total number of deleted orders.",
	},
)

// OrderErrorsTotal counts failed order operations.
// Labels:
//   - operation: "list", "get", "create", "update", "advance", "delete"
//   - reason: "not_found", "forbidden", "invalid", "persistence", "internal"
var OrderErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_errors_total",
		Help:      "Total number of failed order operations.",
	},
	[]string{"operation", "reason"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// SignInTotal counts sign-in attempts.
// Label:
//   - result: "success" or "failure"
var SignInTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_in_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)
