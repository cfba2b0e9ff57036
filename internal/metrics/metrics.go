// Package metrics defines the Prometheus instruments exported by the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Workflow metrics
var (
	// FindingsCreatedTotal tracks findings created per organization.
	FindingsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "findings_created_total",
			Help: "Total number of findings created",
		},
		[]string{"organization_id"},
	)

	// TransitionsTotal tracks workflow transitions by target estado and outcome.
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finding_transitions_total",
			Help: "Total number of finding workflow transitions by outcome",
		},
		[]string{"organization_id", "target_estado", "outcome"},
	)

	// TransitionConflictsTotal tracks lost-update conflicts on estado writes.
	TransitionConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finding_transition_conflicts_total",
			Help: "Total number of compare-and-swap conflicts on finding transitions",
		},
		[]string{"organization_id"},
	)

	// ActionsAttachedTotal tracks actions attached by tipo.
	ActionsAttachedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finding_actions_attached_total",
			Help: "Total number of actions attached to findings by tipo",
		},
		[]string{"organization_id", "tipo"},
	)
)

// HTTP metrics
var (
	// HTTPRequestsTotal tracks HTTP requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// RateLimitedTotal tracks requests rejected by the rate limiter.
	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Total number of rate limited requests",
		},
		[]string{"organization_id"},
	)
)

// Storage metrics
var (
	// TxRollbacksTotal tracks rolled-back units of work.
	TxRollbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storage_tx_rollbacks_total",
			Help: "Total number of rolled back transactions",
		},
	)
)
