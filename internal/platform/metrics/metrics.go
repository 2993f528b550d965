package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trustbridge_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	DealTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustbridge_deal_transitions_total",
			Help: "Total number of deal state transitions",
		},
		[]string{"action", "to_status"},
	)

	DealActionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustbridge_deal_actions_rejected_total",
			Help: "Total number of deal actions refused by the state machine",
		},
		[]string{"action", "reason"},
	)

	PaymentEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustbridge_payment_events_total",
			Help: "Total number of payment workflow events",
		},
		[]string{"event", "outcome"},
	)

	PaymentReconciliationGaps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trustbridge_payment_reconciliation_gaps_total",
			Help: "Payments captured by the processor that could not be recorded",
		},
	)

	ChatConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trustbridge_chat_connections",
			Help: "Number of live chat connections",
		},
	)

	ChatMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustbridge_chat_messages_total",
			Help: "Total number of chat messages received",
		},
		[]string{"result"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustbridge_events_published_total",
			Help: "Total number of domain events handed to the publisher",
		},
		[]string{"type", "outcome"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustbridge_rate_limited_requests_total",
			Help: "Total number of requests refused by a rate limiter",
		},
		[]string{"limiter", "route"},
	)
)
