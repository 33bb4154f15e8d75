package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vitrine"

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)
)

// Subscription status sweep metrics
var (
	SweepRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_runs_total",
			Help:      "Total number of subscription sweep runs",
		},
		[]string{"status"},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Subscription sweep execution time distribution",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 10, 30},
		},
	)

	SubscriptionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriptions_expired_total",
			Help:      "Total number of lapsed subscriptions moved to inactive by the sweep",
		},
	)
)

// Business metrics
var (
	ContactsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contacts_total",
			Help:      "Contact submissions by outcome",
		},
		[]string{"outcome"}, // accepted, quota_exceeded, inactive
	)

	PhotosTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "portfolio_photos_total",
			Help:      "Portfolio photo uploads by outcome",
		},
		[]string{"outcome"},
	)

	ReviewsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_submitted_total",
			Help:      "Total number of reviews submitted",
		},
	)

	PaymentEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_events_total",
			Help:      "Payment webhook events by type and outcome",
		},
		[]string{"type", "result"},
	)

	CheckoutSessions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_sessions_total",
			Help:      "Checkout sessions requested by plan",
		},
		[]string{"plan"},
	)

	PlanCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_cache_total",
			Help:      "Plan catalog cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)
)
