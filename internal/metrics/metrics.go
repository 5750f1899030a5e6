// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conference",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "conference",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	RegistrationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "conference",
		Name:      "registrations_created_total",
		Help:      "Registrations created.",
	})

	// CheckIns counts successful check-ins by source (single, bulk, qr).
	CheckIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conference",
		Name:      "checkins_total",
		Help:      "Successful check-ins by source.",
	}, []string{"source"})

	BulkCheckInFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "conference",
		Name:      "bulk_checkin_failures_total",
		Help:      "Registration ids that failed during bulk check-in.",
	})

	CouponEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conference",
		Name:      "coupon_evaluations_total",
		Help:      "Coupon evaluations by outcome.",
	}, []string{"valid"})

	ScoresSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "conference",
		Name:      "scores_submitted_total",
		Help:      "Score entries submitted.",
	})

	LeaderboardCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conference",
		Name:      "leaderboard_cache_total",
		Help:      "Leaderboard cache lookups by result (hit, miss, error).",
	}, []string{"result"})

	PaymentVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conference",
		Name:      "payment_verifications_total",
		Help:      "Payment callback verifications by outcome.",
	}, []string{"outcome"})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conference",
		Name:      "notifications_total",
		Help:      "Worker notifications by message type and outcome.",
	}, []string{"type", "outcome"})
)
