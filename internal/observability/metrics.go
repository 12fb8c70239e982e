package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pulse_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// DatabaseQueryTimeouts counts queries cancelled by the per-query deadline.
	DatabaseQueryTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_database_query_timeouts_total",
		Help: "Total number of database queries that exceeded their deadline",
	}, []string{"operation", "table"})

	// SocialActions counts like/follow/comment/post mutations by outcome.
	SocialActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_social_actions_total",
		Help: "Total social graph and content mutations by action and outcome",
	}, []string{"action", "outcome"})

	// UploadBytes records the size of accepted uploads by kind.
	UploadBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pulse_upload_bytes",
		Help:    "Size of accepted uploads in bytes",
		Buckets: prometheus.ExponentialBuckets(16*1024, 2, 10),
	}, []string{"kind"})
)

// Outcome labels for SocialActions.
const (
	OutcomeCreated  = "created"
	OutcomeRemoved  = "removed"
	OutcomeConflict = "conflict"
	OutcomeNotFound = "not_found"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordSocialAction increments the SocialActions counter.
func RecordSocialAction(action, outcome string) {
	SocialActions.WithLabelValues(action, outcome).Inc()
}
