package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for RelationshipOperations.
const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation"
	OutcomeConflict   = "conflict"
	OutcomeNotFound   = "not_found"
	OutcomeError      = "error"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amizades_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "amizades_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// RelationshipOperations counts service operations by name and outcome.
	RelationshipOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amizades_relationship_operations_total",
		Help: "Total relationship operations by operation and outcome",
	}, []string{"operation", "outcome"})

	// AcceptAttempts records how many transaction attempts an accept needed.
	AcceptAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "amizades_accept_transaction_attempts",
		Help:    "Transaction attempts per accepted friend request",
		Buckets: []float64{1, 2, 3, 5, 8},
	})

	// EventPublishFailures counts relationship events that could not be delivered.
	EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amizades_event_publish_failures_total",
		Help: "Total relationship events that failed to publish by sink",
	}, []string{"sink", "event_type"})

	// ProfileCacheLookups counts profile cache hits and misses.
	ProfileCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "amizades_profile_cache_lookups_total",
		Help: "Profile cache lookups by result",
	}, []string{"result"})
)

// RecordOperation increments the operation counter.
func RecordOperation(operation, outcome string) {
	RelationshipOperations.WithLabelValues(operation, outcome).Inc()
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
