package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records store latency by store, operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reelsocial_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"store", "operation", "table"})

	// PostEngagementTotal counts successful engagement events (view, like, unlike).
	PostEngagementTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelsocial_post_engagement_total",
		Help: "Total number of post engagement events by kind",
	}, []string{"kind"})

	// PostsCreatedTotal counts created posts by post type.
	PostsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelsocial_posts_created_total",
		Help: "Total number of posts created by type",
	}, []string{"post_type"})

	// CatalogRequestLatency records movie catalog call latency by endpoint and outcome.
	CatalogRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reelsocial_catalog_request_latency_seconds",
		Help:    "Movie catalog request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "outcome"})
)

// Engagement kinds recorded in PostEngagementTotal.
const (
	EngagementView   = "view"
	EngagementLike   = "like"
	EngagementUnlike = "unlike"
)

// DatabaseMetrics records query latency for one store.
type DatabaseMetrics struct {
	store string
}

// NewDatabaseMetrics returns a DatabaseMetrics labelled with store ("postgres", "mongo").
func NewDatabaseMetrics(store string) *DatabaseMetrics {
	return &DatabaseMetrics{store: store}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(m.store, operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

// RecordEngagement increments the engagement counter for kind.
func RecordEngagement(kind string) {
	PostEngagementTotal.WithLabelValues(kind).Inc()
}

// ObserveCatalogRequest records one catalog call.
func ObserveCatalogRequest(endpoint string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	CatalogRequestLatency.WithLabelValues(endpoint, outcome).Observe(time.Since(start).Seconds())
}
