package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the registry module. A nil
// *Metrics is valid and records nothing, so unit tests can skip registration.
type Metrics struct {
	PostsCreated      prometheus.Counter
	CommentsCreated   prometheus.Counter
	ReactionsApplied  *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	OperationErrors   *prometheus.CounterVec
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
}

// New creates and registers all registry metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		PostsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "senfiltro_posts_created_total",
			Help: "Total number of posts created.",
		}),
		CommentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "senfiltro_comments_created_total",
			Help: "Total number of comments created.",
		}),
		ReactionsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "senfiltro_reactions_applied_total",
			Help: "Total number of reaction applications by requested value.",
		}, []string{"value"}),
		OperationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "senfiltro_operation_duration_seconds",
			Help:    "Duration of registry operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		OperationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "senfiltro_operation_errors_total",
			Help: "Registry operation failures by operation and error code.",
		}, []string{"op", "code"}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "senfiltro_post_cache_hits_total",
			Help: "Post read cache hits.",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "senfiltro_post_cache_misses_total",
			Help: "Post read cache misses.",
		}),
	}
}

func (m *Metrics) IncPostsCreated() {
	if m != nil {
		m.PostsCreated.Inc()
	}
}

func (m *Metrics) IncCommentsCreated() {
	if m != nil {
		m.CommentsCreated.Inc()
	}
}

func (m *Metrics) IncReactionsApplied(value string) {
	if m != nil {
		m.ReactionsApplied.WithLabelValues(value).Inc()
	}
}

func (m *Metrics) ObserveOperation(op string, seconds float64) {
	if m != nil {
		m.OperationDuration.WithLabelValues(op).Observe(seconds)
	}
}

func (m *Metrics) IncOperationErrors(op, code string) {
	if m != nil {
		m.OperationErrors.WithLabelValues(op, code).Inc()
	}
}

func (m *Metrics) IncCacheHits() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) IncCacheMisses() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}
