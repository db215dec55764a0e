// Package metrics exposes Prometheus counters for scoring and survivor runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns every collector registered for the service
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	picksDiscarded       prometheus.Counter
	picksPending         prometheus.Counter
	weeklyScoresWritten  prometheus.Counter
	standingsWritten     prometheus.Counter
	missingGameWarnings  prometheus.Counter
	confidenceFlags      prometheus.Counter
	storeFailures        *prometheus.CounterVec
	eliminations         *prometheus.CounterVec
	survivorFindings     *prometheus.CounterVec
	recomputeDuration    *prometheus.HistogramVec
	cacheLookups         *prometheus.CounterVec
	httpRequests         *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	normalizationRejects *prometheus.CounterVec
}

var registry = prometheus.NewRegistry()

var globalManager = NewManager(WithPrometheusRegistry(registry))

// Option applies a configuration option to the Manager
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom buckets for duration histograms
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithPrometheusRegistry sets the registerer collectors are added to
func WithPrometheusRegistry(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// NewManager creates and registers the collectors
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "nerdfootball",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.picksDiscarded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "scoring",
		Name:      "picks_discarded_total",
		Help:      "Malformed confidence picks excluded from scoring",
	})
	m.picksPending = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "scoring",
		Name:      "picks_pending_total",
		Help:      "Confidence picks left unscored because the game was missing or not final",
	})
	m.weeklyScoresWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "scoring",
		Name:      "weekly_scores_written_total",
		Help:      "Weekly score records replaced in the store",
	})
	m.standingsWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "scoring",
		Name:      "season_standings_written_total",
		Help:      "Season standing rows replaced in the store",
	})
	m.missingGameWarnings = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "scoring",
		Name:      "missing_game_warnings_total",
		Help:      "Picks that still reference an absent game long after the week ended",
	})
	m.confidenceFlags = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "scoring",
		Name:      "confidence_flags_total",
		Help:      "User weeks whose confidence values were not a permutation of 1..N",
	})
	m.storeFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "store",
		Name:      "failures_total",
		Help:      "Document store operations that failed",
	}, []string{"operation"})
	m.eliminations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "survivor",
		Name:      "eliminations_total",
		Help:      "Survivor entries eliminated, by reason",
	}, []string{"reason"})
	m.survivorFindings = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "survivor",
		Name:      "inconsistencies_total",
		Help:      "Inconsistent survivor histories detected, by kind",
	}, []string{"kind"})
	m.recomputeDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "recompute",
		Name:      "duration_seconds",
		Help:      "Wall time of recompute runs",
		Buckets:   m.histogramBuckets,
	}, []string{"kind", "outcome"})
	m.cacheLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Standings cache lookups by result",
	}, []string{"result"})
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method"})
	m.normalizationRejects = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "store",
		Name:      "normalization_rejects_total",
		Help:      "Stored documents or fields that could not be mapped to the canonical model",
	}, []string{"kind"})
}

// RecordPicksDiscarded adds malformed picks excluded from a run
func RecordPicksDiscarded(n int) {
	globalManager.picksDiscarded.Add(float64(n))
}

// RecordPicksPending adds picks left pending by a run
func RecordPicksPending(n int) {
	globalManager.picksPending.Add(float64(n))
}

// RecordWeeklyScoreWritten counts one weekly record replace
func RecordWeeklyScoreWritten() {
	globalManager.weeklyScoresWritten.Inc()
}

// RecordStandingWritten counts one season standing replace
func RecordStandingWritten() {
	globalManager.standingsWritten.Inc()
}

// RecordMissingGameWarning counts one data-integrity warning
func RecordMissingGameWarning() {
	globalManager.missingGameWarnings.Inc()
}

// RecordConfidenceFlag counts a user week with duplicate or out-of-range confidence
func RecordConfidenceFlag() {
	globalManager.confidenceFlags.Inc()
}

// RecordStoreFailure counts a failed store operation
func RecordStoreFailure(operation string) {
	globalManager.storeFailures.WithLabelValues(operation).Inc()
}

// RecordElimination counts a survivor elimination
func RecordElimination(reason string) {
	globalManager.eliminations.WithLabelValues(reason).Inc()
}

// RecordSurvivorInconsistency counts a flagged survivor history problem
func RecordSurvivorInconsistency(kind string) {
	globalManager.survivorFindings.WithLabelValues(kind).Inc()
}

// ObserveRecompute records the duration of a run
func ObserveRecompute(kind string, failed bool, d time.Duration) {
	outcome := "ok"
	if failed {
		outcome = "failed"
	}
	globalManager.recomputeDuration.WithLabelValues(kind, outcome).Observe(d.Seconds())
}

// RecordCacheLookup counts a cache hit or miss
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	globalManager.cacheLookups.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records one served request
func RecordHTTPRequest(route, method, status string, d time.Duration) {
	globalManager.httpRequests.WithLabelValues(route, method, status).Inc()
	globalManager.httpRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// RecordNormalizationReject counts a stored value the store boundary could not map
func RecordNormalizationReject(kind string) {
	globalManager.normalizationRejects.WithLabelValues(kind).Inc()
}

// GetRegistry returns the registry holding the service collectors
func GetRegistry() *prometheus.Registry {
	return registry
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
