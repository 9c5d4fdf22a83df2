// Package metrics exposes Prometheus metrics for batch verification.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics holds all Prometheus metrics of the verifier.
type PrometheusMetrics struct {
	// Verification metrics
	VerificationsTotal *prometheus.CounterVec
	DurationHistogram  *prometheus.HistogramVec

	// Finding metrics
	FindingsTotal *prometheus.CounterVec

	// Discovery metrics
	RunsDiscoveredTotal prometheus.Counter
	AmbiguousDirsTotal  prometheus.Counter
	ArtifactCacheHits   prometheus.Counter
	ArtifactCacheMisses prometheus.Counter
}

// NewPrometheusMetrics creates a new Prometheus metrics instance using
// the given registerer; pass nil for the default registerer.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		VerificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "benchverify_verifications_total",
				Help: "Total number of verifications by benchmark type, mode and resolved category",
			},
			[]string{"benchmark_type", "mode", "category"},
		),

		DurationHistogram: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "benchverify_verification_duration_seconds",
				Help:    "Verification duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"benchmark_type", "mode"},
		),

		FindingsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "benchverify_findings_total",
				Help: "Total number of findings by classification",
			},
			[]string{"classification"},
		),

		RunsDiscoveredTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "benchverify_runs_discovered_total",
				Help: "Total number of result directories recognized as runs",
			},
		),

		AmbiguousDirsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "benchverify_ambiguous_dirs_total",
				Help: "Total number of result directories skipped as ambiguous",
			},
		),

		ArtifactCacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "benchverify_artifact_cache_hits_total",
				Help: "Total number of parsed-artifact cache hits",
			},
		),

		ArtifactCacheMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "benchverify_artifact_cache_misses_total",
				Help: "Total number of parsed-artifact cache misses",
			},
		),
	}
}

// RecordVerification records the outcome of one verification.
func (m *PrometheusMetrics) RecordVerification(benchmarkType, mode, category string, duration time.Duration) {
	m.VerificationsTotal.WithLabelValues(benchmarkType, mode, category).Inc()
	m.DurationHistogram.WithLabelValues(benchmarkType, mode).Observe(duration.Seconds())
}

// RecordFindings records the classification counts of a finding list.
func (m *PrometheusMetrics) RecordFindings(classifications []string) {
	for _, c := range classifications {
		m.FindingsTotal.WithLabelValues(c).Inc()
	}
}

// RecordRunDiscovered records one recognized run directory.
func (m *PrometheusMetrics) RecordRunDiscovered() {
	m.RunsDiscoveredTotal.Inc()
}

// RecordAmbiguousDir records one skipped ambiguous directory.
func (m *PrometheusMetrics) RecordAmbiguousDir() {
	m.AmbiguousDirsTotal.Inc()
}

// RecordCacheHit records a parsed-artifact cache hit.
func (m *PrometheusMetrics) RecordCacheHit() {
	m.ArtifactCacheHits.Inc()
}

// RecordCacheMiss records a parsed-artifact cache miss.
func (m *PrometheusMetrics) RecordCacheMiss() {
	m.ArtifactCacheMisses.Inc()
}
