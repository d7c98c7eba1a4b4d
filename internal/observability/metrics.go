// Package observability holds the Prometheus metrics of the service.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	bboxCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bbox_cache_results_total",
			Help: "BBOX result cache outcomes.",
		},
		[]string{"outcome"},
	)

	spatialQueryDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spatial_query_duration_seconds",
			Help:    "Latency of spatial store queries in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"op", "result"},
	)

	featureStoreDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feature_store_duration_seconds",
			Help:    "Latency of feature store operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"op", "result"},
	)

	missingDocumentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "missing_documents_total",
			Help: "Feature ids present in the spatial index but absent from the feature store.",
		},
	)

	docCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doc_cache_results_total",
			Help: "Document cache outcomes.",
		},
		[]string{"outcome"},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveSpatialQuery(op string, err error, durationSeconds float64) {
	spatialQueryDurationSeconds.WithLabelValues(op, resultLabel(err)).Observe(durationSeconds)
}

func ObserveFeatureStore(op string, err error, durationSeconds float64) {
	featureStoreDurationSeconds.WithLabelValues(op, resultLabel(err)).Observe(durationSeconds)
}

func IncBBoxCacheHit()  { bboxCacheResults.WithLabelValues("hit").Inc() }
func IncBBoxCacheMiss() { bboxCacheResults.WithLabelValues("miss").Inc() }

// BBoxCacheOutcome returns the counter for one bbox cache outcome, so
// tests can assert the counting semantics.
func BBoxCacheOutcome(outcome string) prometheus.Counter {
	return bboxCacheResults.WithLabelValues(outcome)
}

func AddDocCacheHits(n int) {
	if n > 0 {
		docCacheResults.WithLabelValues("hit").Add(float64(n))
	}
}

func AddDocCacheMisses(n int) {
	if n > 0 {
		docCacheResults.WithLabelValues("miss").Add(float64(n))
	}
}

// AddMissingDocuments counts index/store inconsistencies so they are
// visible even though page requests still succeed.
func AddMissingDocuments(n int) {
	if n > 0 {
		missingDocumentsTotal.Add(float64(n))
	}
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
