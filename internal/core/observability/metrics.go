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

	layerComputeSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "layer_compute_duration_seconds",
			Help:    "Duration of hexbin layer computation in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
	)

	layerPoints = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "layer_points",
			Help:    "Input points per computed layer.",
			Buckets: prometheus.ExponentialBuckets(10, 4, 10),
		},
	)

	layerBins = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "layer_bins",
			Help:    "Hexagon bins per computed layer.",
			Buckets: prometheus.ExponentialBuckets(4, 2, 12),
		},
	)

	cacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_results_total",
			Help: "Cache results by outcome.",
		},
		[]string{"outcome", "driver"},
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

func ObserveLayerCompute(points, bins int, durationSeconds float64) {
	layerComputeSeconds.Observe(durationSeconds)
	layerPoints.Observe(float64(points))
	layerBins.Observe(float64(bins))
}

func IncCacheHit(driver string) {
	cacheResults.WithLabelValues("hit", driver).Inc()
}

func IncCacheMiss(driver string) {
	cacheResults.WithLabelValues("miss", driver).Inc()
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
