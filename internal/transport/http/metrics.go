package http

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	cleanupTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assetcli_cleanups_total",
		Help: "Total report cleanup runs by outcome.",
	}, []string{"outcome"})

	cleanupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "assetcli_cleanup_duration_seconds",
		Help:    "Report cleanup pipeline latency.",
		Buckets: prometheus.DefBuckets,
	})
)

// observeCleanup records one pipeline run
func observeCleanup(elapsed time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	cleanupTotal.WithLabelValues(outcome).Inc()
	cleanupDuration.Observe(elapsed.Seconds())
}

// MetricsHandler exposes prometheus metrics
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
