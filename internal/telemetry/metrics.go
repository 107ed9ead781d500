package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	JobsSubmitted      = prometheus.NewCounter(prometheus.CounterOpts{Name: "coach_jobs_submitted_total", Help: "Generation jobs accepted for processing"})
	JobsCompleted      = prometheus.NewCounter(prometheus.CounterOpts{Name: "coach_jobs_completed_total", Help: "Generation jobs finished successfully"})
	JobsFailed         = prometheus.NewCounter(prometheus.CounterOpts{Name: "coach_jobs_failed_total", Help: "Generation jobs that ended in a failed state"})
	JobsInFlight       = prometheus.NewGauge(prometheus.GaugeOpts{Name: "coach_jobs_inflight", Help: "Jobs currently in processing"})
	GenerationSeconds  = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "coach_generation_duration_seconds", Help: "Wall time of generator invocations", Buckets: prometheus.ExponentialBuckets(0.25, 2, 10)})
	CacheHits          = prometheus.NewCounter(prometheus.CounterOpts{Name: "coach_recommendation_cache_hits_total", Help: "Recommendation requests served from cache"})
	CacheMisses        = prometheus.NewCounter(prometheus.CounterOpts{Name: "coach_recommendation_cache_misses_total", Help: "Recommendation requests that invoked the generator"})
	CacheComputeErrors = prometheus.NewCounter(prometheus.CounterOpts{Name: "coach_recommendation_compute_errors_total", Help: "Recommendation computations that failed and were not cached"})
)

// Handler exposes the /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			JobsSubmitted,
			JobsCompleted,
			JobsFailed,
			JobsInFlight,
			GenerationSeconds,
			CacheHits,
			CacheMisses,
			CacheComputeErrors,
		)
	})
	return promhttp.Handler()
}
