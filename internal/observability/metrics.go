package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	progressRequestsTotal   *prometheus.CounterVec
	progressLatencySeconds  *prometheus.HistogramVec
	courseCompletionsTotal  prometheus.Counter
	httpRequestsTotal       *prometheus.CounterVec
	httpLatencySeconds      *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors used by the engine.
func RegisterMetrics() {
	registerOnce.Do(func() {
		progressRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "progress_requests_total",
			Help: "Total number of progress engine operations by outcome.",
		}, []string{"operation", "result"})

		progressLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "progress_latency_seconds",
			Help:    "Latency distribution for progress engine operations.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"operation"})

		courseCompletionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "course_completions_total",
			Help: "Total number of course aggregates transitioned to completed.",
		})

		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for HTTP requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		prometheus.MustRegister(progressRequestsTotal, progressLatencySeconds,
			courseCompletionsTotal, httpRequestsTotal, httpLatencySeconds)
	})
}

// ProgressRequests exposes the counter for progress operations.
func ProgressRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return progressRequestsTotal
}

// ProgressLatency exposes the latency histogram for progress operations.
func ProgressLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return progressLatencySeconds
}

// CourseCompletions exposes the counter for automatic course completions.
func CourseCompletions() prometheus.Counter {
	RegisterMetrics()
	return courseCompletionsTotal
}

// HTTPRequests exposes the counter for HTTP requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for HTTP requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}
