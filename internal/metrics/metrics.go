package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskweave_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskweave_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	GenerationAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "taskweave_generation_attempts_total",
			Help: "Total number of AI project generation attempts.",
		},
	)

	GenerationOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskweave_generation_outcomes_total",
			Help: "Generation outcomes by result (ok or error kind).",
		},
		[]string{"result"},
	)

	ModelCallDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taskweave_model_call_duration_seconds",
			Help:    "Latency of calls to the generative model endpoint.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		GenerationAttemptsTotal,
		GenerationOutcomesTotal,
		ModelCallDuration,
	)
}
