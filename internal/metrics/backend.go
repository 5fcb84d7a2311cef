package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backend call Prometheus metrics.
var (
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notectx",
			Name:      "backend_requests_total",
			Help:      "Total number of backend service requests",
		},
		[]string{"service", "operation", "status"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "notectx",
			Name:      "backend_request_duration_seconds",
			Help:      "Backend service request duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"service", "operation"},
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notectx",
			Name:      "search_requests_total",
			Help:      "Total number of search requests by mode",
		},
		[]string{"mode", "status"},
	)

	IngestedDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notectx",
			Name:      "ingested_documents_total",
			Help:      "Total number of documents accepted for ingestion",
		},
		[]string{"status"},
	)
)

var backendMetricsRegistered bool

// RegisterBackendMetrics registers backend Prometheus metrics. Must be called once from main.
func RegisterBackendMetrics() {
	if backendMetricsRegistered {
		return
	}
	prometheus.MustRegister(BackendRequestsTotal)
	prometheus.MustRegister(BackendRequestDuration)
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(IngestedDocumentsTotal)
	backendMetricsRegistered = true
}

// ObserveBackend records one backend call outcome.
func ObserveBackend(service, operation string, seconds float64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	BackendRequestsTotal.WithLabelValues(service, operation, status).Inc()
	BackendRequestDuration.WithLabelValues(service, operation).Observe(seconds)
}
