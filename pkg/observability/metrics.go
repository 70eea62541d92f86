// Package observability provides logging, Prometheus metrics and gin
// middleware for the document search service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// ProviderBuckets covers embedding and chat latencies, from 50ms to 120s.
var ProviderBuckets = []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts HTTP requests by method, route and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsearch_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docsearch_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// OperationsTotal counts workflow runs. Outcome is "ok" or the error kind.
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsearch_operations_total",
			Help: "Workflow operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docsearch_operation_duration_seconds",
			Help:    "Workflow operation duration",
			Buckets: ProviderBuckets,
		},
		[]string{"operation"},
	)

	// DependencyLatency records latency of calls to the embedding service,
	// the summarization service and the vector index.
	DependencyLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docsearch_dependency_latency_seconds",
			Help:    "External dependency latency",
			Buckets: ProviderBuckets,
		},
		[]string{"dependency"},
	)

	// Inconsistencies counts failed compensating actions that leave the
	// record store and the index out of step.
	Inconsistencies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsearch_inconsistencies_total",
			Help: "Store/index inconsistencies requiring reconciliation",
		},
		[]string{"operation"},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docsearch_search_results",
			Help:    "Number of results returned per search",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
	)

	// CrawledPDFsTotal counts PDFs found by the crawler by outcome.
	CrawledPDFsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsearch_crawled_pdfs_total",
			Help: "PDF documents discovered by the crawler",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		OperationsTotal,
		OperationDuration,
		DependencyLatency,
		Inconsistencies,
		SearchResults,
		CrawledPDFsTotal,
	)
}
