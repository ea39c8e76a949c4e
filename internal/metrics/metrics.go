// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "storefront_http_requests_total", Help: "HTTP requests by route, method and status."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "storefront_http_request_duration_seconds", Help: "HTTP request latency by route and method.", Buckets: prometheus.DefBuckets},
		[]string{"route", "method"},
	)
	ListingFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "storefront_listing_fetches_total", Help: "Active listing fetches by result."},
		[]string{"result"},
	)
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "storefront_submissions_total", Help: "Selling submissions by result."},
		[]string{"result"},
	)
	StagedFiles = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "storefront_staged_files_total", Help: "Uploaded images staged for delivery."},
	)
	SkippedFiles = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "storefront_skipped_files_total", Help: "Uploaded files dropped before delivery."},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPLatency, ListingFetches, Submissions, StagedFiles, SkippedFiles)
}

// Handler returns the Prometheus exposition handler
func Handler() http.Handler {
	return promhttp.Handler()
}
