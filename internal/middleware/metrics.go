package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sellwithus/storefront/internal/metrics"
)

// Metrics records request counts and latency per route pattern. It must wrap
// the ServeMux directly so the matched pattern is visible afterwards.
func (m *Middleware) Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := newResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPLatency.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(wrapped.statusCode)).Inc()
	})
}
