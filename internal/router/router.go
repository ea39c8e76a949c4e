package router

import (
	"net/http"

	"github.com/sellwithus/storefront/internal/config"
	"github.com/sellwithus/storefront/internal/handler"
	"github.com/sellwithus/storefront/internal/metrics"
	"github.com/sellwithus/storefront/internal/middleware"
	"github.com/sellwithus/storefront/internal/web"
)

// New creates and configures the HTTP router
func New(h *handler.Handler, mw *middleware.Middleware, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoints
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)

	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, metrics.Handler())
	}

	mux.Handle("GET /static/", http.StripPrefix("/static/", web.Static()))

	// Pages
	mux.HandleFunc("GET /{$}", h.Listings)
	mux.HandleFunc("GET /selling", h.SellingForm)

	// Submissions send mail, so they are rate limited per client
	submitRateLimit := mw.RateLimit(middleware.RateLimitConfig{
		Name:   "selling",
		Limit:  cfg.RateLimit.Limit,
		Window: cfg.RateLimit.Window,
		KeyFn:  middleware.IPKey,
	})
	mux.Handle("POST /selling", submitRateLimit(http.HandlerFunc(h.SubmitSelling)))

	// Apply middleware stack
	var handler http.Handler = mux

	// Route metrics (innermost, reads the matched pattern)
	handler = mw.Metrics(handler)

	// Security headers
	handler = mw.SecurityHeaders(handler)

	// Request logging
	handler = mw.Logger(handler)

	// Request ID
	handler = mw.RequestID(handler)

	// Panic recovery (outermost)
	handler = mw.Recover(handler)

	return handler
}
