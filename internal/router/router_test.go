package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sellwithus/storefront/internal/config"
	"github.com/sellwithus/storefront/internal/handler"
	"github.com/sellwithus/storefront/internal/logger"
	"github.com/sellwithus/storefront/internal/middleware"
	"github.com/sellwithus/storefront/internal/model"
)

type stubListings struct{}

func (stubListings) FetchListings(_ context.Context, page int) (*model.ListingPage, error) {
	return &model.ListingPage{Page: page}, nil
}

type stubSubmissions struct{ calls int }

func (s *stubSubmissions) MaxImages() int { return 20 }

func (s *stubSubmissions) Submit(context.Context, model.SubmissionRequest) (*model.SubmissionResult, error) {
	s.calls++
	return &model.SubmissionResult{}, nil
}

type countingStore struct{ n int64 }

func (c *countingStore) Incr(context.Context, string) (int64, error) { c.n++; return c.n, nil }
func (c *countingStore) Expire(context.Context, string, time.Duration) error { return nil }
func (c *countingStore) TTL(context.Context, string) (time.Duration, error) { return time.Minute, nil }

func newTestRouter(t *testing.T) (http.Handler, *stubSubmissions) {
	t.Helper()

	cfg := &config.Config{
		RateLimit: config.RateLimitConfig{Enabled: true, Limit: 1, Window: time.Minute},
		Metrics:   config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Session:   config.SessionConfig{Secret: "router-test"},
		Upload: config.UploadConfig{
			Dir:               t.TempDir(),
			MaxImages:         20,
			AllowedExtensions: []string{"png", "jpg"},
			MaxRequestBytes:   1 << 20,
			MaxMemory:         1 << 16,
		},
	}

	subs := &stubSubmissions{}
	h, err := handler.New(stubListings{}, subs, nil, logger.Nop(), cfg)
	require.NoError(t, err)

	mw := middleware.New(&countingStore{}, logger.Nop(), cfg)
	return New(h, mw, cfg), subs
}

func TestRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		method string
		target string
		want   int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/?page=3", http.StatusOK},
		{http.MethodGet, "/selling", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/static/style.css", http.StatusOK},
		{http.MethodGet, "/nope", http.StatusNotFound},
		{http.MethodDelete, "/selling", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			require.Equal(t, tt.want, rec.Code)
			require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
			require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		})
	}
}

func TestSubmissionIsRateLimited(t *testing.T) {
	r, subs := newTestRouter(t)

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/selling", strings.NewReader("name=A"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusSeeOther, post())
	require.Equal(t, http.StatusTooManyRequests, post())
	require.Equal(t, 1, subs.calls)
}
