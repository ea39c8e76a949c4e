package handler

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellwithus/storefront/internal/config"
	"github.com/sellwithus/storefront/internal/logger"
	"github.com/sellwithus/storefront/internal/middleware"
	"github.com/sellwithus/storefront/internal/model"
	"github.com/sellwithus/storefront/internal/web"
)

// ListingFetcher returns one page of active listings
type ListingFetcher interface {
	FetchListings(ctx context.Context, page int) (*model.ListingPage, error)
}

// SubmissionProcessor runs the selling submission pipeline
type SubmissionProcessor interface {
	Submit(ctx context.Context, req model.SubmissionRequest) (*model.SubmissionResult, error)
	MaxImages() int
}

// HealthChecker is a dependency that can report its health
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds all HTTP handlers
type Handler struct {
	listings    ListingFetcher
	submissions SubmissionProcessor
	rdb         HealthChecker
	flash       *FlashStore
	pages       map[string]*template.Template
	log         *logger.Logger
	cfg         *config.Config
	now         func() time.Time
}

// New creates a new Handler instance. rdb may be nil when Redis is disabled.
func New(listings ListingFetcher, submissions SubmissionProcessor, rdb HealthChecker, log *logger.Logger, cfg *config.Config) (*Handler, error) {
	pages, err := web.ParsePages(templateFuncs)
	if err != nil {
		return nil, err
	}

	flash, err := NewFlashStore(cfg.Session.Secret, cfg.Session.Secure)
	if err != nil {
		return nil, err
	}
	if cfg.Session.Secret == "" {
		log.Warn().Msg("session.secret not set; flash messages will not survive a restart")
	}

	return &Handler{
		listings:    listings,
		submissions: submissions,
		rdb:         rdb,
		flash:       flash,
		pages:       pages,
		log:         log,
		cfg:         cfg,
		now:         time.Now,
	}, nil
}

var templateFuncs = template.FuncMap{
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"price": func(d decimal.NullDecimal) string {
		if !d.Valid {
			return ""
		}
		return d.Decimal.StringFixed(2)
	},
}

// render executes the page into a buffer first so a template error never
// leaves a half-written response.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	var buf bytes.Buffer
	if err := h.pages[page].Execute(&buf, data); err != nil {
		h.log.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("page", page).
			Msg("failed to render page")
		http.Error(w, "An unexpected error occurred", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (h *Handler) requestLog(r *http.Request) *logger.Logger {
	return h.log.WithRequestID(middleware.GetRequestID(r.Context()))
}

func acceptList(exts []string) string {
	parts := make([]string, 0, len(exts))
	for _, ext := range exts {
		parts = append(parts, fmt.Sprintf(".%s", ext))
	}
	return strings.Join(parts, ",")
}
