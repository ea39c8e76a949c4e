package middleware

import (
	"context"
	"time"

	"github.com/sellwithus/storefront/internal/config"
	"github.com/sellwithus/storefront/internal/logger"
)

// RateStore is the counter backend used by RateLimit. *database.Redis
// satisfies it.
type RateStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Middleware holds all HTTP middleware
type Middleware struct {
	store RateStore
	log   *logger.Logger
	cfg   *config.Config
}

// New creates a new Middleware instance. store may be nil, in which case
// rate limiting is skipped.
func New(store RateStore, log *logger.Logger, cfg *config.Config) *Middleware {
	return &Middleware{
		store: store,
		log:   log,
		cfg:   cfg,
	}
}
