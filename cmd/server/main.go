package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sellwithus/storefront/internal/config"
	"github.com/sellwithus/storefront/internal/database"
	"github.com/sellwithus/storefront/internal/ebay"
	"github.com/sellwithus/storefront/internal/email"
	"github.com/sellwithus/storefront/internal/handler"
	"github.com/sellwithus/storefront/internal/logger"
	"github.com/sellwithus/storefront/internal/middleware"
	"github.com/sellwithus/storefront/internal/router"
	"github.com/sellwithus/storefront/internal/service"
	"github.com/sellwithus/storefront/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", handler.Version).Msg("starting storefront server")

	if err := cfg.EnsureUploadDir(); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare upload directory")
	}

	// Redis is optional; it only backs the submission rate limit
	var (
		rateStore middleware.RateStore
		health    handler.HealthChecker
	)
	if cfg.Redis.Enabled {
		rdb, err := database.NewRedis(cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer rdb.Close()
		rateStore, health = rdb, rdb
		log.Info().Str("addr", cfg.Redis.Addr()).Msg("connected to Redis")
	} else {
		log.Info().Msg("redis disabled; submissions are not rate limited")
	}

	// Outbound clients
	ebayClient := ebay.NewClientFromConfig(cfg.Ebay)

	sender, err := email.NewSender(context.Background(), cfg.Email, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize email sender")
	}
	log.Info().Str("provider", sender.Name()).Str("to", cfg.Email.To).Msg("email sender initialized")

	// Initialize services
	stager := storage.NewStager(cfg.Upload.Dir, log)
	listingSvc := service.NewListingService(ebayClient, log)
	submissionSvc := service.NewSubmissionService(stager, sender, cfg.Email, cfg.Upload, log)

	// Stale staging sweep
	if cfg.Upload.SweepSchedule != "" {
		sweeper := storage.NewSweeper(cfg.Upload.Dir, cfg.Upload.StaleAfter, log)
		if err := sweeper.Start(cfg.Upload.SweepSchedule); err != nil {
			log.Fatal().Err(err).Msg("failed to start staging sweeper")
		}
		defer sweeper.Stop()
	}

	// Initialize handlers
	h, err := handler.New(listingSvc, submissionSvc, health, log, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize handlers")
	}

	// Initialize middleware
	mw := middleware.New(rateStore, log, cfg)

	// Set up router
	r := router.New(h, mw, cfg)

	// Create HTTP server
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
