package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/sellwithus/storefront/internal/logger"
)

// Sweeper periodically removes staging batches left behind by requests that
// never reached cleanup, e.g. after a crash.
type Sweeper struct {
	root       string
	staleAfter time.Duration
	log        *logger.Logger
	scheduler  *cron.Cron
	jobID      cron.EntryID
	now        func() time.Time
}

// NewSweeper creates a new Sweeper for the staging root
func NewSweeper(root string, staleAfter time.Duration, log *logger.Logger) *Sweeper {
	return &Sweeper{
		root:       root,
		staleAfter: staleAfter,
		log:        log.WithComponent("staging_sweeper"),
		scheduler:  cron.New(),
		now:        time.Now,
	}
}

// Start schedules the sweep with a standard cron spec (or "@every 15m")
func (s *Sweeper) Start(schedule string) error {
	var err error
	s.jobID, err = s.scheduler.AddFunc(schedule, func() {
		if _, err := s.SweepOnce(); err != nil {
			s.log.Error().Err(err).Msg("staging sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("error scheduling staging sweep: %w", err)
	}

	s.scheduler.Start()
	s.log.Info().Str("schedule", schedule).Dur("stale_after", s.staleAfter).Msg("staging sweeper started")
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	<-s.scheduler.Stop().Done()
}

// SweepOnce removes batch directories older than the stale threshold and
// returns how many were removed. Entries that are not batch directories are
// left alone.
func (s *Sweeper) SweepOnce() (int, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0, fmt.Errorf("failed to read staging root: %w", err)
	}

	cutoff := s.now().Add(-s.staleAfter)
	removed := 0

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := uuid.Parse(entry.Name()); err != nil {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			s.log.Warn().Err(err).Str("batch", entry.Name()).Msg("failed to stat staging batch")
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			s.log.Error().Err(err).Str("path", path).Msg("failed to remove stale staging batch")
			continue
		}
		removed++
	}

	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("removed stale staging batches")
	}

	return removed, nil
}
