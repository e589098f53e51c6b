package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/authcore/internal/auth/store"
)

// HousekeepingService periodically deletes refresh-token records older than
// the refresh TTL so the ledger cannot grow without bound. Records past the
// TTL are unusable anyway; their signatures no longer verify.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// RetainFor is how long records are kept, normally the refresh TTL.
	RetainFor time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService builds the sweeper. A non-positive interval defaults
// to 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, retainFor time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	return &HousekeepingService{
		Store:     st,
		Logger:    logger,
		Interval:  interval,
		RetainFor: retainFor,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start launches the background sweep loop. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping started", "interval", s.Interval, "retain_for", s.RetainFor)
}

// Stop shuts the loop down, blocking until any in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep once at startup so a long interval doesn't delay the first pass.
	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep deletes refresh-token records older than RetainFor.
func (s *HousekeepingService) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.RetainFor)
	if err := s.Store.RefreshTokens().DeleteOlderThan(ctx, cutoff); err != nil {
		s.Logger.Error("failed to delete stale refresh tokens", "error", err)
		return
	}
	s.Logger.Debug("stale refresh tokens deleted", "cutoff", cutoff)
}
