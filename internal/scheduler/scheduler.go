// Package scheduler runs the periodic revenue reconciliation job. Event
// processing keeps aggregates current; the job repairs drift from lost
// events or overlapping writers.
package scheduler

import (
	"context"
	"time"

	"github.com/smallbiznis/factura/internal/clock"
	revenuedomain "github.com/smallbiznis/factura/internal/revenue/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config controls the reconciliation cadence.
type Config struct {
	RunInterval time.Duration
	RunTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval: 6 * time.Hour,
		RunTimeout:  5 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = defaults.RunTimeout
	}
	return c
}

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	RevenueSvc revenuedomain.Service
	Config     Config `optional:"true"`
}

type Scheduler struct {
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	revenueSvc revenuedomain.Service
}

func New(p Params) *Scheduler {
	return &Scheduler{
		log:        p.Log.Named("scheduler"),
		cfg:        p.Config.withDefaults(),
		clock:      p.Clock,
		revenueSvc: p.RevenueSvc,
	}
}

// RunForever reconciles on a fixed interval until ctx is cancelled.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	s.log.Info("reconciliation scheduler started", zap.Duration("interval", s.cfg.RunInterval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("reconciliation scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single reconciliation pass. Failures are logged; the
// next tick retries.
func (s *Scheduler) RunOnce(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, s.cfg.RunTimeout)
	defer cancel()

	start := s.clock.Now()
	if err := s.revenueSvc.Rebuild(ctx); err != nil {
		s.log.Error("revenue reconciliation failed", zap.Error(err))
		return
	}
	s.log.Info("revenue reconciliation completed",
		zap.Duration("took", s.clock.Now().Sub(start)),
	)
}
