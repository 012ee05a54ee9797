package services

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically reclaims expired holds. It runs on its own schedule;
// a failing tick is logged and retried on the next one, never fatal.
type Sweeper struct {
	engine   *AllocationService
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(engine *AllocationService, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		engine:   engine,
		interval: interval,
		logger:   logger,
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("expiry sweeper started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			swept, err := s.engine.SweepExpired(ctx)
			if err != nil {
				s.logger.Error("sweep failed", "error", err)
				continue
			}
			if swept > 0 {
				s.logger.Info("expired holds reclaimed", "count", swept)
			}
		}
	}
}
