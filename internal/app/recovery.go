package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/sponto/ses-match/internal/adapter/repo/postgres"
)

// StuckJobRecovery periodically flips long-running processing rows back
// to pending. Any worker may run it; the UPDATE races harmlessly.
type StuckJobRecovery struct {
	repo             *postgres.QueueRepo
	maxProcessingAge time.Duration
	interval         time.Duration
}

// NewStuckJobRecovery builds the sweeper with sane floors.
func NewStuckJobRecovery(repo *postgres.QueueRepo, maxProcessingAge, interval time.Duration) *StuckJobRecovery {
	if repo == nil {
		return nil
	}
	if maxProcessingAge <= 0 {
		maxProcessingAge = 10 * time.Minute
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &StuckJobRecovery{repo: repo, maxProcessingAge: maxProcessingAge, interval: interval}
}

// Run sweeps once immediately, then on every tick until cancelled.
func (s *StuckJobRecovery) Run(ctx context.Context) {
	if s == nil {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("stuck job recovery stopping")
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *StuckJobRecovery) sweepOnce(ctx context.Context) {
	recovered, err := s.repo.RecoverStuck(ctx, time.Now().UTC(), s.maxProcessingAge)
	if err != nil {
		slog.Error("stuck job recovery failed", slog.Any("error", err))
		return
	}
	if recovered > 0 {
		slog.Warn("recovered stuck jobs", slog.Int64("count", recovered))
	}
}
