package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/repository"
)

// CleanupWorker periodically deletes stale password-reset tokens: everything
// expired or already used, plus used tokens older than the retention window.
// A failed sweep is logged and retried on the next tick.
type CleanupWorker struct {
	resets    repository.PasswordResetRepository
	logger    *zap.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

// NewCleanupWorker constructs the worker.
func NewCleanupWorker(resets repository.PasswordResetRepository, cfg config.CleanupConfig, logger *zap.Logger) *CleanupWorker {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	retention := cfg.UsedTokenRetention
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &CleanupWorker{
		resets:    resets,
		logger:    logger,
		interval:  interval,
		retention: retention,
		now:       time.Now,
	}
}

// Run sweeps on a fixed interval until the context is canceled.
func (w *CleanupWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("cleanup worker started", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			if _, err := w.Sweep(ctx); err != nil {
				w.logger.Error("cleanup sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep runs both deletion passes once and returns the total removed.
// Running it twice with no new tokens deletes nothing the second time.
func (w *CleanupWorker) Sweep(ctx context.Context) (int64, error) {
	now := w.now()

	expired, err := w.resets.DeleteExpiredOrUsed(ctx, now)
	if err != nil {
		return 0, err
	}

	retained, err := w.resets.DeleteUsedCreatedBefore(ctx, now.Add(-w.retention))
	if err != nil {
		return expired, err
	}

	total := expired + retained
	w.logger.Info("cleanup sweep completed",
		zap.Int64("expired_or_used", expired),
		zap.Int64("past_retention", retained))
	return total, nil
}
