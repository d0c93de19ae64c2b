package cleaner

import (
	"context"
	"log/slog"
	"time"
)

type repository interface {
	PurgeSubmissions(ctx context.Context, cutoff time.Time) (int, error)
	PurgeStagedReports(ctx context.Context, cutoff time.Time) (int, error)
}

type cleanerWorker struct {
	repo      repository
	retention time.Duration
	stagedTTL time.Duration
	logger    *slog.Logger
}

type Worker interface {
	CleanupExpiredRecords(ctx context.Context) (interval time.Duration, err error)
}

// CleanupExpiredRecords drops submission records whose rate-limit window
// has fully elapsed and staged reports that never received their flush.
func (w *cleanerWorker) CleanupExpiredRecords(ctx context.Context) (interval time.Duration, err error) {
	const (
		failureInterval = 5 * time.Second
		successInterval = 5 * time.Minute
	)

	log := w.logger.With("worker", "CleanupExpiredRecords")
	log.Debug("cleaning up expired records")

	interval = successInterval
	now := time.Now()

	if removed, err := w.repo.PurgeSubmissions(ctx, now.Add(-w.retention)); err != nil {
		log.Error("failed to purge submission records", slog.String("err", err.Error()))
		interval = failureInterval
	} else if removed > 0 {
		log.Info("purged expired submission records", slog.Int("removed", removed))
	}

	if removed, err := w.repo.PurgeStagedReports(ctx, now.Add(-w.stagedTTL)); err != nil {
		log.Error("failed to purge staged reports", slog.String("err", err.Error()))
		interval = failureInterval
	} else if removed > 0 {
		log.Info("purged stale staged reports", slog.Int("removed", removed))
	}

	return
}

func NewWorker(repo repository, retention, stagedTTL time.Duration, logger *slog.Logger) Worker {
	return &cleanerWorker{
		repo:      repo,
		retention: retention,
		stagedTTL: stagedTTL,
		logger:    logger,
	}
}
