package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kessa99/task-manager-back/internal/metrics"
	"github.com/robfig/cron/v3"
)

const sweepBatchSize = 500

type invitationPurger interface {
	PurgeExpired(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// Sweeper deletes unaccepted invitations whose expiry lies further back than
// the retention window. It only removes rows; validity is still decided when
// an invitation is read.
type Sweeper struct {
	repo      invitationPurger
	logger    *slog.Logger
	retention time.Duration
	now       func() time.Time
}

func NewSweeper(repo invitationPurger, logger *slog.Logger, retention time.Duration) *Sweeper {
	return &Sweeper{
		repo:      repo,
		logger:    logger.With("component", "sweeper"),
		retention: retention,
		now:       time.Now,
	}
}

// Start runs Sweep on the cron schedule until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context, spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { s.Sweep(ctx) }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}

	s.logger.Info("sweeper started", "schedule", spec, "retention", s.retention)
	c.Start()

	<-ctx.Done()
	// Wait for a running sweep to finish.
	<-c.Stop().Done()
	s.logger.Info("sweeper shut down")
	return nil
}

// Sweep purges in batches until a batch comes back short. It returns the
// number of deleted rows.
func (s *Sweeper) Sweep(ctx context.Context) int {
	start := time.Now()
	defer func() { metrics.SweeperCycleDuration.Observe(time.Since(start).Seconds()) }()

	cutoff := s.now().Add(-s.retention)
	total := 0
	for ctx.Err() == nil {
		n, err := s.repo.PurgeExpired(ctx, cutoff, sweepBatchSize)
		if err != nil {
			s.logger.ErrorContext(ctx, "purge expired invitations", "error", err)
			break
		}
		total += n
		metrics.SweeperDeletedTotal.Add(float64(n))
		if n < sweepBatchSize {
			break
		}
	}

	if total > 0 {
		s.logger.InfoContext(ctx, "purged expired invitations", "count", total, "cutoff", cutoff)
	}
	return total
}
