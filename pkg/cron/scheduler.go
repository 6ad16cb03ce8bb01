// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FACorreiaa/mtr03-counter/pkg/metrics"
	"github.com/FACorreiaa/mtr03-counter/pkg/storage"
)

// DefaultSweepSchedule runs the export retention sweep hourly.
const DefaultSweepSchedule = "0 * * * *"

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron      *cron.Cron
	store     storage.Storage
	retention time.Duration
	schedule  string
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewScheduler creates a job scheduler that deletes exports older than retention.
func NewScheduler(store storage.Storage, retention time.Duration, schedule string, logger *slog.Logger) *Scheduler {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:      c,
		store:     store,
		retention: retention,
		schedule:  schedule,
		logger:    logger,
		now:       time.Now,
	}
}

// WithMetrics counts swept exports
func (s *Scheduler) WithMetrics(m *metrics.Metrics) *Scheduler {
	s.metrics = m
	return s
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.sweepExpiredExports)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("schedule", s.schedule),
		slog.Duration("retention", s.retention),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the retention sweep.
func (s *Scheduler) RunNow() {
	go s.sweepExpiredExports()
}

func (s *Scheduler) sweepExpiredExports() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Error("export retention sweep failed", slog.Any("error", err))
	}
}

// Sweep deletes every export created before now minus the retention window
// and returns how many were removed. Individual delete failures are logged.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	files, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.retention)
	deleted := 0
	failed := 0

	for _, f := range files {
		if !f.CreatedAt.Before(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, f.ID); err != nil {
			s.logger.Warn("failed to delete expired export",
				slog.String("export_id", f.ID.String()),
				slog.Any("error", err),
			)
			failed++
			continue
		}
		deleted++
	}

	s.metrics.ExportsSwept(deleted)
	s.logger.Info("export retention sweep completed",
		slog.Int("scanned", len(files)),
		slog.Int("deleted", deleted),
		slog.Int("failed", failed),
	)
	return deleted, nil
}
