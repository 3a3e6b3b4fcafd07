package core

import (
	"context"
	"log/slog"
	"time"
)

// ArchiveConfig controls audit log retention. Zero values take the
// defaults: 90 days hot, 7 years archived, 5000-row batches, daily runs.
type ArchiveConfig struct {
	HotRetentionDays      int
	ArchiveRetentionYears int
	BatchSize             int
	CheckInterval         time.Duration
}

func (c ArchiveConfig) withDefaults() ArchiveConfig {
	if c.HotRetentionDays <= 0 {
		c.HotRetentionDays = 90
	}
	if c.ArchiveRetentionYears <= 0 {
		c.ArchiveRetentionYears = 7
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 5000
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 24 * time.Hour
	}
	return c
}

// ArchiveRun summarises one retention pass. A failed step leaves its count
// at zero and records the error.
type ArchiveRun struct {
	Archived   int64
	Purged     int64
	ArchiveErr error
	PurgeErr   error
	Duration   time.Duration
}

// StartArchiveScheduler runs the retention pass once and then on every
// CheckInterval tick. It blocks until ctx is done; failures are logged and
// retried on the next tick.
func (s *Service) StartArchiveScheduler(ctx context.Context, cfg ArchiveConfig) {
	cfg = cfg.withDefaults()
	log := slog.With("job", "audit_archive")
	log.Info("audit archive scheduler started",
		"hot_days", cfg.HotRetentionDays,
		"archive_years", cfg.ArchiveRetentionYears,
		"batch_size", cfg.BatchSize,
		"interval", cfg.CheckInterval,
	)

	tick := time.NewTicker(cfg.CheckInterval)
	defer tick.Stop()

	for {
		s.RunArchiveJob(ctx, cfg)
		select {
		case <-ctx.Done():
			log.Info("audit archive scheduler stopped")
			return
		case <-tick.C:
		}
	}
}

// RunArchiveJob moves audit entries older than the hot window into the
// archive table, then drops archived entries past the retention period.
func (s *Service) RunArchiveJob(ctx context.Context, cfg ArchiveConfig) ArchiveRun {
	cfg = cfg.withDefaults()
	log := slog.With("job", "audit_archive")
	started := s.now()

	var run ArchiveRun
	run.Archived, run.ArchiveErr = s.audit.ArchiveAuditLog(ctx, cfg.HotRetentionDays, cfg.BatchSize)
	if run.ArchiveErr != nil {
		run.Archived = 0
		log.Error("audit archive failed", "error", run.ArchiveErr)
	}
	run.Purged, run.PurgeErr = s.audit.PurgeAuditArchive(ctx, cfg.ArchiveRetentionYears)
	if run.PurgeErr != nil {
		run.Purged = 0
		log.Error("audit archive purge failed", "error", run.PurgeErr)
	}
	run.Duration = s.now().Sub(started)

	s.metrics.AuditArchived(run.Archived, run.Purged)
	log.Info("audit archive pass finished",
		"archived", run.Archived,
		"purged", run.Purged,
		"duration_ms", run.Duration.Milliseconds(),
	)
	return run
}
