// Package scheduler implements the supplemented background rescrape sweep
// (SPEC_FULL.md §4.11): a robfig/cron-driven job that periodically re-visits
// stale VideoRecords and runs them back through CF.RescrapeCode, bounded to a
// small worker pool so it never competes meaningfully with interactive
// queries.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jmylchreest/jav-meta/internal/config"
	"github.com/jmylchreest/jav-meta/internal/models"
)

// Rescraper is the subset of facade.Facade the sweep needs.
type Rescraper interface {
	RescrapeCode(ctx context.Context, code models.Code) (*models.VideoInfo, error)
}

// JobStore is the subset of store.Store the sweep needs for discovering
// stale codes and recording job bookkeeping.
type JobStore interface {
	ListStaleCodes(ctx context.Context, olderThanEpoch int64) ([]models.Code, error)
	CreateJob(ctx context.Context, code models.Code) (*models.RescrapeJob, error)
	MarkJobRunning(ctx context.Context, id models.ULID) error
	MarkJobDone(ctx context.Context, id models.ULID) error
	MarkJobFailed(ctx context.Context, id models.ULID, cause error) error
}

// Scheduler runs the cron-driven sweep described in §4.11.
type Scheduler struct {
	cron       *cron.Cron
	store      JobStore
	rescraper  Rescraper
	cfg        config.SchedulerConfig
	logger     *slog.Logger
	entryID    cron.EntryID
}

// New builds a Scheduler, wiring store and rescraper to cfg's cadence.
func New(cfg config.SchedulerConfig, store JobStore, rescraper Rescraper, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:      cron.New(),
		store:     store,
		rescraper: rescraper,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start schedules the sweep per cfg.Cron (falling back to a fixed interval
// derived from cfg.RescrapeInterval when no explicit cron expression is
// set) and begins the cron scheduler's own goroutine. It is a no-op when the
// scheduler is disabled.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.logger.Info("scheduler disabled, skipping rescrape sweep registration")
		return nil
	}

	spec := s.cfg.Cron
	if spec == "" {
		spec = fmt.Sprintf("@every %s", s.cfg.RescrapeInterval.String())
	}

	id, err := s.cron.AddFunc(spec, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduling rescrape sweep %q: %w", spec, err)
	}
	s.entryID = id

	s.cron.Start()
	s.logger.Info("rescrape sweep scheduled",
		slog.String("cron", spec),
		slog.Duration("stale_after", s.cfg.StaleAfter),
		slog.Int("max_concurrent", s.cfg.MaxConcurrentRescrapes))
	return nil
}

// Stop halts the cron scheduler and blocks until the in-flight sweep (if
// any) returns.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

// runSweep discovers stale codes, enqueues a RescrapeJob per code, and runs
// them through a bounded worker pool. A failed rescrape only updates the
// RescrapeJob row — it never touches the existing VideoRecord, per §4.11's
// invariant.
func (s *Scheduler) runSweep(ctx context.Context) {
	staleAfter := s.cfg.StaleAfter
	if staleAfter <= 0 {
		staleAfter = s.cfg.RescrapeInterval
	}
	cutoff := time.Now().Add(-staleAfter).Unix()

	codes, err := s.store.ListStaleCodes(ctx, cutoff)
	if err != nil {
		s.logger.Error("rescrape sweep: listing stale codes failed", slog.Any("error", err))
		return
	}
	if len(codes) == 0 {
		s.logger.Debug("rescrape sweep: nothing stale")
		return
	}

	concurrency := s.cfg.MaxConcurrentRescrapes
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	done := make(chan struct{})
	remaining := len(codes)

	s.logger.Info("rescrape sweep starting", slog.Int("stale_count", remaining))

	for _, code := range codes {
		code := code
		sem <- struct{}{}
		go func() {
			defer func() {
				<-sem
				done <- struct{}{}
			}()
			s.runOne(ctx, code)
		}()
	}
	for i := 0; i < remaining; i++ {
		<-done
	}
}

// runOne creates a RescrapeJob row, runs the rescrape, and records the
// outcome.
func (s *Scheduler) runOne(ctx context.Context, code models.Code) {
	job, err := s.store.CreateJob(ctx, code)
	if err != nil {
		s.logger.Error("rescrape sweep: creating job failed", slog.String("code", code.String()), slog.Any("error", err))
		return
	}

	if err := s.store.MarkJobRunning(ctx, job.ID); err != nil {
		s.logger.Warn("rescrape sweep: marking job running failed", slog.String("code", code.String()), slog.Any("error", err))
	}

	_, err = s.rescraper.RescrapeCode(ctx, code)
	if err != nil {
		s.logger.Warn("rescrape sweep: rescrape failed", slog.String("code", code.String()), slog.Any("error", err))
		if markErr := s.store.MarkJobFailed(ctx, job.ID, err); markErr != nil {
			s.logger.Error("rescrape sweep: marking job failed failed", slog.String("code", code.String()), slog.Any("error", markErr))
		}
		return
	}

	if err := s.store.MarkJobDone(ctx, job.ID); err != nil {
		s.logger.Warn("rescrape sweep: marking job done failed", slog.String("code", code.String()), slog.Any("error", err))
	}
}
