package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

// Reconciler runs a full balance sweep.
type Reconciler interface {
	ReconcileAll(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// Pruner deletes published outbox events older than the retention.
type Pruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// Recorder receives the outcome of each sweep.
type Recorder interface {
	RecordReconciliation(discrepancies int)
}

// Config wires the background jobs.
type Config struct {
	// ReconcileSchedule is a standard five-field cron expression; empty disables the sweep.
	ReconcileSchedule string
	// PruneSchedule defaults to hourly.
	PruneSchedule   string
	OutboxRetention time.Duration
	JobTimeout      time.Duration
}

// Scheduler runs the periodic maintenance jobs.
type Scheduler struct {
	cron       *cron.Cron
	reconciler Reconciler
	pruner     Pruner
	recorder   Recorder
	cfg        Config
	logger     zerolog.Logger
}

// New creates a Scheduler. Panicking jobs are recovered and logged.
func New(cfg Config, reconciler Reconciler, pruner Pruner, recorder Recorder, logger zerolog.Logger) *Scheduler {
	if cfg.PruneSchedule == "" {
		cfg.PruneSchedule = "@hourly"
	}
	if cfg.JobTimeout == 0 {
		cfg.JobTimeout = 10 * time.Minute
	}

	logger = logger.With().Str("component", "scheduler").Logger()
	cronLogger := cron.PrintfLogger(&logger)

	return &Scheduler{
		cron:       cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		reconciler: reconciler,
		pruner:     pruner,
		recorder:   recorder,
		cfg:        cfg,
		logger:     logger,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() error {
	if s.cfg.ReconcileSchedule != "" && s.reconciler != nil {
		if _, err := s.cron.AddFunc(s.cfg.ReconcileSchedule, s.RunReconcile); err != nil {
			return err
		}
		s.logger.Info().Str("schedule", s.cfg.ReconcileSchedule).Msg("scheduled reconciliation sweep")
	}

	if s.cfg.OutboxRetention > 0 && s.pruner != nil {
		if _, err := s.cron.AddFunc(s.cfg.PruneSchedule, s.RunPrune); err != nil {
			return err
		}
		s.logger.Info().Str("schedule", s.cfg.PruneSchedule).Msg("scheduled outbox pruning")
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// RunReconcile performs one reconciliation sweep.
func (s *Scheduler) RunReconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	report, err := s.reconciler.ReconcileAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("reconciliation sweep failed")
		return
	}
	if s.recorder != nil {
		s.recorder.RecordReconciliation(len(report.Discrepancies))
	}
}

// RunPrune deletes expired outbox events.
func (s *Scheduler) RunPrune() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	if _, err := s.pruner.Prune(ctx, s.cfg.OutboxRetention); err != nil {
		s.logger.Error().Err(err).Msg("outbox pruning failed")
	}
}
