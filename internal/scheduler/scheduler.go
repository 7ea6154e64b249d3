// Package scheduler triggers the weekly screening run on a cron expression.
package scheduler

import (
	"context"
	"fmt"

	"LynchScreen/internal/screener"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler owns the cron instance and the screening runner.
type Scheduler struct {
	cron   *cron.Cron
	runner *screener.Runner
	ctx    context.Context
	log    zerolog.Logger
}

// New creates a Scheduler. The six-field cron format includes seconds.
func New(ctx context.Context, runner *screener.Runner, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		runner: runner,
		ctx:    ctx,
		log:    log,
	}
}

// Register adds the weekly screening task.
func (s *Scheduler) Register(weeklyCron string) error {
	if _, err := s.cron.AddFunc(weeklyCron, s.weeklyTask); err != nil {
		return fmt.Errorf("register weekly task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}

// RunWeeklyNow executes the weekly task immediately, for manual trigger or
// RUN_ON_START.
func (s *Scheduler) RunWeeklyNow() {
	s.weeklyTask()
}

func (s *Scheduler) weeklyTask() {
	if _, err := s.runner.Run(s.ctx); err != nil {
		s.log.Error().Err(err).Msg("weekly screening run failed")
	}
}
