package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/lifecycle"
)

// Runner performs one discovery run. *Coordinator satisfies it.
type Runner interface {
	Run(ctx context.Context) (*RunReport, error)
}

// Scheduler triggers runs at a fixed interval for the lifetime of the service.
type Scheduler struct {
	runner       Runner
	interval     time.Duration
	runOnStartup bool
	logger       *slog.Logger
	wg           sync.WaitGroup
}

// NewScheduler creates a Scheduler. A non-positive interval disables
// periodic runs; runOnStartup still triggers one run at startup.
func NewScheduler(runner Runner, interval time.Duration, runOnStartup bool, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:       runner,
		interval:     interval,
		runOnStartup: runOnStartup,
		logger:       logger.With("system", "scheduler"),
	}
}

// Start begins the schedule once lifecycle startup completes and waits for
// any in-flight run on shutdown.
func (s *Scheduler) Start(lc *lifecycle.Coordinator) error {
	ctx := lc.Context()

	s.wg.Go(func() {
		s.loop(ctx)
	})

	lc.OnShutdown(func() {
		<-ctx.Done()
		s.wg.Wait()
		s.logger.Info("scheduler stopped")
	})

	return nil
}

func (s *Scheduler) loop(ctx context.Context) {
	if s.runOnStartup {
		s.trigger(ctx)
	}

	if s.interval <= 0 {
		s.logger.Info("periodic discovery disabled")
		return
	}

	s.logger.Info("scheduler started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.trigger(ctx)
		}
	}
}

func (s *Scheduler) trigger(ctx context.Context) {
	report, err := s.runner.Run(ctx)
	if err != nil {
		if errors.Is(err, ErrRunInProgress) {
			s.logger.Info("scheduled run skipped, previous run still active")
			return
		}
		s.logger.Error("scheduled run failed", "error", err)
		return
	}
	s.logger.Info("scheduled run complete", "run_id", report.ID, "timed_out", report.TimedOut)
}
