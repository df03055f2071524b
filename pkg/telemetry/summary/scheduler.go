// Package summary periodically logs how much traffic the service handled.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Source reports the number of requests served since the process started.
type Source interface {
	TotalRequests() (float64, error)
}

// Scheduler logs a traffic summary on a cron schedule. Nothing is persisted;
// the previous total lives in memory and restarts at zero with the process.
type Scheduler struct {
	source   Source
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	last    float64
	lastRun time.Time
	now     func() time.Time
}

// NewScheduler creates a scheduler that reads totals from source.
func NewScheduler(source Source, schedule string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		source:   source,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "summary"),
		lastRun:  time.Now(),
		now:      time.Now,
	}
}

// Start schedules the summary job. Common schedules:
//   - "@hourly"
//   - "*/15 * * * *"  every 15 minutes
//   - "0 0 * * *"     daily at midnight
//
// An empty schedule leaves the scheduler idle. The scheduler stops when ctx
// is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("summary schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return fmt.Errorf("summary scheduler already running")
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule summary: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("summary scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunOnce logs one summary covering the time since the previous run.
func (s *Scheduler) RunOnce(ctx context.Context) {
	total, err := s.source.TotalRequests()
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to read request totals", "error", err)
		return
	}

	s.mu.Lock()
	now := s.now()
	delta := total - s.last
	window := now.Sub(s.lastRun)
	s.last = total
	s.lastRun = now
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "traffic summary",
		"requests", int64(delta),
		"requests_total", int64(total),
		"window", window.Round(time.Second).String(),
	)
}

// Stop stops the scheduler and waits for a running job to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info("summary scheduler stopped")
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled summary time, or nil when idle.
func (s *Scheduler) NextRun() *time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
