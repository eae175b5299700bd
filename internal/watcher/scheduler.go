package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler wraps gocron for the optional fixed-interval rebuild.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a scheduler that triggers the watcher's rebuild
// channel every interval.
func NewScheduler(w *Watcher, interval time.Duration) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			slog.Debug("Scheduled rebuild tick", "interval", interval)
			w.TriggerRebuild()
		}),
		gocron.WithName("interval-rebuild"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create interval rebuild job: %w", err)
	}

	return &Scheduler{scheduler: s}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start(ctx context.Context) {
	slog.Info("Starting rebuild scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	slog.Info("Stopping rebuild scheduler")
	return s.scheduler.Shutdown()
}
