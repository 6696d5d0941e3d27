// Package scheduler runs recurring maintenance tasks, currently the cache
// expiry sweep.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// TaskFunc is the function signature for scheduled tasks.
type TaskFunc func(ctx context.Context) error

// Scheduler manages background recurring tasks.
type Scheduler struct {
	gocron gocron.Scheduler
	logger zerolog.Logger
}

// New creates a new scheduler.
func New(logger zerolog.Logger) (*Scheduler, error) {
	gs, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		gocron: gs,
		logger: logger.With().Str("component", "scheduler").Logger(),
	}, nil
}

// Every registers a task to run at a fixed interval. Task errors are logged,
// not fatal; the next run proceeds regardless.
func (s *Scheduler) Every(interval time.Duration, name string, fn TaskFunc) error {
	_, err := s.gocron.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			start := time.Now()
			if err := fn(context.Background()); err != nil {
				s.logger.Error().Err(err).Str("task", name).Msg("Scheduled task failed")
				return
			}
			s.logger.Debug().
				Str("task", name).
				Dur("duration", time.Since(start)).
				Msg("Scheduled task completed")
		}),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule task %q: %w", name, err)
	}
	return nil
}

// Start begins executing scheduled tasks.
func (s *Scheduler) Start() {
	s.gocron.Start()
	s.logger.Info().Msg("Scheduler started")
}

// Stop halts all scheduled tasks.
func (s *Scheduler) Stop() error {
	return s.gocron.Shutdown()
}
