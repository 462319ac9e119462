// Package scheduler runs deferred and periodic background work on gocron.
package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler wraps a gocron scheduler with the two job shapes the server uses.
type Scheduler struct {
	s gocron.Scheduler
}

// New creates a stopped scheduler. Call Start to begin running jobs.
func New() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{s: s}, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.s.Start()
	slog.Info("scheduler_started", "jobs", len(s.s.Jobs()))
}

// Shutdown stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Shutdown() error {
	return s.s.Shutdown()
}

// After runs fn once, delay from now. Failures inside fn are fn's to log.
// POST: Returns the job ID
func (s *Scheduler) After(delay time.Duration, name string, fn func()) (string, error) {
	j, err := s.s.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(time.Now().Add(delay))),
		gocron.NewTask(fn),
		gocron.WithName(name),
	)
	if err != nil {
		return "", fmt.Errorf("schedule %s: %w", name, err)
	}
	return j.ID().String(), nil
}

// Every runs fn on a fixed interval. A run that overlaps the previous one is skipped.
// POST: Returns the job ID
func (s *Scheduler) Every(interval time.Duration, name string, fn func()) (string, error) {
	j, err := s.s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("schedule %s: %w", name, err)
	}
	return j.ID().String(), nil
}
