// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

// Package scheduler fires the background sync jobs on cron schedules.
//
// Each registered entry runs once immediately when the scheduler starts
// (trigger "initial", unless disabled) and then at every cron fire time in the
// configured timezone (trigger "cron"). Fired runs execute on their own
// goroutine; overlap protection is the job's concern, so a fire that lands
// while the previous run is still going is handed to the job, which skips it.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cpsync/internal/models"
)

// RunFunc is the work fired by an entry.
type RunFunc func(ctx context.Context, source models.TriggerSource)

// Config holds scheduler configuration.
type Config struct {
	// Location is the timezone cron expressions are evaluated in.
	Location *time.Location

	// RunOnStart fires every entry once when Start is called.
	RunOnStart bool
}

type entry struct {
	name     string
	schedule *Schedule
	run      RunFunc

	mu      sync.Mutex
	nextRun time.Time
}

// Scheduler runs registered entries on their cron schedules.
type Scheduler struct {
	config  Config
	logger  zerolog.Logger
	entries []*entry

	// now and after are replaceable for tests.
	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	cancel  context.CancelFunc
	loops   sync.WaitGroup
	runs    sync.WaitGroup
}

// New creates a scheduler. A nil Location means UTC.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(config Config, logger zerolog.Logger) *Scheduler {
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &Scheduler{
		config: config,
		logger: logger.With().Str("component", "scheduler").Logger(),
		now:    time.Now,
		after:  time.After,
	}
}

// Add registers a job under a cron expression. It must be called before Start.
func (s *Scheduler) Add(name, expr string, run RunFunc) error {
	schedule, err := ParseCron(expr)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	if run == nil {
		return fmt.Errorf("schedule %s: nil run func", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("schedule %s: scheduler already running", name)
	}
	s.entries = append(s.entries, &entry{name: name, schedule: schedule, run: run})
	return nil
}

// Start launches one loop per entry.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.stopCh = make(chan struct{})
	s.cancel = cancel

	s.logger.Info().
		Int("jobs", len(s.entries)).
		Str("timezone", s.config.Location.String()).
		Bool("run_on_start", s.config.RunOnStart).
		Msg("Starting scheduler")

	for _, e := range s.entries {
		s.loops.Add(1)
		go s.loop(runCtx, e)
	}
	return nil
}

// Stop ends every loop, cancels in-flight runs and waits for them to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	cancel := s.cancel
	s.mu.Unlock()

	s.loops.Wait()
	cancel()
	s.runs.Wait()

	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// NextRuns reports the next fire time of every entry.
func (s *Scheduler) NextRuns() map[string]time.Time {
	s.mu.Lock()
	entries := s.entries
	s.mu.Unlock()

	out := make(map[string]time.Time, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		next := e.nextRun
		e.mu.Unlock()
		if next.IsZero() {
			next = e.schedule.Next(s.now(), s.config.Location)
		}
		out[e.name] = next
	}
	return out
}

func (s *Scheduler) loop(ctx context.Context, e *entry) {
	defer s.loops.Done()

	if s.config.RunOnStart {
		s.fire(ctx, e, models.TriggerInitial)
	}

	for {
		now := s.now()
		next := e.schedule.Next(now, s.config.Location)
		if next.IsZero() {
			s.logger.Error().Str("job", e.name).Str("cron", e.schedule.String()).Msg("Cron expression never fires")
			return
		}

		e.mu.Lock()
		e.nextRun = next
		e.mu.Unlock()

		s.logger.Debug().Str("job", e.name).Time("next_run", next).Msg("Next run scheduled")

		select {
		case <-s.after(next.Sub(now)):
			s.fire(ctx, e, models.TriggerCron)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, e *entry, source models.TriggerSource) {
	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().Str("job", e.name).Interface("panic", r).Msg("Scheduled run panicked")
			}
		}()
		e.run(ctx, source)
	}()
}
