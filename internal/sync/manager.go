// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/cpsync/internal/logging"
	"github.com/tomtom215/cpsync/internal/models"
	"github.com/tomtom215/cpsync/internal/scheduler"
)

var (
	// ErrUnknownJob is returned by Trigger for a job name that is not registered.
	ErrUnknownJob = errors.New("unknown job")

	// ErrStopped is returned by Trigger after Stop.
	ErrStopped = errors.New("sync manager stopped")
)

// JobStatus is the health-endpoint view of one job.
type JobStatus struct {
	Name           string               `json:"name"`
	Running        bool                 `json:"running"`
	NextRun        *time.Time           `json:"nextRun,omitempty"`
	LastSource     models.TriggerSource `json:"lastSource,omitempty"`
	LastOutcome    string               `json:"lastOutcome,omitempty"`
	LastStartedAt  *time.Time           `json:"lastStartedAt,omitempty"`
	LastFinishedAt *time.Time           `json:"lastFinishedAt,omitempty"`
	LastError      string               `json:"lastError,omitempty"`
	Processed      int                  `json:"processed"`
	Failed         int                  `json:"failed"`
}

// RunRecorder persists finished runs.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *models.RunRecord) error
}

// Manager owns the sync jobs and their schedule.
type Manager struct {
	sched    *scheduler.Scheduler
	jobs     map[string]Job
	order    []string
	recorder RunRecorder

	mu      sync.RWMutex
	last    map[string]RunResult
	running bool
	stopped bool
	wg      sync.WaitGroup
}

// NewManager creates a manager for jobs. sched may be nil when nothing runs on
// a timer (tests, one-off CLI runs).
func NewManager(sched *scheduler.Scheduler, jobs ...Job) *Manager {
	m := &Manager{
		sched: sched,
		jobs:  make(map[string]Job, len(jobs)),
		last:  make(map[string]RunResult, len(jobs)),
	}
	for _, j := range jobs {
		if _, dup := m.jobs[j.Name()]; dup {
			continue
		}
		m.jobs[j.Name()] = j
		m.order = append(m.order, j.Name())
	}
	return m
}

// SetRecorder makes every non-skipped run land in the run history. It must
// be called before Start.
func (m *Manager) SetRecorder(r RunRecorder) {
	m.recorder = r
}

// Schedule registers job on a cron expression. It must be called before Start.
func (m *Manager) Schedule(job, expr string) error {
	if _, ok := m.jobs[job]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, job)
	}
	if m.sched == nil {
		return fmt.Errorf("schedule %s: no scheduler configured", job)
	}
	return m.sched.Add(job, expr, func(ctx context.Context, source models.TriggerSource) {
		if _, err := m.Trigger(ctx, job, source); err != nil && !errors.Is(err, ErrStopped) {
			logging.Ctx(ctx).Error().Err(err).Str("job", job).Msg("Scheduled run failed")
		}
	})
}

// Start starts the scheduler.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager already running")
	}
	m.running = true
	m.stopped = false
	m.mu.Unlock()

	logging.Info().Strs("jobs", m.order).Msg("Starting sync manager")
	if m.sched == nil {
		return nil
	}
	if err := m.sched.Start(ctx); err != nil {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		return fmt.Errorf("start scheduler: %w", err)
	}
	return nil
}

// Stop stops the scheduler, rejects new triggers and waits for in-flight runs.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager not running")
	}
	m.running = false
	m.stopped = true
	m.mu.Unlock()

	var err error
	if m.sched != nil {
		err = m.sched.Stop()
	}
	m.wg.Wait()

	logging.Info().Msg("Sync manager stopped")
	return err
}

// Trigger runs job synchronously and returns its result. A run that finds
// the job already running comes back with Skipped set and no error. The
// returned error is ErrUnknownJob, ErrStopped or the run's own error.
func (m *Manager) Trigger(ctx context.Context, job string, source models.TriggerSource) (RunResult, error) {
	j, ok := m.jobs[job]
	if !ok {
		return RunResult{}, fmt.Errorf("%w: %s", ErrUnknownJob, job)
	}

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return RunResult{}, ErrStopped
	}
	m.wg.Add(1)
	m.mu.Unlock()
	defer m.wg.Done()

	res := j.Run(ctx, source)
	if !res.Skipped {
		m.mu.Lock()
		m.last[job] = res
		m.mu.Unlock()
		m.record(ctx, res)
	}
	return res, res.Err
}

// record writes res to the run history. The write outlives a canceled run
// context so a timed-out run is still recorded.
func (m *Manager) record(ctx context.Context, res RunResult) {
	if m.recorder == nil {
		return
	}
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	rec := res.Record()
	if err := m.recorder.RecordRun(rctx, &rec); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("job", res.Job).Str("run_id", res.RunID).Msg("Failed to record job run")
	}
}

// Jobs returns the registered job names in registration order.
func (m *Manager) Jobs() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// LastResult returns the most recent completed run of job.
func (m *Manager) LastResult(job string) (RunResult, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res, ok := m.last[job]
	return res, ok
}

// Status reports every job in registration order.
func (m *Manager) Status() []JobStatus {
	var next map[string]time.Time
	if m.sched != nil {
		next = m.sched.NextRuns()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]JobStatus, 0, len(m.order))
	for _, name := range m.order {
		st := JobStatus{Name: name}
		if r, ok := m.jobs[name].(interface{ Running() bool }); ok {
			st.Running = r.Running()
		}
		if t, ok := next[name]; ok && !t.IsZero() {
			st.NextRun = &t
		}
		if res, ok := m.last[name]; ok {
			started, finished := res.StartedAt, res.FinishedAt
			st.LastSource = res.Source
			st.LastOutcome = res.Outcome()
			st.LastStartedAt = &started
			st.LastFinishedAt = &finished
			st.Processed = res.Processed
			st.Failed = res.Failed
			if res.Err != nil {
				st.LastError = res.Err.Error()
			}
		}
		out = append(out, st)
	}
	return out
}
