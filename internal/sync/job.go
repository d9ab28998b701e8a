// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package sync

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/tomtom215/cpsync/internal/events"
	"github.com/tomtom215/cpsync/internal/logging"
	"github.com/tomtom215/cpsync/internal/metrics"
	"github.com/tomtom215/cpsync/internal/models"
	"github.com/tomtom215/cpsync/internal/runguard"
)

// Job names.
const (
	JobRatings  = "ratings"
	JobContests = "contests"
	JobActivity = "activity"
)

// Job is one background synchronization job.
type Job interface {
	Name() string
	Run(ctx context.Context, source models.TriggerSource) RunResult
}

// RunResult describes a finished (or skipped) run.
type RunResult struct {
	Job        string               `json:"job"`
	Source     models.TriggerSource `json:"source"`
	RunID      string               `json:"runId,omitempty"`
	Skipped    bool                 `json:"skipped"`
	StartedAt  time.Time            `json:"startedAt"`
	FinishedAt time.Time            `json:"finishedAt"`
	Processed  int                  `json:"processed"`
	Failed     int                  `json:"failed"`
	Err        error                `json:"-"`
}

// Duration is the wall-clock time the run took.
func (r RunResult) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome returns the metric outcome label for r.
func (r RunResult) Outcome() string {
	switch {
	case r.Skipped:
		return metrics.OutcomeSkipped
	case r.Err != nil:
		return metrics.OutcomeFailure
	default:
		return metrics.OutcomeSuccess
	}
}

// Record converts r into a run history row.
func (r RunResult) Record() models.RunRecord {
	rec := models.RunRecord{
		RunID:      r.RunID,
		Job:        r.Job,
		Source:     r.Source,
		Outcome:    r.Outcome(),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Processed:  r.Processed,
		Failed:     r.Failed,
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	return rec
}

// Options carries the collaborators shared by every job. Zero values get
// defaults: a process-local guard, a discarding publisher and time.Now.
type Options struct {
	Guard     runguard.Guard
	Publisher events.Publisher
	Now       func() time.Time

	// UserConcurrency bounds how many users are processed at once.
	// Values below 1 mean one user at a time.
	UserConcurrency int
}

// runner holds the guard-and-record plumbing every job shares.
type runner struct {
	name      string
	guard     runguard.Guard
	publisher events.Publisher
	now       func() time.Time
	limit     int
}

func newRunner(name string, opts Options) runner {
	r := runner{
		name:      name,
		guard:     opts.Guard,
		publisher: opts.Publisher,
		now:       opts.Now,
		limit:     opts.UserConcurrency,
	}
	if r.guard == nil {
		r.guard = runguard.NewLocal(name)
	}
	if r.publisher == nil {
		r.publisher = events.Discard{}
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.limit < 1 {
		r.limit = 1
	}
	return r
}

// Name returns the job name.
func (r *runner) Name() string { return r.name }

// Running reports whether a run currently holds the guard.
func (r *runner) Running() bool { return r.guard.Held() }

// run executes body under the guard. It never panics and always releases
// the guard it acquired.
func (r *runner) run(ctx context.Context, source models.TriggerSource, body func(context.Context, *RunResult) error) (res RunResult) {
	res = RunResult{
		Job:       r.name,
		Source:    source,
		RunID:     logging.GenerateRunID(),
		StartedAt: r.now(),
	}
	ctx = logging.ContextWithRun(ctx, r.name, res.RunID)
	log := logging.Ctx(ctx)

	acquired, err := r.guard.TryAcquire(ctx)
	if err != nil || !acquired {
		res.Skipped = true
		res.FinishedAt = res.StartedAt
		if err != nil {
			log.Warn().Err(err).Str("source", string(source)).Msg("Run guard unavailable, skipping run")
		} else {
			log.Info().Str("source", string(source)).Msg("Previous run still in progress, skipping run")
		}
		metrics.RecordJobRun(r.name, string(source), metrics.OutcomeSkipped, 0)
		return res
	}

	metrics.SetJobRunning(r.name, true)
	log.Info().Str("source", string(source)).Msg("Job run started")

	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("%s job panicked: %v", r.name, p)
			log.Error().Str("stack", string(debug.Stack())).Msgf("Recovered from panic: %v", p)
		}
		if relErr := r.guard.Release(context.WithoutCancel(ctx)); relErr != nil {
			log.Warn().Err(relErr).Msg("Failed to release run guard")
		}
		metrics.SetJobRunning(r.name, false)

		res.FinishedAt = r.now()
		metrics.RecordJobRun(r.name, string(source), res.Outcome(), res.Duration())
		metrics.RecordJobItems(r.name, res.Processed, res.Failed)

		ev := log.Info()
		if res.Err != nil {
			ev = log.Error().Err(res.Err)
		}
		ev.Int("processed", res.Processed).
			Int("failed", res.Failed).
			Dur("duration", res.Duration()).
			Msg("Job run finished")
	}()

	res.Err = body(ctx, &res)
	return res
}

// safely calls fn, turning a panic into a logged error.
func safely(ctx context.Context, what string, fn func()) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s panicked: %v", what, p)
			logging.Ctx(ctx).Error().Str("stack", string(debug.Stack())).Err(err).Msg("Recovered from panic")
		}
	}()
	fn()
	return nil
}
