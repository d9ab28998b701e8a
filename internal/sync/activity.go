// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package sync

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cpsync/internal/events"
	"github.com/tomtom215/cpsync/internal/logging"
	"github.com/tomtom215/cpsync/internal/models"
	"github.com/tomtom215/cpsync/internal/sources"
)

// ActivityStore is the persistence the activity job needs.
type ActivityStore interface {
	ListUsersWithHandles(ctx context.Context) ([]models.User, error)
	UpsertActivity(ctx context.Context, rec *models.ActivityRecord) error
}

// ActivityJob records each user's solved problems for the previous day.
type ActivityJob struct {
	runner
	store   ActivityStore
	sources []sources.SubmissionSource
	loc     *time.Location
}

var _ Job = (*ActivityJob)(nil)

// NewActivityJob creates the activity job. Days are cut in loc; nil means UTC.
func NewActivityJob(store ActivityStore, srcs []sources.SubmissionSource, loc *time.Location, opts Options) *ActivityJob {
	if loc == nil {
		loc = time.UTC
	}
	return &ActivityJob{
		runner:  newRunner(JobActivity, opts),
		store:   store,
		sources: srcs,
		loc:     loc,
	}
}

// Run records yesterday's activity.
func (j *ActivityJob) Run(ctx context.Context, source models.TriggerSource) RunResult {
	return j.RunForDate(ctx, source, models.Yesterday(j.now(), j.loc))
}

// RunForDate records activity for an explicit day, overwriting any record
// already stored for it.
func (j *ActivityJob) RunForDate(ctx context.Context, source models.TriggerSource, day models.DayWindow) RunResult {
	return j.run(ctx, source, func(ctx context.Context, res *RunResult) error {
		return j.sync(ctx, res, day)
	})
}

func (j *ActivityJob) sync(ctx context.Context, res *RunResult, day models.DayWindow) error {
	users, err := j.store.ListUsersWithHandles(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	logging.Ctx(ctx).Debug().Str("date", day.Date).Int("users", len(users)).Msg("Collecting activity")

	var recorded, failed, solved atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(j.limit)
	for i := range users {
		u := &users[i]
		g.Go(func() error {
			rec := models.NewActivityRecord(u.ID, day.Date, j.collect(ctx, u, day))
			if err := j.store.UpsertActivity(ctx, &rec); err != nil {
				failed.Add(1)
				logging.Ctx(ctx).Warn().Err(err).Str("user_id", u.ID).Str("date", day.Date).Msg("Failed to record activity")
				return nil
			}
			recorded.Add(1)
			solved.Add(int64(rec.Count))
			return nil
		})
	}
	_ = g.Wait()

	res.Processed = int(recorded.Load())
	res.Failed = int(failed.Load())

	j.publisher.Publish(ctx, events.TopicActivityRecorded, events.ActivityRecorded{
		Date:        day.Date,
		Users:       len(users),
		Recorded:    res.Processed,
		Failed:      res.Failed,
		TotalSolved: int(solved.Load()),
	})
	return nil
}

// collect queries every platform the user has a handle on concurrently and
// waits for all of them. The merged list is de-duplicated on
// (platform, problem).
func (j *ActivityJob) collect(ctx context.Context, u *models.User, day models.DayWindow) []models.Submission {
	results := make([][]models.Submission, len(j.sources))

	var wg sync.WaitGroup
	for i, src := range j.sources {
		handle := u.Handles.For(src.Platform())
		if handle == "" {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = safely(ctx, src.Platform().Slug()+" submission fetch", func() {
				results[i] = src.FetchSubmissions(ctx, handle, day)
			})
		}()
	}
	wg.Wait()

	var merged []models.Submission
	for _, r := range results {
		merged = append(merged, r...)
	}
	return models.DedupSubmissions(merged)
}
