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

	"github.com/tomtom215/cpsync/internal/database"
	"github.com/tomtom215/cpsync/internal/events"
	"github.com/tomtom215/cpsync/internal/logging"
	"github.com/tomtom215/cpsync/internal/models"
	"github.com/tomtom215/cpsync/internal/sources"
)

// Contest job defaults.
const (
	DefaultContestRetention         = 20
	DefaultSolutionBackfillLimit    = 3
	DefaultSolutionBackfillInterval = 24 * time.Hour
)

// ContestStore is the persistence the contest job needs. GetContest and
// SaveContest return database.ErrNotFound for unknown ids.
type ContestStore interface {
	GetContest(ctx context.Context, id string) (*models.Contest, error)
	InsertContest(ctx context.Context, c *models.Contest) (bool, error)
	SaveContest(ctx context.Context, c *models.Contest) error
	ListContests(ctx context.Context) ([]models.Contest, error)
	PrunePastContests(ctx context.Context, keep int) (int64, error)
}

// NextOccurrence generates the next contest of a schedule-generated series.
type NextOccurrence interface {
	Covers(platform models.Platform) bool
	NextFor(platform models.Platform, endedID string, now time.Time) (models.Contest, bool)
}

// ContestConfig configures the contest job.
type ContestConfig struct {
	Sources []sources.ContestSource

	// Videos resolves solution videos. Nil disables lookups.
	Videos sources.VideoSource

	// Schedule refills schedule-generated series when one of their contests
	// ends. Nil disables refilling.
	Schedule NextOccurrence

	// Retention is the number of past contests kept.
	Retention int

	// BackfillLimit bounds the solution lookups retried per run for past
	// contests that still have none.
	BackfillLimit int

	// BackfillInterval is the minimum time between two solution lookups for
	// the same contest.
	BackfillInterval time.Duration
}

// ContestJob keeps the contest collection in step with the platforms.
type ContestJob struct {
	runner
	store ContestStore
	cfg   ContestConfig

	mu         sync.Mutex
	lastLookup map[string]time.Time
}

var _ Job = (*ContestJob)(nil)

// NewContestJob creates the contest job.
func NewContestJob(store ContestStore, cfg ContestConfig, opts Options) *ContestJob {
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultContestRetention
	}
	if cfg.BackfillLimit < 0 {
		cfg.BackfillLimit = 0
	}
	if cfg.BackfillInterval <= 0 {
		cfg.BackfillInterval = DefaultSolutionBackfillInterval
	}
	return &ContestJob{
		runner:     newRunner(JobContests, opts),
		store:      store,
		cfg:        cfg,
		lastLookup: make(map[string]time.Time),
	}
}

// Run performs one contest sync pass.
func (j *ContestJob) Run(ctx context.Context, source models.TriggerSource) RunResult {
	return j.run(ctx, source, j.sync)
}

func (j *ContestJob) sync(ctx context.Context, res *RunResult) error {
	log := logging.Ctx(ctx)
	now := j.now()

	fetched := j.fetchAll(ctx, now)
	for i := range fetched {
		if err := j.reconcile(ctx, &fetched[i], now); err != nil {
			res.Failed++
			log.Warn().Err(err).Str("contest_id", fetched[i].ID).Msg("Failed to sync contest")
			continue
		}
		res.Processed++
	}

	stored, err := j.store.ListContests(ctx)
	if err != nil {
		return fmt.Errorf("list contests: %w", err)
	}
	j.forgetLookups(stored)

	backfills := 0
	for i := range stored {
		c := &stored[i]
		switch {
		case c.Status != models.ContestPast && c.HasEnded(now):
			if err := j.finish(ctx, c, now); err != nil {
				res.Failed++
				log.Warn().Err(err).Str("contest_id", c.ID).Msg("Failed to finish contest")
			}
		case c.NeedsSolutions() && backfills < j.cfg.BackfillLimit && j.lookupDue(c.ID, now):
			backfills++
			if err := j.backfill(ctx, c); err != nil {
				log.Warn().Err(err).Str("contest_id", c.ID).Msg("Failed to save back-filled solutions")
			}
		}
	}

	removed, err := j.store.PrunePastContests(ctx, j.cfg.Retention)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to prune past contests")
	} else if removed > 0 {
		log.Info().Int64("removed", removed).Int("kept", j.cfg.Retention).Msg("Pruned past contests")
	}

	log.Info().
		Int("fetched", len(fetched)).
		Int("stored", len(stored)).
		Int("backfilled", backfills).
		Msg("Contest sync pass complete")
	return nil
}

// fetchAll concatenates every source's contests. A failing source
// contributes nothing.
func (j *ContestJob) fetchAll(ctx context.Context, now time.Time) []models.Contest {
	var all []models.Contest
	for _, src := range j.cfg.Sources {
		var got []models.Contest
		if err := safely(ctx, src.Name()+" contest fetch", func() {
			got = src.FetchContests(ctx, now)
		}); err != nil {
			continue
		}
		logging.Ctx(ctx).Debug().Str("source", src.Name()).Int("contests", len(got)).Msg("Fetched contests")
		all = append(all, got...)
	}
	return all
}

// reconcile inserts an unseen contest or finishes a stored one that has
// elapsed. Stored past contests are never touched.
func (j *ContestJob) reconcile(ctx context.Context, c *models.Contest, now time.Time) error {
	stored, err := j.store.GetContest(ctx, c.ID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return j.insert(ctx, c, now)
	case err != nil:
		return fmt.Errorf("get contest: %w", err)
	}

	if stored.Status != models.ContestPast && stored.HasEnded(now) {
		return j.finish(ctx, stored, now)
	}
	return nil
}

func (j *ContestJob) insert(ctx context.Context, c *models.Contest, now time.Time) error {
	if c.Status == "" {
		c.Status = models.ContestUpcoming
	}
	if c.HasEnded(now) {
		c.MarkPast()
		c.Solutions = j.resolve(ctx, c)
	}

	inserted, err := j.store.InsertContest(ctx, c)
	if err != nil {
		return fmt.Errorf("insert contest: %w", err)
	}
	if inserted {
		logging.Ctx(ctx).Info().
			Str("contest_id", c.ID).
			Str("platform", string(c.Platform)).
			Str("status", string(c.Status)).
			Time("start_time", c.StartTime).
			Msg("Contest added")
		j.publisher.Publish(ctx, events.TopicContestCreated, events.NewContestCreated(c))
	}
	return nil
}

// finish moves a stored contest to past, resolves its solutions when it has
// none and, for schedule-generated platforms, inserts the next occurrence.
func (j *ContestJob) finish(ctx context.Context, c *models.Contest, now time.Time) error {
	c.MarkPast()
	if c.NeedsSolutions() {
		c.Solutions = j.resolve(ctx, c)
	}
	if err := j.store.SaveContest(ctx, c); err != nil {
		return fmt.Errorf("save contest: %w", err)
	}

	logging.Ctx(ctx).Info().
		Str("contest_id", c.ID).
		Int("solutions", len(c.Solutions)).
		Msg("Contest ended")
	j.publisher.Publish(ctx, events.TopicContestEnded, events.NewContestEnded(c))

	if j.cfg.Schedule != nil && j.cfg.Schedule.Covers(c.Platform) {
		next, ok := j.cfg.Schedule.NextFor(c.Platform, c.ID, now)
		if ok {
			if err := j.insert(ctx, &next, now); err != nil {
				return fmt.Errorf("insert next %s contest: %w", c.Platform, err)
			}
		}
	}
	return nil
}

// backfill retries the solution lookup for a past contest that has none.
func (j *ContestJob) backfill(ctx context.Context, c *models.Contest) error {
	found := j.resolve(ctx, c)
	if len(found) == 0 {
		return nil
	}
	c.Solutions = found
	if err := j.store.SaveContest(ctx, c); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Str("contest_id", c.ID).Int("solutions", len(found)).Msg("Back-filled contest solutions")
	return nil
}

// resolve looks up solution videos. It never fails; errors yield an empty
// list.
func (j *ContestJob) resolve(ctx context.Context, c *models.Contest) []models.Solution {
	if j.cfg.Videos == nil {
		return []models.Solution{}
	}
	j.mu.Lock()
	j.lastLookup[c.ID] = j.now()
	j.mu.Unlock()

	var found []models.Solution
	if err := safely(ctx, "solution lookup", func() {
		found = j.cfg.Videos.SearchSolutions(ctx, c)
	}); err != nil || found == nil {
		return []models.Solution{}
	}
	if len(found) > models.MaxSolutions {
		found = found[:models.MaxSolutions]
	}
	return found
}

// lookupDue reports whether the contest's last solution lookup is at least
// BackfillInterval old.
func (j *ContestJob) lookupDue(id string, now time.Time) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	last, ok := j.lastLookup[id]
	return !ok || now.Sub(last) >= j.cfg.BackfillInterval
}

// forgetLookups drops lookup times of contests no longer stored.
func (j *ContestJob) forgetLookups(stored []models.Contest) {
	keep := make(map[string]struct{}, len(stored))
	for i := range stored {
		keep[stored[i].ID] = struct{}{}
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	for id := range j.lastLookup {
		if _, ok := keep[id]; !ok {
			delete(j.lastLookup, id)
		}
	}
}
