// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package sync

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cpsync/internal/events"
	"github.com/tomtom215/cpsync/internal/logging"
	"github.com/tomtom215/cpsync/internal/models"
	"github.com/tomtom215/cpsync/internal/sources"
)

// RatingStore is the persistence the rating job needs.
type RatingStore interface {
	ListUsersWithHandles(ctx context.Context) ([]models.User, error)
	UpdateRatings(ctx context.Context, userID string, r models.Ratings, score float64, at time.Time) error
}

// RatingJob refreshes platform ratings and composite scores.
type RatingJob struct {
	runner
	store   RatingStore
	sources []sources.RatingSource
}

var _ Job = (*RatingJob)(nil)

// NewRatingJob creates the rating job.
func NewRatingJob(store RatingStore, srcs []sources.RatingSource, opts Options) *RatingJob {
	return &RatingJob{
		runner:  newRunner(JobRatings, opts),
		store:   store,
		sources: srcs,
	}
}

// Run performs one rating sync.
func (j *RatingJob) Run(ctx context.Context, source models.TriggerSource) RunResult {
	return j.run(ctx, source, j.sync)
}

func (j *RatingJob) sync(ctx context.Context, res *RunResult) error {
	users, err := j.store.ListUsersWithHandles(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	var updated, failed atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(j.limit)
	for i := range users {
		u := &users[i]
		g.Go(func() error {
			if err := j.syncUser(ctx, u); err != nil {
				failed.Add(1)
				logging.Ctx(ctx).Warn().Err(err).Str("user_id", u.ID).Msg("Failed to update ratings")
				return nil
			}
			updated.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	res.Processed = int(updated.Load())
	res.Failed = int(failed.Load())

	j.publisher.Publish(ctx, events.TopicRatingsUpdated, events.RatingsUpdated{
		Users:     len(users),
		Updated:   res.Processed,
		Failed:    res.Failed,
		Timestamp: j.now(),
	})
	return nil
}

// syncUser fetches every platform rating in turn and writes them in one
// update. A platform that fails counts as 0.
func (j *RatingJob) syncUser(ctx context.Context, u *models.User) error {
	var ratings models.Ratings
	for _, src := range j.sources {
		handle := u.Handles.For(src.Platform())
		if handle == "" {
			continue
		}
		var rating int
		if err := safely(ctx, src.Platform().Slug()+" rating fetch", func() {
			rating = src.FetchRating(ctx, handle)
		}); err != nil {
			continue
		}
		setRating(&ratings, src.Platform(), rating)
	}

	score := models.CompositeScore(ratings)
	if err := j.store.UpdateRatings(ctx, u.ID, ratings, score, j.now()); err != nil {
		return fmt.Errorf("update ratings: %w", err)
	}

	logging.Ctx(ctx).Debug().
		Str("user_id", u.ID).
		Int("codeforces", ratings.Codeforces).
		Int("codechef", ratings.CodeChef).
		Int("leetcode", ratings.LeetCode).
		Float64("score", score).
		Msg("Ratings updated")
	return nil
}

func setRating(r *models.Ratings, p models.Platform, v int) {
	switch p {
	case models.PlatformCodeforces:
		r.Codeforces = v
	case models.PlatformCodeChef:
		r.CodeChef = v
	case models.PlatformLeetCode:
		r.LeetCode = v
	}
}
