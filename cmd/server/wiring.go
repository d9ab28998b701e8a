// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/cpsync/internal/config"
	"github.com/tomtom215/cpsync/internal/database"
	"github.com/tomtom215/cpsync/internal/events"
	"github.com/tomtom215/cpsync/internal/logging"
	"github.com/tomtom215/cpsync/internal/runguard"
	"github.com/tomtom215/cpsync/internal/scheduler"
	"github.com/tomtom215/cpsync/internal/sources"
	syncpkg "github.com/tomtom215/cpsync/internal/sync"
)

// platformSources holds one client per external platform.
type platformSources struct {
	codeforces *sources.Codeforces
	codechef   *sources.CodeChef
	leetcode   *sources.LeetCode
	schedule   *sources.ScheduledSource
	youtube    *sources.YouTube
}

func clientConfig(cfg *config.SourcesConfig, baseURL string, timeout time.Duration) sources.ClientConfig {
	return sources.ClientConfig{
		BaseURL:           baseURL,
		Timeout:           timeout,
		ContestTimeout:    cfg.ContestTimeout,
		UserAgent:         cfg.UserAgent,
		Retry:             sources.RetryPolicy{Attempts: cfg.RetryAttempts, BaseDelay: cfg.RetryBaseDelay},
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		CircuitBreaker:    cfg.CircuitBreaker,
	}
}

// buildSources creates the platform clients. YouTube is nil without an API
// key, which leaves contest solutions empty.
func buildSources(cfg *config.Config, videoCache sources.VideoCache) *platformSources {
	s := &cfg.Sources
	ps := &platformSources{
		codeforces: sources.NewCodeforces(clientConfig(s, s.CodeforcesURL, s.RatingTimeout)),
		codechef:   sources.NewCodeChef(clientConfig(s, s.CodeChefURL, s.RatingTimeout)),
		leetcode:   sources.NewLeetCode(clientConfig(s, s.LeetCodeURL, s.RatingTimeout)),
		schedule:   sources.NewScheduledSource(sources.BuiltinSeries(), nil),
	}
	if cfg.YouTube.APIKey != "" {
		ps.youtube = sources.NewYouTube(sources.YouTubeConfig{
			Client:     clientConfig(s, cfg.YouTube.BaseURL, cfg.YouTube.Timeout),
			APIKey:     cfg.YouTube.APIKey,
			MaxResults: cfg.YouTube.MaxResults,
			Cache:      videoCache,
		})
	} else {
		logging.Warn().Msg("YouTube API key not set; contest solutions will stay empty")
	}
	return ps
}

// contestFetchers returns the contest listing sources. Codeforces and
// LeetCode reuse their rating clients, whose contest requests run under
// sources.contest_timeout.
func contestFetchers(ps *platformSources) []sources.ContestSource {
	return []sources.ContestSource{ps.codeforces, ps.leetcode, ps.schedule}
}

// guardFactory returns a constructor for per-job run guards.
func guardFactory(ctx context.Context, cfg *config.LockConfig) (func(job string) runguard.Guard, func() error, error) {
	if cfg.Backend != "redis" {
		return func(job string) runguard.Guard { return runguard.NewLocal(job) }, func() error { return nil }, nil
	}
	client, err := runguard.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect run guard backend: %w", err)
	}
	logging.Info().Str("key_prefix", cfg.KeyPrefix).Msg("Using Redis run guards")
	return func(job string) runguard.Guard {
		return runguard.NewRedis(client, cfg.KeyPrefix+job, cfg.TTL)
	}, client.Close, nil
}

// buildEvents creates the event bus, or nil when events are disabled.
func buildEvents(cfg *config.EventsConfig) (*events.Bus, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	bus, err := events.New(events.Config{
		Backend:       cfg.Backend,
		NATSURL:       cfg.NATSURL,
		MaxReconnects: cfg.MaxReconnects,
		ReconnectWait: cfg.ReconnectWait,
	}, logging.NewWatermillAdapter(logging.WithComponent("events")))
	if err != nil {
		return nil, fmt.Errorf("create event bus: %w", err)
	}
	return bus, nil
}

// buildManager wires the three jobs to the store and registers the enabled
// ones with the scheduler.
func buildManager(cfg *config.Config, db *database.DB, ps *platformSources, guard func(string) runguard.Guard, publisher events.Publisher) (*syncpkg.Manager, error) {
	loc := cfg.Jobs.Location()
	opts := func(job string) syncpkg.Options {
		return syncpkg.Options{
			Guard:           guard(job),
			Publisher:       publisher,
			UserConcurrency: cfg.Jobs.UserConcurrency,
		}
	}

	ratings := syncpkg.NewRatingJob(db,
		[]sources.RatingSource{ps.codeforces, ps.codechef, ps.leetcode},
		opts(syncpkg.JobRatings))

	contestCfg := syncpkg.ContestConfig{
		Sources:          contestFetchers(ps),
		Schedule:         ps.schedule,
		Retention:        cfg.Jobs.ContestRetention,
		BackfillLimit:    cfg.Jobs.SolutionBackfillLimit,
		BackfillInterval: cfg.Jobs.SolutionBackfillInterval,
	}
	if ps.youtube != nil {
		contestCfg.Videos = ps.youtube
	}
	contests := syncpkg.NewContestJob(db, contestCfg, opts(syncpkg.JobContests))

	activity := syncpkg.NewActivityJob(db,
		[]sources.SubmissionSource{ps.codeforces, ps.codechef, ps.leetcode},
		loc, opts(syncpkg.JobActivity))

	sched := scheduler.New(scheduler.Config{
		Location:   loc,
		RunOnStart: cfg.Jobs.RunOnStart,
	}, logging.WithComponent("scheduler"))
	manager := syncpkg.NewManager(sched, ratings, contests, activity)

	for _, j := range []struct {
		name string
		job  config.JobConfig
	}{
		{syncpkg.JobRatings, cfg.Jobs.Ratings},
		{syncpkg.JobContests, cfg.Jobs.Contests},
		{syncpkg.JobActivity, cfg.Jobs.Activity},
	} {
		if !j.job.Enabled {
			logging.Info().Str("job", j.name).Msg("Job schedule disabled; API trigger only")
			continue
		}
		if err := manager.Schedule(j.name, j.job.Schedule); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", j.name, err)
		}
	}
	return manager, nil
}
