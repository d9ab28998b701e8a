// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package api

import (
	"context"
	"time"

	"github.com/tomtom215/cpsync/internal/models"
	syncpkg "github.com/tomtom215/cpsync/internal/sync"
)

// JobRunner runs jobs on demand and reports their status.
// *sync.Manager implements it.
type JobRunner interface {
	Trigger(ctx context.Context, job string, source models.TriggerSource) (syncpkg.RunResult, error)
	Status() []syncpkg.JobStatus
}

// Store is the read side of the database. *database.DB implements it.
type Store interface {
	Ping(ctx context.Context) error
	ListContestsByStatus(ctx context.Context, status models.ContestStatus, ascending bool, limit int) ([]models.Contest, error)
	Leaderboard(ctx context.Context, college string, platform models.Platform, limit int) ([]models.LeaderboardEntry, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListActivity(ctx context.Context, userID, from, to string) ([]models.ActivityRecord, error)
	ListRuns(ctx context.Context, job string, limit int) ([]models.RunRecord, error)
}

// Config holds handler settings.
type Config struct {
	// CronToken is the shared secret trigger requests must present.
	CronToken string

	// TriggerTimeout bounds a run started through a trigger endpoint.
	TriggerTimeout time.Duration

	// Location cuts activity days; nil means UTC.
	Location *time.Location
}

// Response limits.
const (
	UpcomingContestsLimit = 8
	PastContestsLimit     = 20
	MaxLeaderboardLimit   = 500
	MaxActivityDays       = 366
	MaxRunHistoryLimit    = 200

	defaultTriggerTimeout = 10 * time.Minute
)

// Handler holds the dependencies of every route.
type Handler struct {
	store     Store
	jobs      JobRunner
	cfg       Config
	startTime time.Time
	now       func() time.Time
}

// NewHandler creates a handler.
func NewHandler(store Store, jobs JobRunner, cfg Config) *Handler {
	if cfg.TriggerTimeout <= 0 {
		cfg.TriggerTimeout = defaultTriggerTimeout
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Handler{
		store:     store,
		jobs:      jobs,
		cfg:       cfg,
		startTime: time.Now(),
		now:       time.Now,
	}
}
