// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package sources

import (
	"context"
	"time"

	"github.com/tomtom215/cpsync/internal/models"
)

// RatingSource fetches a user's current contest rating on one platform.
// FetchRating returns 0 when the handle is invalid, unknown, unrated or the
// platform cannot be reached; an invalid handle never causes a request.
type RatingSource interface {
	Platform() models.Platform
	FetchRating(ctx context.Context, handle string) int
}

// SubmissionSource fetches a user's accepted submissions within a day window.
// It returns an empty slice on any failure and for invalid handles.
type SubmissionSource interface {
	Platform() models.Platform
	FetchSubmissions(ctx context.Context, handle string, window models.DayWindow) []models.Submission
}

// ContestSource lists upcoming contests for one platform or schedule.
// It returns an empty slice on failure.
type ContestSource interface {
	Name() string
	FetchContests(ctx context.Context, now time.Time) []models.Contest
}

// VideoSource looks up solution videos for a finished contest. It returns at
// most models.MaxSolutions results and an empty slice on failure.
type VideoSource interface {
	SearchSolutions(ctx context.Context, contest *models.Contest) []models.Solution
}
