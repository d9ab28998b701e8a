// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package sources

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cpsync/internal/logging"
	"github.com/tomtom215/cpsync/internal/models"
	"github.com/tomtom215/cpsync/internal/validation"
)

const leetcodeUpcomingLimit = 2

const (
	lcRatingQuery = `query getUserContestRanking($username: String!) {
  userContestRanking(username: $username) { rating }
}`

	lcSubmissionsQuery = `query recentSubmissions($username: String!) {
  recentSubmissionList(username: $username) { titleSlug timestamp title statusDisplay }
}`

	lcContestsQuery = `query upcomingContests {
  upcomingContests { title titleSlug startTime duration }
}`
)

// LeetCode queries the leetcode.com GraphQL endpoint.
type LeetCode struct {
	c *client
}

var (
	_ RatingSource     = (*LeetCode)(nil)
	_ SubmissionSource = (*LeetCode)(nil)
	_ ContestSource    = (*LeetCode)(nil)
)

// NewLeetCode creates a LeetCode client.
func NewLeetCode(cfg ClientConfig) *LeetCode {
	return &LeetCode{c: newClient(platformName(models.PlatformLeetCode), cfg)}
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse[T any] struct {
	Data   *T             `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// query posts a GraphQL document and returns the data member. A response
// with errors but no data is malformed; partial data is accepted.
func query[T any](ctx context.Context, c *client, operation, doc string, vars map[string]interface{}) (*T, error) {
	body, err := json.Marshal(graphQLRequest{Query: doc, Variables: vars})
	if err != nil {
		return nil, permanent(fmt.Errorf("encode graphql request: %w", err))
	}

	headers := browserHeaders(c.baseURL + "/")
	headers["Content-Type"] = "application/json"
	headers["Accept"] = "application/json"

	var resp graphQLResponse[T]
	err = c.fetchJSON(ctx, request{
		operation: operation,
		method:    http.MethodPost,
		path:      "/graphql",
		body:      body,
		headers:   headers,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Data == nil {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("%s %s: %w: no data (%s)", c.name, operation, ErrMalformedResponse, strings.Join(msgs, "; "))
	}
	return resp.Data, nil
}

// Platform returns LeetCode.
func (lc *LeetCode) Platform() models.Platform { return models.PlatformLeetCode }

// Name identifies the source in logs.
func (lc *LeetCode) Name() string { return lc.c.name }

// FetchRating returns the rounded contest rating, or 0 when the user has no
// contest history.
func (lc *LeetCode) FetchRating(ctx context.Context, handle string) int {
	if !validation.ValidHandle(handle) {
		return 0
	}
	data, err := query[struct {
		UserContestRanking *struct {
			Rating float64 `json:"rating"`
		} `json:"userContestRanking"`
	}](ctx, lc.c, "rating", lcRatingQuery, map[string]interface{}{"username": handle})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("platform", lc.c.name).Str("handle", handle).Msg("Rating fetch failed")
		return 0
	}
	if data.UserContestRanking == nil {
		return 0
	}
	return int(math.Round(data.UserContestRanking.Rating))
}

type lcSubmission struct {
	TitleSlug     string `json:"titleSlug"`
	Timestamp     string `json:"timestamp"`
	Title         string `json:"title"`
	StatusDisplay string `json:"statusDisplay"`
}

// FetchSubmissions returns accepted submissions from the user's recent list
// that fall inside window.
func (lc *LeetCode) FetchSubmissions(ctx context.Context, handle string, window models.DayWindow) []models.Submission {
	if !validation.ValidHandle(handle) {
		return []models.Submission{}
	}
	data, err := query[struct {
		RecentSubmissionList []lcSubmission `json:"recentSubmissionList"`
	}](ctx, lc.c, "submissions", lcSubmissionsQuery, map[string]interface{}{"username": handle})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("platform", lc.c.name).Str("handle", handle).Msg("Submission fetch failed")
		return []models.Submission{}
	}

	out := make([]models.Submission, 0)
	for _, s := range data.RecentSubmissionList {
		if s.StatusDisplay != "Accepted" {
			continue
		}
		secs, err := strconv.ParseInt(strings.TrimSpace(s.Timestamp), 10, 64)
		if err != nil {
			continue
		}
		ts := time.Unix(secs, 0)
		if !window.Contains(ts) {
			continue
		}
		out = append(out, models.Submission{
			Platform:  models.PlatformLeetCode,
			ProblemID: s.TitleSlug,
			Title:     s.Title,
			Timestamp: ts,
		})
	}
	return out
}

type lcContest struct {
	Title     string `json:"title"`
	TitleSlug string `json:"titleSlug"`
	StartTime int64  `json:"startTime"`
	Duration  int64  `json:"duration"`
}

// FetchContests returns the next LeetCode weekly/biweekly contests.
func (lc *LeetCode) FetchContests(ctx context.Context, now time.Time) []models.Contest {
	data, err := query[struct {
		UpcomingContests []lcContest `json:"upcomingContests"`
	}](ctx, lc.c, opContests, lcContestsQuery, nil)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("platform", lc.c.name).Msg("Contest fetch failed")
		return []models.Contest{}
	}

	upcoming := data.UpcomingContests
	if len(upcoming) > leetcodeUpcomingLimit {
		upcoming = upcoming[:leetcodeUpcomingLimit]
	}
	out := make([]models.Contest, 0, len(upcoming))
	for _, c := range upcoming {
		raw := RawContest{
			ID:              c.TitleSlug,
			Name:            c.Title,
			Platform:        models.PlatformLeetCode,
			DurationSeconds: c.Duration,
		}
		if c.TitleSlug != "" {
			raw.Link = "https://leetcode.com/contest/" + c.TitleSlug
		}
		if c.StartTime > 0 {
			raw.StartTime = time.Unix(c.StartTime, 0)
		}
		out = append(out, Normalize(raw, now))
	}
	return out
}
