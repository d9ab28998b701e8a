// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package sources

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/tomtom215/cpsync/internal/logging"
	"github.com/tomtom215/cpsync/internal/models"
	"github.com/tomtom215/cpsync/internal/validation"
)

// codeforcesUpcomingLimit is how many upcoming Codeforces rounds are tracked.
const codeforcesUpcomingLimit = 2

// Codeforces talks to the public Codeforces API (https://codeforces.com/apiHelp).
type Codeforces struct {
	c *client
}

var (
	_ RatingSource     = (*Codeforces)(nil)
	_ SubmissionSource = (*Codeforces)(nil)
	_ ContestSource    = (*Codeforces)(nil)
)

// NewCodeforces creates a Codeforces client.
func NewCodeforces(cfg ClientConfig) *Codeforces {
	return &Codeforces{c: newClient(platformName(models.PlatformCodeforces), cfg)}
}

// cfEnvelope is the wrapper every Codeforces API method returns.
type cfEnvelope[T any] struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Result  T      `json:"result"`
}

type cfUser struct {
	Handle string `json:"handle"`
	Rating *int   `json:"rating"`
}

type cfProblem struct {
	ContestID int    `json:"contestId"`
	Index     string `json:"index"`
	Name      string `json:"name"`
}

type cfSubmission struct {
	ID                  int64     `json:"id"`
	ContestID           int       `json:"contestId"`
	CreationTimeSeconds int64     `json:"creationTimeSeconds"`
	Problem             cfProblem `json:"problem"`
	Verdict             string    `json:"verdict"`
}

type cfContest struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Phase            string `json:"phase"`
	DurationSeconds  int64  `json:"durationSeconds"`
	StartTimeSeconds int64  `json:"startTimeSeconds"`
}

// Platform returns Codeforces.
func (cf *Codeforces) Platform() models.Platform { return models.PlatformCodeforces }

// Name identifies the source in logs.
func (cf *Codeforces) Name() string { return cf.c.name }

// FetchRating returns the user's current rating, or 0.
func (cf *Codeforces) FetchRating(ctx context.Context, handle string) int {
	if !validation.ValidHandle(handle) {
		return 0
	}
	rating, err := cf.rating(ctx, handle)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("platform", cf.c.name).Str("handle", handle).Msg("Rating fetch failed")
		return 0
	}
	return rating
}

func (cf *Codeforces) rating(ctx context.Context, handle string) (int, error) {
	var env cfEnvelope[[]cfUser]
	err := cf.c.fetchJSON(ctx, request{
		operation: "rating",
		path:      "/api/user.info",
		query:     url.Values{"handles": {handle}},
	}, &env)
	if err != nil {
		return 0, err
	}
	if env.Status != "OK" {
		return 0, fmt.Errorf("codeforces user.info: %w: status %q: %s", ErrMalformedResponse, env.Status, env.Comment)
	}
	if len(env.Result) == 0 || env.Result[0].Rating == nil {
		return 0, nil
	}
	return *env.Result[0].Rating, nil
}

// FetchSubmissions returns accepted submissions created inside window.
func (cf *Codeforces) FetchSubmissions(ctx context.Context, handle string, window models.DayWindow) []models.Submission {
	if !validation.ValidHandle(handle) {
		return []models.Submission{}
	}
	subs, err := cf.submissions(ctx, handle, window)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("platform", cf.c.name).Str("handle", handle).Msg("Submission fetch failed")
		return []models.Submission{}
	}
	return subs
}

func (cf *Codeforces) submissions(ctx context.Context, handle string, window models.DayWindow) ([]models.Submission, error) {
	var env cfEnvelope[[]cfSubmission]
	err := cf.c.fetchJSON(ctx, request{
		operation: "submissions",
		path:      "/api/user.status",
		query:     url.Values{"handle": {handle}, "from": {"1"}, "count": {"10000"}},
	}, &env)
	if err != nil {
		return nil, err
	}
	if env.Status != "OK" {
		return nil, fmt.Errorf("codeforces user.status: %w: status %q: %s", ErrMalformedResponse, env.Status, env.Comment)
	}

	out := make([]models.Submission, 0)
	for _, s := range env.Result {
		if s.Verdict != "OK" {
			continue
		}
		ts := time.Unix(s.CreationTimeSeconds, 0)
		if !window.Contains(ts) {
			continue
		}
		out = append(out, models.Submission{
			Platform:  models.PlatformCodeforces,
			ProblemID: cfProblemID(s),
			Title:     s.Problem.Name,
			Timestamp: ts,
		})
	}
	return out, nil
}

// cfProblemID is contest id followed by problem index, e.g. "1800A".
func cfProblemID(s cfSubmission) string {
	contestID := s.ContestID
	if contestID == 0 {
		contestID = s.Problem.ContestID
	}
	if contestID == 0 {
		return s.Problem.Index + "-" + s.Problem.Name
	}
	return strconv.Itoa(contestID) + s.Problem.Index
}

// FetchContests returns the next Codeforces rounds that have not started.
func (cf *Codeforces) FetchContests(ctx context.Context, now time.Time) []models.Contest {
	contests, err := cf.contests(ctx, now)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("platform", cf.c.name).Msg("Contest fetch failed")
		return []models.Contest{}
	}
	return contests
}

func (cf *Codeforces) contests(ctx context.Context, now time.Time) ([]models.Contest, error) {
	var env cfEnvelope[[]cfContest]
	req := request{
		operation: opContests,
		path:      "/api/contest.list",
		headers:   browserHeaders("https://codeforces.com/"),
	}
	if err := cf.c.fetchJSON(ctx, req, &env); err != nil {
		return nil, err
	}
	if env.Status != "OK" {
		return nil, fmt.Errorf("codeforces contest.list: %w: status %q", ErrMalformedResponse, env.Status)
	}

	upcoming := make([]cfContest, 0)
	for _, c := range env.Result {
		if c.Phase == "BEFORE" {
			upcoming = append(upcoming, c)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].StartTimeSeconds < upcoming[j].StartTimeSeconds
	})
	if len(upcoming) > codeforcesUpcomingLimit {
		upcoming = upcoming[:codeforcesUpcomingLimit]
	}

	out := make([]models.Contest, 0, len(upcoming))
	for _, c := range upcoming {
		raw := RawContest{
			Name:            c.Name,
			Platform:        models.PlatformCodeforces,
			DurationSeconds: c.DurationSeconds,
		}
		if c.ID != 0 {
			raw.ID = strconv.Itoa(c.ID)
			raw.Link = fmt.Sprintf("https://codeforces.com/contest/%d", c.ID)
		}
		if c.StartTimeSeconds > 0 {
			raw.StartTime = time.Unix(c.StartTimeSeconds, 0)
		}
		out = append(out, Normalize(raw, now))
	}
	return out, nil
}
