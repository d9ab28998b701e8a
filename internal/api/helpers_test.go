// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cpsync/internal/database"
	"github.com/tomtom215/cpsync/internal/models"
	syncpkg "github.com/tomtom215/cpsync/internal/sync"
)

const testToken = "s3cret-token"

var kolkata = time.FixedZone("IST", 5*3600+1800)

type triggerCall struct {
	job         string
	source      models.TriggerSource
	ctxErr      error
	hasDeadline bool
}

// fakeRunner records triggers and returns canned results.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []triggerCall
	results map[string]syncpkg.RunResult
	errs    map[string]error
	status  []syncpkg.JobStatus
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{results: map[string]syncpkg.RunResult{}, errs: map[string]error{}}
}

func (f *fakeRunner) Trigger(ctx context.Context, job string, source models.TriggerSource) (syncpkg.RunResult, error) {
	_, hasDeadline := ctx.Deadline()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, triggerCall{job: job, source: source, ctxErr: ctx.Err(), hasDeadline: hasDeadline})
	res, ok := f.results[job]
	if !ok {
		res = syncpkg.RunResult{Job: job, Source: source, RunID: "run-" + job}
	}
	return res, f.errs[job]
}

func (f *fakeRunner) Status() []syncpkg.JobStatus { return f.status }

// fakeStore serves canned data.
type fakeStore struct {
	pingErr  error
	contests map[models.ContestStatus][]models.Contest
	users    map[string]*models.User
	activity map[string][]models.ActivityRecord
	failAll  bool

	mu               sync.Mutex
	lastContestQuery struct {
		status    models.ContestStatus
		ascending bool
		limit     int
	}
	lastLeaderboard struct {
		college  string
		platform models.Platform
		limit    int
	}
	lastActivityRange [2]string
	runs              []models.RunRecord
	lastRunQuery      struct {
		job   string
		limit int
	}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		contests: map[models.ContestStatus][]models.Contest{},
		users:    map[string]*models.User{},
		activity: map[string][]models.ActivityRecord{},
	}
}

var errStoreDown = errors.New("database is closed")

func (s *fakeStore) Ping(context.Context) error { return s.pingErr }

func (s *fakeStore) ListContestsByStatus(_ context.Context, status models.ContestStatus, ascending bool, limit int) ([]models.Contest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return nil, errStoreDown
	}
	s.lastContestQuery.status, s.lastContestQuery.ascending, s.lastContestQuery.limit = status, ascending, limit
	return s.contests[status], nil
}

func (s *fakeStore) Leaderboard(_ context.Context, college string, platform models.Platform, limit int) ([]models.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return nil, errStoreDown
	}
	s.lastLeaderboard.college, s.lastLeaderboard.platform, s.lastLeaderboard.limit = college, platform, limit
	return []models.LeaderboardEntry{{Rank: 1, Username: "tourist", CompositeScore: 9000}}, nil
}

func (s *fakeStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	if s.failAll {
		return nil, errStoreDown
	}
	u, ok := s.users[username]
	if !ok {
		return nil, database.ErrNotFound
	}
	return u, nil
}

func (s *fakeStore) ListActivity(_ context.Context, userID, from, to string) ([]models.ActivityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivityRange = [2]string{from, to}
	return s.activity[userID], nil
}

func (s *fakeStore) ListRuns(_ context.Context, job string, limit int) ([]models.RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return nil, errStoreDown
	}
	s.lastRunQuery.job, s.lastRunQuery.limit = job, limit
	return s.runs, nil
}

func newTestRouter(t *testing.T, store Store, runner JobRunner, mw *ChiMiddlewareConfig) http.Handler {
	t.Helper()
	h := NewHandler(store, runner, Config{CronToken: testToken, TriggerTimeout: time.Minute, Location: kolkata})
	h.now = func() time.Time { return time.Date(2025, 6, 4, 12, 0, 0, 0, kolkata) }
	if mw == nil {
		mw = DefaultChiMiddlewareConfig()
		mw.RateLimitDisabled = true
	}
	return NewRouter(h, NewChiMiddleware(mw)).SetupChi()
}

func do(t *testing.T, h http.Handler, method, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(""))
	if token != "" {
		req.Header.Set(CronTokenHeader, token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}
