// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package sync

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/cpsync/internal/database"
	"github.com/tomtom215/cpsync/internal/models"
)

var (
	kolkata  = time.FixedZone("IST", 5*3600+1800)
	fixedNow = time.Date(2025, 6, 4, 12, 0, 0, 0, kolkata)
)

func fixedClock() time.Time { return fixedNow }

// memStore is an in-memory stand-in for *database.DB.
type memStore struct {
	mu         sync.Mutex
	users      []models.User
	contests   map[string]models.Contest
	activity   map[string]models.ActivityRecord
	listErr    error
	updateErr  map[string]error
	upserts    atomic.Int32
	saves      atomic.Int32
	ratingRows map[string]models.Ratings
	scores     map[string]float64
}

func newMemStore(users ...models.User) *memStore {
	return &memStore{
		users:      users,
		contests:   make(map[string]models.Contest),
		activity:   make(map[string]models.ActivityRecord),
		updateErr:  make(map[string]error),
		ratingRows: make(map[string]models.Ratings),
		scores:     make(map[string]float64),
	}
}

func (s *memStore) ListUsersWithHandles(context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.User
	for _, u := range s.users {
		if u.Handles.Any() {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *memStore) UpdateRatings(_ context.Context, userID string, r models.Ratings, score float64, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.updateErr[userID]; err != nil {
		return err
	}
	s.ratingRows[userID] = r
	s.scores[userID] = score
	return nil
}

func (s *memStore) UpsertActivity(_ context.Context, rec *models.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.updateErr[rec.UserID]; err != nil {
		return err
	}
	s.upserts.Add(1)
	s.activity[rec.UserID+"/"+rec.Date] = *rec
	return nil
}

func copyContest(c models.Contest) models.Contest {
	c.Solutions = append([]models.Solution{}, c.Solutions...)
	return c
}

func (s *memStore) GetContest(_ context.Context, id string) (*models.Contest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contests[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	c = copyContest(c)
	return &c, nil
}

func (s *memStore) InsertContest(_ context.Context, c *models.Contest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contests[c.ID]; ok {
		return false, nil
	}
	s.contests[c.ID] = copyContest(*c)
	return true, nil
}

func (s *memStore) SaveContest(_ context.Context, c *models.Contest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.contests[c.ID]
	if !ok {
		return database.ErrNotFound
	}
	s.saves.Add(1)
	stored.Status = c.Status
	stored.Solutions = append([]models.Solution{}, c.Solutions...)
	s.contests[c.ID] = stored
	return nil
}

func (s *memStore) ListContests(context.Context) ([]models.Contest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Contest, 0, len(s.contests))
	for _, c := range s.contests {
		out = append(out, copyContest(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func (s *memStore) PrunePastContests(_ context.Context, keep int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var past []models.Contest
	for _, c := range s.contests {
		if c.Status == models.ContestPast {
			past = append(past, c)
		}
	}
	sort.Slice(past, func(i, j int) bool { return past[i].StartTime.After(past[j].StartTime) })
	var removed int64
	for i := keep; i < len(past); i++ {
		delete(s.contests, past[i].ID)
		removed++
	}
	return removed, nil
}

func (s *memStore) contest(id string) (models.Contest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contests[id]
	return c, ok
}

func (s *memStore) countByStatus(status models.ContestStatus) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.contests {
		if c.Status == status {
			n++
		}
	}
	return n
}

// fakeRatingSource returns canned ratings per handle.
type fakeRatingSource struct {
	platform models.Platform
	ratings  map[string]int
	panics   bool
	calls    atomic.Int32
}

func (f *fakeRatingSource) Platform() models.Platform { return f.platform }

func (f *fakeRatingSource) FetchRating(_ context.Context, handle string) int {
	f.calls.Add(1)
	if f.panics {
		panic("platform exploded")
	}
	return f.ratings[handle]
}

// fakeSubmissionSource returns canned submissions per handle.
type fakeSubmissionSource struct {
	platform models.Platform
	subs     map[string][]models.Submission
	panics   bool
	delay    time.Duration
	calls    atomic.Int32
}

func (f *fakeSubmissionSource) Platform() models.Platform { return f.platform }

func (f *fakeSubmissionSource) FetchSubmissions(_ context.Context, handle string, _ models.DayWindow) []models.Submission {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.panics {
		panic("platform exploded")
	}
	return f.subs[handle]
}

// fakeContestSource returns a fixed contest list.
type fakeContestSource struct {
	name     string
	contests []models.Contest
	calls    atomic.Int32
}

func (f *fakeContestSource) Name() string { return f.name }

func (f *fakeContestSource) FetchContests(context.Context, time.Time) []models.Contest {
	f.calls.Add(1)
	out := make([]models.Contest, len(f.contests))
	for i, c := range f.contests {
		out[i] = copyContest(c)
	}
	return out
}

// fakeVideos returns the same solutions for every contest.
type fakeVideos struct {
	solutions []models.Solution
	calls     atomic.Int32
}

func (f *fakeVideos) SearchSolutions(context.Context, *models.Contest) []models.Solution {
	f.calls.Add(1)
	return append([]models.Solution{}, f.solutions...)
}

// fakeSchedule hands out one next occurrence per platform.
type fakeSchedule struct {
	next  map[models.Platform]models.Contest
	calls atomic.Int32
}

func (f *fakeSchedule) Covers(p models.Platform) bool {
	_, ok := f.next[p]
	return ok
}

func (f *fakeSchedule) NextFor(p models.Platform, _ string, _ time.Time) (models.Contest, bool) {
	f.calls.Add(1)
	c, ok := f.next[p]
	return c, ok
}

// recordingPublisher keeps every published topic.
type recordingPublisher struct {
	mu       sync.Mutex
	topics   []string
	payloads []interface{}
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
}

func (p *recordingPublisher) count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.topics {
		if t == topic {
			n++
		}
	}
	return n
}

// errGuard fails every acquisition.
type errGuard struct{}

func (errGuard) TryAcquire(context.Context) (bool, error) { return false, errors.New("redis: connection refused") }
func (errGuard) Release(context.Context) error            { return nil }
func (errGuard) Held() bool                               { return false }

func testUser(id, cf, cc, lc string) models.User {
	return models.User{
		ID:       id,
		Username: id,
		Name:     "User " + id,
		Handles:  models.Handles{Codeforces: cf, CodeChef: cc, LeetCode: lc},
	}
}

func testContest(id string, platform models.Platform, start time.Time, status models.ContestStatus) models.Contest {
	return models.Contest{
		ID:        id,
		Name:      "Contest " + id,
		Platform:  platform,
		StartTime: start,
		Duration:  2 * time.Hour,
		Link:      "https://example.com/" + id,
		Status:    status,
		Solutions: []models.Solution{},
	}
}

func submission(p models.Platform, id string) models.Submission {
	return models.Submission{Platform: p, ProblemID: id, Title: id, Timestamp: fixedNow.Add(-24 * time.Hour)}
}
