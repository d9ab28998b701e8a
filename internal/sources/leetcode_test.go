// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func leetcodeServer(t *testing.T, answers map[string]string) *LeetCode {
	t.Helper()
	srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/graphql" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var req graphQLRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		for marker, answer := range answers {
			if strings.Contains(req.Query, marker) {
				_, _ = w.Write([]byte(answer))
				return
			}
		}
		t.Errorf("unexpected query %q", req.Query)
		w.WriteHeader(http.StatusBadRequest)
	})
	return NewLeetCode(testClientConfig(srv.URL))
}

func TestLeetCodeFetchRating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		answer string
		want   int
	}{
		{"rounded", `{"data":{"userContestRanking":{"rating":1843.6}}}`, 1844},
		{"no contests", `{"data":{"userContestRanking":null}}`, 0},
		{"errors only", `{"errors":[{"message":"user does not exist"}]}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			lc := leetcodeServer(t, map[string]string{"userContestRanking": tt.answer})
			if got := lc.FetchRating(context.Background(), "alice"); got != tt.want {
				t.Errorf("FetchRating() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLeetCodeFetchSubmissions(t *testing.T) {
	t.Parallel()

	inside := time.Date(2025, 6, 1, 9, 30, 0, 0, kolkata).Unix()
	outside := time.Date(2025, 6, 2, 9, 30, 0, 0, kolkata).Unix()
	answer := fmt.Sprintf(`{"data":{"recentSubmissionList":[
		{"titleSlug":"two-sum","timestamp":"%d","title":"Two Sum","statusDisplay":"Accepted"},
		{"titleSlug":"add-two-numbers","timestamp":"%d","title":"Add Two Numbers","statusDisplay":"Wrong Answer"},
		{"titleSlug":"lru-cache","timestamp":"%d","title":"LRU Cache","statusDisplay":"Accepted"},
		{"titleSlug":"bad-ts","timestamp":"soon","title":"Bad","statusDisplay":"Accepted"}
	]}}`, inside, inside, outside)

	lc := leetcodeServer(t, map[string]string{"recentSubmissionList": answer})
	got := lc.FetchSubmissions(context.Background(), "alice", testWindow("2025-06-01"))
	if len(got) != 1 || got[0].ProblemID != "two-sum" {
		t.Fatalf("FetchSubmissions() = %+v, want only two-sum", got)
	}
	if got[0].Key() != "leetcode-two-sum" {
		t.Errorf("Key() = %q", got[0].Key())
	}
}

func TestLeetCodeFetchContests(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	answer := fmt.Sprintf(`{"data":{"upcomingContests":[
		{"title":"Weekly Contest 452","titleSlug":"weekly-contest-452","startTime":%d,"duration":5400},
		{"title":"Biweekly Contest 158","titleSlug":"biweekly-contest-158","startTime":%d,"duration":5400},
		{"title":"Weekly Contest 453","titleSlug":"weekly-contest-453","startTime":%d,"duration":5400}
	]}}`, now.Add(time.Hour).Unix(), now.Add(24*time.Hour).Unix(), now.Add(7*24*time.Hour).Unix())

	lc := leetcodeServer(t, map[string]string{"upcomingContests": answer})
	got := lc.FetchContests(context.Background(), now)
	if len(got) != 2 {
		t.Fatalf("FetchContests() returned %d, want 2", len(got))
	}
	if got[0].ID != "weekly-contest-452" || got[0].Link != "https://leetcode.com/contest/weekly-contest-452" {
		t.Errorf("contest = %+v", got[0])
	}
	if got[0].DurationLabel() != "1h 30m" {
		t.Errorf("DurationLabel() = %q", got[0].DurationLabel())
	}
}
