// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package sources

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/tomtom215/cpsync/internal/models"
)

func TestCodeforcesFetchRating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"rated", `{"status":"OK","result":[{"handle":"tourist","rating":3800}]}`, 3800},
		{"unrated", `{"status":"OK","result":[{"handle":"newbie"}]}`, 0},
		{"failed status", `{"status":"FAILED","comment":"handles: User not found"}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/user.info" {
					t.Errorf("path = %q", r.URL.Path)
				}
				_, _ = w.Write([]byte(tt.body))
			})
			cf := NewCodeforces(testClientConfig(srv.URL))
			if got := cf.FetchRating(context.Background(), "tourist"); got != tt.want {
				t.Errorf("FetchRating() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCodeforcesFetchSubmissions(t *testing.T) {
	t.Parallel()

	inside := time.Date(2025, 6, 1, 10, 0, 0, 0, kolkata).Unix()
	before := time.Date(2025, 5, 31, 23, 59, 0, 0, kolkata).Unix()
	after := time.Date(2025, 6, 2, 0, 0, 0, 0, kolkata).Unix()

	srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("from") != "1" || q.Get("count") != "10000" {
			t.Errorf("query = %v", q)
		}
		fmt.Fprintf(w, `{"status":"OK","result":[
			{"id":1,"contestId":1800,"creationTimeSeconds":%d,"problem":{"index":"A","name":"Alpha"},"verdict":"OK"},
			{"id":2,"contestId":1800,"creationTimeSeconds":%d,"problem":{"index":"B","name":"Beta"},"verdict":"WRONG_ANSWER"},
			{"id":3,"contestId":1800,"creationTimeSeconds":%d,"problem":{"index":"C","name":"Gamma"},"verdict":"OK"},
			{"id":4,"contestId":1800,"creationTimeSeconds":%d,"problem":{"index":"D","name":"Delta"},"verdict":"OK"},
			{"id":5,"contestId":1800,"creationTimeSeconds":%d,"problem":{"index":"A","name":"Alpha"},"verdict":"OK"}
		]}`, inside, inside, before, after, inside+60)
	})
	cf := NewCodeforces(testClientConfig(srv.URL))

	got := cf.FetchSubmissions(context.Background(), "tourist", testWindow("2025-06-01"))
	if len(got) != 2 {
		t.Fatalf("FetchSubmissions() returned %d submissions, want 2: %+v", len(got), got)
	}
	for _, s := range got {
		if s.ProblemID != "1800A" || s.Platform != models.PlatformCodeforces {
			t.Errorf("submission = %+v, want 1800A", s)
		}
	}
	if unique := models.DedupSubmissions(got); len(unique) != 1 {
		t.Errorf("DedupSubmissions() = %d, want 1", len(unique))
	}
}

func TestCodeforcesFetchContests(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"status":"OK","result":[
			{"id":2103,"name":"Round C","phase":"BEFORE","durationSeconds":7200,"startTimeSeconds":%d},
			{"id":2101,"name":"Round A","phase":"BEFORE","durationSeconds":9000,"startTimeSeconds":%d},
			{"id":2100,"name":"Round Old","phase":"FINISHED","durationSeconds":7200,"startTimeSeconds":%d},
			{"id":2102,"name":"Round B","phase":"BEFORE","durationSeconds":7200,"startTimeSeconds":%d}
		]}`, now.Add(72*time.Hour).Unix(), now.Add(24*time.Hour).Unix(), now.Add(-72*time.Hour).Unix(), now.Add(48*time.Hour).Unix())
	})
	cf := NewCodeforces(testClientConfig(srv.URL))

	got := cf.FetchContests(context.Background(), now)
	if len(got) != 2 {
		t.Fatalf("FetchContests() returned %d contests, want 2", len(got))
	}
	if got[0].ID != "2101" || got[1].ID != "2102" {
		t.Errorf("ids = %q, %q, want 2101, 2102", got[0].ID, got[1].ID)
	}
	c := got[0]
	if c.Link != "https://codeforces.com/contest/2101" {
		t.Errorf("Link = %q", c.Link)
	}
	if c.Duration != 150*time.Minute || c.DurationLabel() != "2h 30m" {
		t.Errorf("Duration = %v (%q)", c.Duration, c.DurationLabel())
	}
	if c.Status != models.ContestUpcoming {
		t.Errorf("Status = %q, want upcoming", c.Status)
	}
}

func TestCodeforcesFetchContestsFailureIsEmpty(t *testing.T) {
	t.Parallel()

	srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	cf := NewCodeforces(testClientConfig(srv.URL))
	got := cf.FetchContests(context.Background(), time.Now())
	if got == nil || len(got) != 0 {
		t.Errorf("FetchContests() = %v, want empty non-nil slice", got)
	}
}
