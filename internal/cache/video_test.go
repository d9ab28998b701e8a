// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/cpsync/internal/models"
)

func openTestStore(t *testing.T, path string) *VideoStore {
	t.Helper()
	s, err := OpenVideoStore(VideoStoreConfig{Path: path, TTL: time.Hour})
	if err != nil {
		t.Fatalf("OpenVideoStore() error = %v", err)
	}
	return s
}

var testSolutions = []models.Solution{
	{VideoID: "abc123", Title: "ABC 409 A-F", URL: "https://www.youtube.com/watch?v=abc123"},
}

func TestVideoStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t, "")
	defer s.Close()
	ctx := context.Background()

	if _, ok := s.Get(ctx, "AtCoder Beginner Contest 409 AtCoder solution"); ok {
		t.Fatal("Get() on empty store returned a value")
	}
	s.Set(ctx, "AtCoder Beginner Contest 409 AtCoder solution", testSolutions)

	got, ok := s.Get(ctx, "atcoder beginner contest 409 atcoder solution")
	if !ok || len(got) != 1 || got[0].VideoID != "abc123" {
		t.Errorf("Get() = %+v, %v", got, ok)
	}
	if err := s.RunGC(); err != nil {
		t.Errorf("RunGC() error = %v", err)
	}
}

func TestVideoStorePersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	s := openTestStore(t, dir)
	s.Set(ctx, "q", testSolutions)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened := openTestStore(t, dir)
	defer reopened.Close()
	got, ok := reopened.Get(ctx, "q")
	if !ok || len(got) != 1 || got[0].Title != "ABC 409 A-F" {
		t.Errorf("Get() after reopen = %+v, %v", got, ok)
	}
	if st := reopened.Stats(); st.Keys != 1 {
		t.Errorf("memory tier not warmed: %+v", st)
	}
}

func TestVideoStoreServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	s := openTestStore(t, "")
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
