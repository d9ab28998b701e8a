// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/cpsync/internal/models"
)

func testContest(id string, start time.Time, status models.ContestStatus) *models.Contest {
	return &models.Contest{
		ID:        id,
		Name:      "Contest " + id,
		Platform:  models.PlatformCodeforces,
		StartTime: start,
		Duration:  150 * time.Minute,
		Link:      "https://codeforces.com/contest/" + id,
		Status:    status,
	}
}

func TestInsertContestIsInsertIfAbsent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 14, 35, 0, 0, time.UTC)

	inserted, err := db.InsertContest(ctx, testContest("2101", start, models.ContestUpcoming))
	if err != nil || !inserted {
		t.Fatalf("InsertContest() = %v, %v, want true", inserted, err)
	}

	dup := testContest("2101", start.Add(time.Hour), models.ContestUpcoming)
	dup.Name = "Renamed"
	inserted, err = db.InsertContest(ctx, dup)
	if err != nil || inserted {
		t.Fatalf("InsertContest(duplicate) = %v, %v, want false", inserted, err)
	}

	got, err := db.GetContest(ctx, "2101")
	if err != nil {
		t.Fatalf("GetContest() error = %v", err)
	}
	if got.Name != "Contest 2101" || !got.StartTime.Equal(start) {
		t.Errorf("duplicate insert modified the contest: %+v", got)
	}
	if got.Duration != 150*time.Minute || got.Platform != models.PlatformCodeforces {
		t.Errorf("GetContest() = %+v", got)
	}
	if got.Solutions == nil || len(got.Solutions) != 0 {
		t.Errorf("Solutions = %v, want empty", got.Solutions)
	}

	if _, err := db.GetContest(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetContest(nope) error = %v, want ErrNotFound", err)
	}
}

func TestSaveContest(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	c := testContest("abc409", time.Date(2025, 6, 7, 12, 0, 0, 0, time.UTC), models.ContestUpcoming)
	if _, err := db.InsertContest(ctx, c); err != nil {
		t.Fatalf("InsertContest() error = %v", err)
	}

	c.MarkPast()
	c.Solutions = []models.Solution{{VideoID: "v1", Title: "Editorial", URL: "https://www.youtube.com/watch?v=v1"}}
	if err := db.SaveContest(ctx, c); err != nil {
		t.Fatalf("SaveContest() error = %v", err)
	}

	got, err := db.GetContest(ctx, "abc409")
	if err != nil {
		t.Fatalf("GetContest() error = %v", err)
	}
	if got.Status != models.ContestPast || len(got.Solutions) != 1 || got.Solutions[0].VideoID != "v1" {
		t.Errorf("GetContest() = %+v", got)
	}

	if err := db.SaveContest(ctx, testContest("ghost", time.Now(), models.ContestPast)); !errors.Is(err, ErrNotFound) {
		t.Errorf("SaveContest(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestListContestsByStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		status := models.ContestUpcoming
		if i%2 == 0 {
			status = models.ContestPast
		}
		if _, err := db.InsertContest(ctx, testContest(fmt.Sprintf("c%d", i), base.Add(time.Duration(i)*24*time.Hour), status)); err != nil {
			t.Fatalf("InsertContest() error = %v", err)
		}
	}

	upcoming, err := db.ListContestsByStatus(ctx, models.ContestUpcoming, true, 8)
	if err != nil {
		t.Fatalf("ListContestsByStatus() error = %v", err)
	}
	if len(upcoming) != 2 || upcoming[0].ID != "c1" || upcoming[1].ID != "c3" {
		t.Errorf("upcoming = %v", contestIDs(upcoming))
	}

	past, err := db.ListContestsByStatus(ctx, models.ContestPast, false, 2)
	if err != nil {
		t.Fatalf("ListContestsByStatus() error = %v", err)
	}
	if len(past) != 2 || past[0].ID != "c4" || past[1].ID != "c2" {
		t.Errorf("past = %v", contestIDs(past))
	}

	all, err := db.ListContests(ctx)
	if err != nil {
		t.Fatalf("ListContests() error = %v", err)
	}
	if len(all) != 5 || all[0].ID != "c0" {
		t.Errorf("all = %v", contestIDs(all))
	}
}

func TestPrunePastContests(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 25; i++ {
		if _, err := db.InsertContest(ctx, testContest(fmt.Sprintf("p%02d", i), base.Add(time.Duration(i)*time.Hour), models.ContestPast)); err != nil {
			t.Fatalf("InsertContest() error = %v", err)
		}
	}
	if _, err := db.InsertContest(ctx, testContest("up", base, models.ContestUpcoming)); err != nil {
		t.Fatalf("InsertContest() error = %v", err)
	}

	removed, err := db.PrunePastContests(ctx, 20)
	if err != nil {
		t.Fatalf("PrunePastContests() error = %v", err)
	}
	if removed != 5 {
		t.Errorf("removed = %d, want 5", removed)
	}

	past, err := db.ListContestsByStatus(ctx, models.ContestPast, false, 0)
	if err != nil {
		t.Fatalf("ListContestsByStatus() error = %v", err)
	}
	if len(past) != 20 || past[0].ID != "p24" || past[19].ID != "p05" {
		t.Errorf("kept = %v", contestIDs(past))
	}
	if _, err := db.GetContest(ctx, "up"); err != nil {
		t.Errorf("upcoming contest pruned: %v", err)
	}

	removed, err = db.PrunePastContests(ctx, 20)
	if err != nil || removed != 0 {
		t.Errorf("second PrunePastContests() = %d, %v, want 0", removed, err)
	}
}

func contestIDs(cs []models.Contest) []string {
	ids := make([]string, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, c.ID)
	}
	return ids
}
