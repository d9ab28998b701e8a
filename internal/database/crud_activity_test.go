// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package database

import (
	"context"
	"testing"

	"github.com/tomtom215/cpsync/internal/models"
)

func TestUpsertActivityReplacesDay(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := models.ActivityRecord{UserID: "u1", Date: "2025-06-01", Count: 3, Breakdown: map[models.Platform]int{models.PlatformCodeforces: 3}}
	if err := db.UpsertActivity(ctx, &first); err != nil {
		t.Fatalf("UpsertActivity() error = %v", err)
	}
	second := models.ActivityRecord{UserID: "u1", Date: "2025-06-01", Count: 5, Breakdown: map[models.Platform]int{models.PlatformLeetCode: 5}}
	if err := db.UpsertActivity(ctx, &second); err != nil {
		t.Fatalf("UpsertActivity() error = %v", err)
	}

	got, err := db.ListActivity(ctx, "u1", "", "")
	if err != nil {
		t.Fatalf("ListActivity() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ListActivity() returned %d records, want 1", len(got))
	}
	if got[0].Count != 5 || got[0].Breakdown[models.PlatformLeetCode] != 5 || got[0].Breakdown[models.PlatformCodeforces] != 0 {
		t.Errorf("record = %+v", got[0])
	}
}

func TestListActivityRange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, rec := range []models.ActivityRecord{
		{UserID: "u1", Date: "2025-05-30", Count: 1},
		{UserID: "u1", Date: "2025-05-31", Count: 0},
		{UserID: "u1", Date: "2025-06-01", Count: 2},
		{UserID: "u2", Date: "2025-06-01", Count: 9},
	} {
		rec := rec
		if err := db.UpsertActivity(ctx, &rec); err != nil {
			t.Fatalf("UpsertActivity() error = %v", err)
		}
	}

	got, err := db.ListActivity(ctx, "u1", "2025-05-31", "2025-06-01")
	if err != nil {
		t.Fatalf("ListActivity() error = %v", err)
	}
	if len(got) != 2 || got[0].Date != "2025-05-31" || got[1].Date != "2025-06-01" {
		t.Errorf("ListActivity() = %+v", got)
	}
	if got[0].Count != 0 {
		t.Errorf("zero-count day = %+v", got[0])
	}
}
