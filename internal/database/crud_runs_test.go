// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package database

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/cpsync/internal/models"
)

func testRun(id, job string, started time.Time) *models.RunRecord {
	return &models.RunRecord{
		RunID: id, Job: job, Source: models.TriggerCron, Outcome: "success",
		StartedAt: started, FinishedAt: started.Add(3 * time.Second), Processed: 10,
	}
}

func TestRecordAndListRuns(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 4, 6, 30, 0, 0, time.UTC)

	failed := testRun("r2", "ratings", base.Add(time.Hour))
	failed.Outcome, failed.Failed, failed.Error = "failure", 2, "list users: connection refused"
	for _, run := range []*models.RunRecord{
		testRun("r1", "ratings", base),
		failed,
		testRun("c1", "contests", base.Add(30*time.Minute)),
	} {
		if err := db.RecordRun(ctx, run); err != nil {
			t.Fatalf("RecordRun(%s) error = %v", run.RunID, err)
		}
	}

	all, err := db.ListRuns(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(all) != 3 || all[0].RunID != "r2" || all[2].RunID != "r1" {
		t.Fatalf("ListRuns() order = %+v", all)
	}
	if all[0].Error != failed.Error || all[0].Failed != 2 || all[0].Duration() != 3*time.Second {
		t.Errorf("failed run = %+v", all[0])
	}

	ratings, err := db.ListRuns(ctx, "ratings", 1)
	if err != nil {
		t.Fatalf("ListRuns(ratings) error = %v", err)
	}
	if len(ratings) != 1 || ratings[0].RunID != "r2" || ratings[0].Source != models.TriggerCron {
		t.Errorf("ListRuns(ratings, 1) = %+v", ratings)
	}
}

func TestRecordRunIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	run := testRun("dup", "activity", time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC))

	for i := 0; i < 2; i++ {
		if err := db.RecordRun(ctx, run); err != nil {
			t.Fatalf("RecordRun() #%d error = %v", i, err)
		}
	}
	runs, err := db.ListRuns(ctx, "activity", 10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("ListRuns() = %d rows, want 1", len(runs))
	}
}

func TestListRunsEmpty(t *testing.T) {
	db := setupTestDB(t)
	runs, err := db.ListRuns(context.Background(), "contests", 5)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if runs == nil || len(runs) != 0 {
		t.Errorf("ListRuns() = %#v, want empty slice", runs)
	}
}
