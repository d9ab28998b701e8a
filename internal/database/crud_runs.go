// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/cpsync/internal/models"
)

// DefaultRunHistoryLimit applies when ListRuns is called with limit <= 0.
const DefaultRunHistoryLimit = 50

// RecordRun appends a finished run to the history. Recording the same run
// ID twice keeps the first row.
func (db *DB) RecordRun(ctx context.Context, run *models.RunRecord) (err error) {
	start := time.Now()
	defer func() { observe("insert", "sync_runs", start, err) }()

	_, err = db.conn.ExecContext(ctx, `INSERT INTO sync_runs
		(run_id, job, source, outcome, started_at, finished_at, processed, failed, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (run_id) DO NOTHING`,
		run.RunID, run.Job, string(run.Source), run.Outcome,
		run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Processed, run.Failed, run.Error,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.RunID, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. An empty job lists
// every job.
func (db *DB) ListRuns(ctx context.Context, job string, limit int) (runs []models.RunRecord, err error) {
	start := time.Now()
	defer func() { observe("list", "sync_runs", start, err) }()

	if limit <= 0 {
		limit = DefaultRunHistoryLimit
	}
	query := `SELECT run_id, job, source, outcome, started_at, finished_at, processed, failed, error FROM sync_runs`
	args := []interface{}{}
	if job != "" {
		query += " WHERE job = ?"
		args = append(args, job)
	}
	query += " ORDER BY started_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer closeWithLog(rows, "rows")

	runs = []models.RunRecord{}
	for rows.Next() {
		var r models.RunRecord
		var source string
		if err := rows.Scan(&r.RunID, &r.Job, &source, &r.Outcome, &r.StartedAt, &r.FinishedAt, &r.Processed, &r.Failed, &r.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Source = models.TriggerSource(source)
		r.StartedAt = r.StartedAt.UTC()
		r.FinishedAt = r.FinishedAt.UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
