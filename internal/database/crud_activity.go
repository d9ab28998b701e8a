// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cpsync/internal/models"
)

// UpsertActivity writes the count for (user, date), replacing any earlier
// value for that day.
func (db *DB) UpsertActivity(ctx context.Context, rec *models.ActivityRecord) (err error) {
	start := time.Now()
	defer func() { observe("upsert", "user_activity", start, err) }()

	breakdown := "{}"
	if len(rec.Breakdown) > 0 {
		data, err := json.Marshal(rec.Breakdown)
		if err != nil {
			return fmt.Errorf("encode breakdown: %w", err)
		}
		breakdown = string(data)
	}
	rec.UpdatedAt = time.Now()

	_, err = db.conn.ExecContext(ctx, `INSERT INTO user_activity (user_id, date, count, breakdown, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (user_id, date) DO UPDATE SET
		count = EXCLUDED.count,
		breakdown = EXCLUDED.breakdown,
		updated_at = EXCLUDED.updated_at`,
		rec.UserID, rec.Date, rec.Count, breakdown, rec.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert activity %s/%s: %w", rec.UserID, rec.Date, err)
	}
	return nil
}

// ListActivity returns a user's daily counts between from and to inclusive,
// oldest first. Empty bounds are open.
func (db *DB) ListActivity(ctx context.Context, userID, from, to string) (records []models.ActivityRecord, err error) {
	start := time.Now()
	defer func() { observe("list", "user_activity", start, err) }()

	query := "SELECT user_id, date, count, breakdown, updated_at FROM user_activity WHERE user_id = ?"
	args := []interface{}{userID}
	if from != "" {
		query += " AND date >= ?"
		args = append(args, from)
	}
	if to != "" {
		query += " AND date <= ?"
		args = append(args, to)
	}
	query += " ORDER BY date"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer closeWithLog(rows, "rows")

	records = make([]models.ActivityRecord, 0)
	for rows.Next() {
		var (
			rec       models.ActivityRecord
			breakdown string
		)
		if err := rows.Scan(&rec.UserID, &rec.Date, &rec.Count, &breakdown, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if breakdown != "" && breakdown != "{}" {
			if err := json.Unmarshal([]byte(breakdown), &rec.Breakdown); err != nil {
				return nil, fmt.Errorf("decode breakdown: %w", err)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity: %w", err)
	}
	return records, nil
}
