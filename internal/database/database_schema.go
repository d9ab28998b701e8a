// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the tables if they do not exist.
//
// Timestamps are stored as UTC TIMESTAMP. Calendar days in user_activity are
// stored as YYYY-MM-DD text in the sync timezone, so range filters compare
// lexically. There are no secondary indexes: DuckDB rejects
// ON CONFLICT DO UPDATE on indexed columns.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		college_name TEXT NOT NULL DEFAULT '',
		codeforces_handle TEXT NOT NULL DEFAULT '',
		codechef_handle TEXT NOT NULL DEFAULT '',
		leetcode_handle TEXT NOT NULL DEFAULT '',
		codeforces_rating INTEGER NOT NULL DEFAULT 0,
		codechef_rating INTEGER NOT NULL DEFAULT 0,
		leetcode_rating INTEGER NOT NULL DEFAULT 0,
		composite_score DOUBLE NOT NULL DEFAULT 0,
		ratings_updated_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS contests (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		platform TEXT NOT NULL,
		start_time TIMESTAMP NOT NULL,
		duration_seconds BIGINT NOT NULL,
		duration_label TEXT NOT NULL,
		link TEXT NOT NULL,
		status TEXT NOT NULL,
		solutions TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS user_activity (
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		count INTEGER NOT NULL,
		breakdown TEXT NOT NULL DEFAULT '{}',
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, date)
	)`,
}
