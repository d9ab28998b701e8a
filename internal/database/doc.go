// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

// Package database is the DuckDB-backed store for users, contests,
// per-day activity and the sync run history.
//
// # Files
//
//   - database.go: connection lifecycle, pool settings and query metrics
//   - database_schema.go: base tables (users, contests, user_activity)
//   - migrations.go: versioned schema changes tracked in schema_migrations
//   - crud_users.go: user upserts, rating updates and the leaderboard
//   - crud_contests.go: contest inserts, status listings and pruning
//   - crud_activity.go: per-day activity upserts and range reads
//   - crud_runs.go: sync run history
//
// # Usage
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	users, err := db.ListUsersWithHandles(ctx)
//
// Every exported query records its latency and error status through the
// metrics package using the operation and table labels.
//
// # Thread Safety
//
// DB wraps a *sql.DB and is safe for concurrent use. Writes that touch more
// than one row group run inside a transaction.
package database
