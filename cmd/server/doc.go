// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

/*
Command server runs CPSync: the competitive programming sync service.

It keeps a DuckDB database of users, contests and daily activity in step
with Codeforces, CodeChef, LeetCode and a built-in schedule of weekly
contests (AtCoder, CodeChef Starters, GfG Weekly), and serves the synced
data over HTTP.

# Startup

  1. Configuration: defaults, then config.yaml (CONFIG_PATH), then the environment (koanf)
  2. Logging: zerolog, JSON or console
  3. Database: DuckDB schema creation
  4. Video cache: BadgerDB directory for YouTube search results
  5. Event bus: Watermill over GoChannel or NATS JetStream (optional)
  6. Run guards: in-process, or Redis when several replicas share a database
  7. Jobs: ratings, contests and activity, scheduled in the reference timezone
  8. HTTP: chi router with the cron triggers and read endpoints

Every long-lived component runs under a suture supervisor tree. SIGINT and
SIGTERM stop the tree; in-flight job runs finish before the process exits.

# Example

	export CRON_SECRET_TOKEN=$(openssl rand -hex 32)
	export DUCKDB_PATH=/data/cpsync.duckdb
	export YOUTUBE_API_KEY=your-api-key
	./cpsync

	curl -X POST -H "X-Cron-Token: $CRON_SECRET_TOKEN" http://localhost:5000/api/cron/ratings
*/
package main
