// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

// Package config loads CPSync configuration.
//
// Configuration is layered with koanf, each layer overriding the previous:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file: $CONFIG_PATH, else the first of DefaultConfigPaths
//  3. Environment variables, mapped explicitly by envTransformFunc
//
// Commonly set environment variables:
//
//	CRON_SECRET_TOKEN   shared secret for the POST /api/cron/* endpoints
//	YOUTUBE_API_KEY     enables solution-video lookup for finished contests
//	DUCKDB_PATH         store location
//	SYNC_TIMEZONE       reference timezone for cron and calendar days (Asia/Kolkata)
//	RATING_CRON, CONTEST_CRON, ACTIVITY_CRON
//	LOCK_BACKEND=redis, REDIS_URL   cross-replica run guard
//	EVENTS_BACKEND=nats, NATS_URL   publish sync events to NATS
//	LOG_LEVEL, LOG_FORMAT
package config
