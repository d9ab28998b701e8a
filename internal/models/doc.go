// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

// Package models defines the domain types shared by the source clients, the
// sync jobs, the store and the HTTP API: platforms, users and their ratings,
// contests with their solution videos, accepted submissions and the daily
// activity ledger.
package models
