// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

// Package sources contains the clients for the third-party platforms CPSync
// synchronizes from: Codeforces and LeetCode JSON/GraphQL APIs, CodeChef
// profile pages, schedule-generated weekly contests (AtCoder, CodeChef
// Starters, GfG Weekly) and the YouTube Data API for solution videos.
//
// Every public fetch method degrades instead of failing: a rating fetch that
// cannot be completed returns 0, a list fetch returns an empty slice, and the
// cause is logged. Callers therefore never need to distinguish "platform
// unreachable" from "nothing to report", which is what the sync jobs want.
//
// Outbound requests share one plumbing layer (client.go): per-platform
// timeout, outbound rate limiter, circuit breaker, HTTP 429 handling and a
// bounded retry with exponential backoff (retry.go).
package sources
