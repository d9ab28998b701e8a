// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

// Package logging provides the process-wide zerolog logger used by every CPSync component.
//
// The logger is configured once at startup from the logging section of the
// configuration and is safe to use before Init is called (defaults to JSON at
// info level on stderr).
//
//	logging.Init(logging.Config{Level: "debug", Format: "console"})
//	logging.Info().Str("job", "ratings").Msg("Job started")
//
// Context helpers attach request and job-run identifiers so that every line a
// sync run emits can be correlated:
//
//	ctx = logging.ContextWithRunID(ctx, runID)
//	logging.Ctx(ctx).Warn().Err(err).Msg("Codeforces rating fetch failed")
//
// Adapters are provided for log/slog (used by the suture supervisor via
// sutureslog) and for Watermill's LoggerAdapter (used by the event publisher).
package logging
