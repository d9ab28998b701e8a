// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

/*
Package api serves the HTTP surface of the sync service using the chi router.

Routes:

	GET  /api/cron/health                 liveness check with per-job status
	POST /api/cron/activity               run the activity job (X-Cron-Token)
	POST /api/cron/contests               run the contest job (X-Cron-Token)
	POST /api/cron/ratings                run the rating job (X-Cron-Token)
	GET  /api/cron/runs                   recorded run history (X-Cron-Token)
	GET  /api/contests/upcoming           next 8 contests, soonest first
	GET  /api/contests/past               last 20 contests, newest first
	GET  /api/leaderboard                 ?college=&platform=&limit=
	GET  /api/users/{username}/activity   ?from=YYYY-MM-DD&to=YYYY-MM-DD
	GET  /metrics                         Prometheus exposition

Trigger endpoints keep the plain {"message": "..."} body external uptime
pingers and cron services expect. Read endpoints use the models.APIResponse
envelope.

Trigger Semantics:

A trigger runs the job synchronously on a context detached from the request
and bounded by the configured trigger timeout, so a client that disconnects
does not abort a half-finished run. A trigger that finds the job already
running returns 200 with "skipped": true.

Middleware Stack:

  - RequestID, AccessLog, RealIP, Recoverer, CORS (global)
  - PrometheusMetrics and security headers on /api routes
  - httprate limits: a general per-IP limit and a strict one on triggers
*/
package api
