// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

/*
Package middleware provides the HTTP middleware shared by every route.

Key Components:

  - RequestID: accepts a well-formed upstream X-Request-ID or generates one,
    echoes it on the response and places it on the logging context
  - AccessLog: one structured log line per request with status, size and
    latency
  - PrometheusMetrics: request counters, latency histograms and the
    in-flight gauge, labelled by chi route pattern

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)

Label Cardinality:

PrometheusMetrics labels requests with the matched chi route pattern
("/api/users/{username}/activity"), never the raw path, so user names do not
end up as label values. Requests that match no route share the "unmatched"
label.
*/
package middleware
