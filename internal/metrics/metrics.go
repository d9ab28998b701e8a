// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

// Package metrics defines the Prometheus collectors exported on /metrics.
//
// Collectors are package-level promauto variables; callers use the Record*
// helpers so label values stay consistent.
//
// Metric families:
//   - Job runs: outcome counts, duration, last success, items processed
//   - Source requests: per platform and operation, plus circuit breaker state
//   - Store: DuckDB query latency and errors
//   - HTTP API: request counts, latency, in-flight requests
//   - Contests, events and the solution-video cache
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

var (
	// Job Metrics
	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_job_runs_total",
			Help: "Total number of sync job runs by outcome",
		},
		[]string{"job", "source", "outcome"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_job_duration_seconds",
			Help:    "Duration of completed sync job runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"job"},
	)

	JobLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sync_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful run per job",
		},
		[]string{"job"},
	)

	JobItemsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_job_items_total",
			Help: "Items handled by sync jobs (users or contests) by result",
		},
		[]string{"job", "result"},
	)

	JobRunning = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sync_job_running",
			Help: "1 while a job run is in progress",
		},
		[]string{"job"},
	)

	// Source Metrics
	SourceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_requests_total",
			Help: "Outbound requests to competitive programming platforms",
		},
		[]string{"platform", "operation", "outcome"},
	)

	SourceRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_request_duration_seconds",
			Help:    "Duration of outbound platform requests including retries",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"platform", "operation"},
	)

	SourceRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_retries_total",
			Help: "Retry attempts against platforms",
		},
		[]string{"platform"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests through circuit breakers by result",
		},
		[]string{"name", "result"},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 60, 300},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Domain Metrics
	ContestTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contest_transitions_total",
			Help: "Contests moved from upcoming to past",
		},
		[]string{"platform"},
	)

	ContestsInserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contests_inserted_total",
			Help: "New contests stored",
		},
		[]string{"platform"},
	)

	ContestsPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contests_pruned_total",
			Help: "Past contests deleted by retention",
		},
	)

	ActivityUpserts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_upserts_total",
			Help: "Activity records written",
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Sync events published by topic and result",
		},
		[]string{"topic", "result"},
	)

	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_received_total",
			Help: "Sync events consumed by the in-process subscriber",
		},
		[]string{"topic"},
	)

	VideoCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_cache_lookups_total",
			Help: "Solution-video cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)
)

// RecordJobRun records the outcome of one job run. Skipped runs have no
// duration.
func RecordJobRun(job, source, outcome string, duration time.Duration) {
	JobRunsTotal.WithLabelValues(job, source, outcome).Inc()
	if outcome == OutcomeSkipped {
		return
	}
	JobDuration.WithLabelValues(job).Observe(duration.Seconds())
	if outcome == OutcomeSuccess {
		JobLastSuccess.WithLabelValues(job).Set(float64(time.Now().Unix()))
	}
}

// RecordJobItems adds processed and failed item counts for a run.
func RecordJobItems(job string, processed, failed int) {
	JobItemsProcessed.WithLabelValues(job, "processed").Add(float64(processed))
	JobItemsProcessed.WithLabelValues(job, "failed").Add(float64(failed))
}

// SetJobRunning flags a job as running or idle.
func SetJobRunning(job string, running bool) {
	v := 0.0
	if running {
		v = 1
	}
	JobRunning.WithLabelValues(job).Set(v)
}

// RecordSourceRequest records one logical platform request (after retries).
func RecordSourceRequest(platform, operation string, duration time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	SourceRequestsTotal.WithLabelValues(platform, operation, outcome).Inc()
	SourceRequestDuration.WithLabelValues(platform, operation).Observe(duration.Seconds())
}

// RecordSourceRetry counts a retry attempt.
func RecordSourceRetry(platform string) {
	SourceRetries.WithLabelValues(platform).Inc()
}

// RecordDBQuery records a store query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordEventPublished records a publish attempt.
func RecordEventPublished(topic string, err error) {
	result := OutcomeSuccess
	if err != nil {
		result = OutcomeFailure
	}
	EventsPublished.WithLabelValues(topic, result).Inc()
}

// RecordVideoCacheLookup records a solution-video cache hit or miss.
func RecordVideoCacheLookup(hit bool) {
	if hit {
		VideoCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	VideoCacheLookups.WithLabelValues("miss").Inc()
}
