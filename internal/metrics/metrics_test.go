// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordJobRun(t *testing.T) {
	before := testutil.ToFloat64(JobRunsTotal.WithLabelValues("contests", "api", OutcomeSkipped))
	RecordJobRun("contests", "api", OutcomeSkipped, 0)
	after := testutil.ToFloat64(JobRunsTotal.WithLabelValues("contests", "api", OutcomeSkipped))
	if after-before != 1 {
		t.Errorf("skipped counter delta = %v, want 1", after-before)
	}

	RecordJobRun("contests", "cron", OutcomeSuccess, time.Second)
	if testutil.ToFloat64(JobLastSuccess.WithLabelValues("contests")) == 0 {
		t.Error("last success timestamp should be set after a successful run")
	}
}

func TestRecordSourceRequest(t *testing.T) {
	before := testutil.ToFloat64(SourceRequestsTotal.WithLabelValues("codeforces", "rating", OutcomeFailure))
	RecordSourceRequest("codeforces", "rating", 10*time.Millisecond, errors.New("timeout"))
	after := testutil.ToFloat64(SourceRequestsTotal.WithLabelValues("codeforces", "rating", OutcomeFailure))
	if after-before != 1 {
		t.Errorf("failure counter delta = %v, want 1", after-before)
	}
}

func TestSetJobRunning(t *testing.T) {
	SetJobRunning("ratings", true)
	if got := testutil.ToFloat64(JobRunning.WithLabelValues("ratings")); got != 1 {
		t.Errorf("running = %v, want 1", got)
	}
	SetJobRunning("ratings", false)
	if got := testutil.ToFloat64(JobRunning.WithLabelValues("ratings")); got != 0 {
		t.Errorf("running = %v, want 0", got)
	}
}

func TestRecordVideoCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(VideoCacheLookups.WithLabelValues("hit"))
	misses := testutil.ToFloat64(VideoCacheLookups.WithLabelValues("miss"))
	RecordVideoCacheLookup(true)
	RecordVideoCacheLookup(false)
	RecordVideoCacheLookup(false)
	if d := testutil.ToFloat64(VideoCacheLookups.WithLabelValues("hit")) - hits; d != 1 {
		t.Errorf("hit delta = %v", d)
	}
	if d := testutil.ToFloat64(VideoCacheLookups.WithLabelValues("miss")) - misses; d != 2 {
		t.Errorf("miss delta = %v", d)
	}
}
