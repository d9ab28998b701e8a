// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package events

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/cpsync/internal/logging"
	"github.com/tomtom215/cpsync/internal/metrics"
	"github.com/tomtom215/cpsync/internal/models"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	bus, err := New(Config{Backend: "gochannel"}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func TestBusPublishSubscribe(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, TopicContestEnded)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	contest := &models.Contest{
		ID: "abc409", Name: "AtCoder Beginner Contest 409", Platform: models.PlatformAtCoder,
		StartTime: time.Date(2025, 6, 7, 12, 0, 0, 0, time.UTC), Duration: 100 * time.Minute,
		Solutions: []models.Solution{{VideoID: "v"}},
	}
	runCtx := logging.ContextWithRun(ctx, "contests", "r1")
	bus.Publish(runCtx, TopicContestEnded, NewContestEnded(contest))

	select {
	case msg := <-ch:
		defer msg.Ack()
		if msg.Metadata.Get(MetadataJob) != "contests" || msg.Metadata.Get(MetadataRunID) != "r1" {
			t.Errorf("metadata = %v", msg.Metadata)
		}
		var got ContestEnded
		if err := json.Unmarshal(msg.Payload, &got); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if got.ContestID != "abc409" || got.Solutions != 1 || !got.EndTime.Equal(contest.EndTime()) {
			t.Errorf("payload = %+v", got)
		}
		if msg.UUID == "" {
			t.Error("message has no id")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestBusPublishAfterCloseIsCounted(t *testing.T) {
	bus := newTestBus(t)
	if err := bus.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	before := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues(TopicRatingsUpdated, metrics.OutcomeFailure))
	bus.Publish(context.Background(), TopicRatingsUpdated, RatingsUpdated{Users: 1})
	after := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues(TopicRatingsUpdated, metrics.OutcomeFailure))
	if after != before+1 {
		t.Errorf("failure counter = %v, want %v", after, before+1)
	}
}

func TestNewUnknownBackend(t *testing.T) {
	if _, err := New(Config{Backend: "kafka"}, nil); err == nil {
		t.Error("New(kafka) error = nil, want error")
	}
}

func TestDiscard(t *testing.T) {
	var p Publisher = Discard{}
	p.Publish(context.Background(), TopicActivityRecorded, ActivityRecorded{})
}

func TestLogServiceConsumes(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())

	svc := NewLogService(bus, TopicActivityRecorded)
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	before := testutil.ToFloat64(metrics.EventsReceived.WithLabelValues(TopicActivityRecorded))
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		bus.Publish(ctx, TopicActivityRecorded, ActivityRecorded{Date: "2025-06-01", Users: 2})
		if testutil.ToFloat64(metrics.EventsReceived.WithLabelValues(TopicActivityRecorded)) > before {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if testutil.ToFloat64(metrics.EventsReceived.WithLabelValues(TopicActivityRecorded)) <= before {
		t.Error("log service received nothing")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
	if svc.String() != "event-log" {
		t.Errorf("String() = %q", svc.String())
	}
}
