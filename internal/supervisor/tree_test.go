// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cpsync/internal/models"
	"github.com/tomtom215/cpsync/internal/scheduler"
	"github.com/tomtom215/cpsync/internal/supervisor/services"
	syncpkg "github.com/tomtom215/cpsync/internal/sync"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testService fails failures times, then runs until canceled.
type testService struct {
	name     string
	failures int32
	starts   atomic.Int32
}

func (s *testService) Serve(ctx context.Context) error {
	if n := s.starts.Add(1); n <= s.failures {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *testService) String() string { return s.name }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("root supervisor is nil")
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want defaults", tree.config)
	}

	custom := TreeConfig{FailureThreshold: 2, FailureDecay: 1, FailureBackoff: time.Second, ShutdownTimeout: 3 * time.Second}
	tree, _ = NewSupervisorTree(quietLogger(), custom)
	if tree.config != custom {
		t.Errorf("config = %+v, want %+v", tree.config, custom)
	}
}

func TestSupervisorTree_StartsEveryLayer(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})

	data := &testService{name: "data"}
	jobs := &testService{name: "jobs"}
	api := &testService{name: "api"}
	tree.AddDataService(data)
	tree.AddJobService(jobs)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitFor(t, func() bool {
		return data.starts.Load() > 0 && jobs.starts.Load() > 0 && api.starts.Load() > 0
	})
	cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop")
	}
	if report, err := tree.UnstoppedServiceReport(); err != nil || len(report) != 0 {
		t.Errorf("unstopped services: %v, %v", report, err)
	}
}

func TestSupervisorTree_RestartsFailingService(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	failing := &testService{name: "failing", failures: 2}
	stable := &testService{name: "stable"}
	tree.AddJobService(failing)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	waitFor(t, func() bool { return failing.starts.Load() >= 3 })
	if stable.starts.Load() != 1 {
		t.Errorf("stable service started %d times, want 1", stable.starts.Load())
	}
	cancel()
	<-errCh
}

// countingJob is a minimal sync job.
type countingJob struct {
	runs atomic.Int32
}

func (j *countingJob) Name() string { return syncpkg.JobRatings }

func (j *countingJob) Run(_ context.Context, source models.TriggerSource) syncpkg.RunResult {
	j.runs.Add(1)
	now := time.Now()
	return syncpkg.RunResult{Job: syncpkg.JobRatings, Source: source, StartedAt: now, FinishedAt: now}
}

func TestSupervisorTree_RunsSyncManager(t *testing.T) {
	job := &countingJob{}
	sched := scheduler.New(scheduler.Config{Location: time.UTC, RunOnStart: true}, zerolog.Nop())
	manager := syncpkg.NewManager(sched, job)
	if err := manager.Schedule(syncpkg.JobRatings, "0 0 1 1 *"); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	tree.AddJobService(services.NewJobManagerService(manager))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitFor(t, func() bool { return job.runs.Load() > 0 })
	cancel()
	<-errCh

	if _, err := manager.Trigger(context.Background(), syncpkg.JobRatings, models.TriggerAPI); !errors.Is(err, syncpkg.ErrStopped) {
		t.Errorf("Trigger after shutdown: %v, want ErrStopped", err)
	}
}
