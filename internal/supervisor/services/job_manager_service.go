// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package services

import (
	"context"
	"fmt"
)

// StartStopManager is the lifecycle of the sync manager.
type StartStopManager interface {
	Start(ctx context.Context) error
	Stop() error
}

// JobManagerService runs the sync manager under the supervisor: Start on
// entry, Stop once the context is canceled. Stop waits for in-flight runs.
type JobManagerService struct {
	manager StartStopManager
	name    string
}

// NewJobManagerService wraps manager.
func NewJobManagerService(manager StartStopManager) *JobManagerService {
	return &JobManagerService{
		manager: manager,
		name:    "sync-manager",
	}
}

// Serve implements suture.Service. A Start failure is returned so suture
// restarts the service with backoff.
func (s *JobManagerService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("sync manager start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("sync manager stop failed: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer.
func (s *JobManagerService) String() string {
	return s.name
}
