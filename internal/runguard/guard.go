// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package runguard

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrNotHeld is returned by Release when the guard was not held.
var ErrNotHeld = errors.New("run guard not held")

// Guard is a non-blocking mutual-exclusion flag for one job.
type Guard interface {
	// TryAcquire returns true when the caller now holds the guard. It never
	// waits for the current holder.
	TryAcquire(ctx context.Context) (bool, error)
	// Release gives up the guard.
	Release(ctx context.Context) error
	// Held reports whether this process currently holds the guard.
	Held() bool
}

// Local is an in-process guard.
type Local struct {
	name string
	held atomic.Bool
}

var _ Guard = (*Local)(nil)

// NewLocal creates an unheld guard.
func NewLocal(name string) *Local {
	return &Local{name: name}
}

// Name returns the job name the guard protects.
func (l *Local) Name() string { return l.name }

// TryAcquire implements Guard.
func (l *Local) TryAcquire(context.Context) (bool, error) {
	return l.held.CompareAndSwap(false, true), nil
}

// Release implements Guard.
func (l *Local) Release(context.Context) error {
	if !l.held.CompareAndSwap(true, false) {
		return ErrNotHeld
	}
	return nil
}

// Held implements Guard.
func (l *Local) Held() bool { return l.held.Load() }
