// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

/*
Package runguard prevents two runs of the same job from overlapping.

Local guards hold a per-job flag inside the process. Redis guards add a
shared lock so several replicas of the service do not run the same job at
once; they always take the Local guard first, so a single process never
overlaps itself even when Redis is unreachable. Redis errors fail closed: the
acquire reports false together with the error and the run is skipped.

	guard := runguard.NewLocal("ratings")
	ok, err := guard.TryAcquire(ctx)
	if err != nil || !ok {
	    return // skipped
	}
	defer guard.Release(ctx)
*/
package runguard
