// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

/*
Package sync runs the three background synchronization jobs.

Jobs:

  - RatingJob: refreshes every user's Codeforces, CodeChef and LeetCode
    rating and recomputes the composite leaderboard score.
  - ContestJob: merges upcoming contests from every contest source into the
    store, moves elapsed contests to past, attaches solution videos and
    prunes old past contests.
  - ActivityJob: records yesterday's accepted, de-duplicated submissions per
    user for the activity heatmap.

Run Semantics:

Every run goes through a shared runner that takes the job's run guard with
TryAcquire. A run arriving while another holds the guard is logged and
counted as skipped; it is never queued. The guard is released in a deferred
call, so a panic inside a job still frees it. Each run carries a run ID on its
context which every log line and published event inherits.

Failures inside a run are isolated per entity: a user whose platform calls
fail, or whose row cannot be written, is logged and counted in
RunResult.Failed and the run moves on. RunResult.Err is only set when the run
could not start its work at all (for example the user list could not be
loaded) or panicked.

Manager:

Manager owns the jobs, wires them into the cron scheduler and serves
synchronous on-demand triggers for the HTTP API:

	mgr := sync.NewManager(sched, ratingJob, contestJob, activityJob)
	_ = mgr.Schedule(sync.JobRatings, "0 * * * *")
	_ = mgr.Start(ctx)
	res, err := mgr.Trigger(ctx, sync.JobContests, models.TriggerAPI)

Thread Safety:

Jobs and Manager are safe for concurrent use. Two triggers for the same job
never overlap; triggers for different jobs run independently.
*/
package sync
