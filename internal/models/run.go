// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package models

import "time"

// RunRecord is one finished job run as kept in the run history.
type RunRecord struct {
	RunID      string        `json:"runId"`
	Job        string        `json:"job"`
	Source     TriggerSource `json:"source"`
	Outcome    string        `json:"outcome"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Processed  int           `json:"processed"`
	Failed     int           `json:"failed"`
	Error      string        `json:"error,omitempty"`
}

// Duration is the wall time of the run.
func (r *RunRecord) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
