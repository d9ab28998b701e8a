// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/cpsync/internal/database"
	"github.com/tomtom215/cpsync/internal/logging"
	"github.com/tomtom215/cpsync/internal/models"
	syncpkg "github.com/tomtom215/cpsync/internal/sync"
)

// CronTokenHeader carries the trigger shared secret.
const CronTokenHeader = "X-Cron-Token"

// jobLabels are the capitalized names used in trigger responses.
var jobLabels = map[string]string{
	syncpkg.JobActivity: "Activity",
	syncpkg.JobContests: "Contest",
	syncpkg.JobRatings:  "Rating",
}

// HealthResponse is the liveness check body.
type HealthResponse struct {
	Status    string              `json:"status"`
	Timestamp time.Time           `json:"timestamp"`
	Uptime    float64             `json:"uptimeSeconds"`
	Database  string              `json:"database"`
	Jobs      []syncpkg.JobStatus `json:"jobs"`
}

// RequireCronToken rejects requests without the configured X-Cron-Token.
// An unset token rejects everything.
func (h *Handler) RequireCronToken(next http.Handler) http.Handler {
	want := []byte(h.cfg.CronToken)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(CronTokenHeader)
		if got == "" || len(want) == 0 || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			logging.Ctx(r.Context()).Warn().
				Str("path", sanitizeLogValue(r.URL.Path)).
				Str("remote_ip", r.RemoteAddr).
				Msg("Rejected trigger with invalid cron token")
			respondMessage(w, http.StatusUnauthorized, models.MessageResponse{Message: "Invalid cron token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Health answers the uptime check. It always returns 200 while the process
// can serve requests; database and job state are informational.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	db := "ok"
	if h.store == nil {
		db = "unavailable"
	} else if err := h.store.Ping(ctx); err != nil {
		db = "unavailable"
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check database ping failed")
	}

	jobs := []syncpkg.JobStatus{}
	if h.jobs != nil {
		jobs = h.jobs.Status()
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC(),
		Uptime:    time.Since(h.startTime).Seconds(),
		Database:  db,
		Jobs:      jobs,
	})
}

// TriggerActivity runs the activity job.
func (h *Handler) TriggerActivity(w http.ResponseWriter, r *http.Request) {
	h.trigger(w, r, syncpkg.JobActivity)
}

// TriggerContests runs the contest job.
func (h *Handler) TriggerContests(w http.ResponseWriter, r *http.Request) {
	h.trigger(w, r, syncpkg.JobContests)
}

// TriggerRatings runs the rating job.
func (h *Handler) TriggerRatings(w http.ResponseWriter, r *http.Request) {
	h.trigger(w, r, syncpkg.JobRatings)
}

func (h *Handler) trigger(w http.ResponseWriter, r *http.Request, job string) {
	label := jobLabels[job]

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.cfg.TriggerTimeout)
	defer cancel()

	res, err := h.jobs.Trigger(ctx, job, models.TriggerAPI)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("job", job).Msg("Triggered run failed")
		respondMessage(w, http.StatusInternalServerError, models.MessageResponse{
			Message: "Failed to trigger " + strings.ToLower(label) + " update",
			Job:     job,
			RunID:   res.RunID,
		})
		return
	}

	respondMessage(w, http.StatusOK, models.MessageResponse{
		Message: label + " update triggered successfully",
		Job:     job,
		RunID:   res.RunID,
		Skipped: res.Skipped,
	})
}

// RunHistoryRequest holds the run history query parameters.
type RunHistoryRequest struct {
	Job   string `validate:"omitempty,oneof=activity contests ratings"`
	Limit int    `validate:"min=1,max=200"`
}

// RunView is one recorded run as served to operators.
type RunView struct {
	models.RunRecord
	DurationMs int64 `json:"durationMs"`
}

// RunHistory lists recorded job runs, newest first.
func (h *Handler) RunHistory(w http.ResponseWriter, r *http.Request) {
	req := RunHistoryRequest{
		Job:   strings.ToLower(strings.TrimSpace(r.URL.Query().Get("job"))),
		Limit: getIntParam(r, "limit", database.DefaultRunHistoryLimit),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	runs, err := h.store.ListRuns(r.Context(), req.Job, req.Limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeDatabase, "Failed to load run history", err)
		return
	}
	views := make([]RunView, len(runs))
	for i, run := range runs {
		views[i] = RunView{RunRecord: run, DurationMs: run.Duration().Milliseconds()}
	}
	respondJSON(w, http.StatusOK, views, len(views))
}
