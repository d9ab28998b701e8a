// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cpsync/internal/database"
	"github.com/tomtom215/cpsync/internal/models"
)

// ContestView is a contest as served to clients.
type ContestView struct {
	models.Contest
	Duration        string `json:"duration"`
	DurationSeconds int64  `json:"durationSeconds"`
}

func contestViews(contests []models.Contest) []ContestView {
	out := make([]ContestView, len(contests))
	for i := range contests {
		c := contests[i]
		if c.Solutions == nil {
			c.Solutions = []models.Solution{}
		}
		out[i] = ContestView{
			Contest:         c,
			Duration:        c.DurationLabel(),
			DurationSeconds: int64(c.Duration.Seconds()),
		}
	}
	return out
}

// UpcomingContests lists the next contests, soonest first.
func (h *Handler) UpcomingContests(w http.ResponseWriter, r *http.Request) {
	h.listContests(w, r, models.ContestUpcoming, true, UpcomingContestsLimit)
}

// PastContests lists the most recent finished contests with their solutions.
func (h *Handler) PastContests(w http.ResponseWriter, r *http.Request) {
	h.listContests(w, r, models.ContestPast, false, PastContestsLimit)
}

func (h *Handler) listContests(w http.ResponseWriter, r *http.Request, status models.ContestStatus, ascending bool, limit int) {
	contests, err := h.store.ListContestsByStatus(r.Context(), status, ascending, limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeDatabase, "Failed to load contests", err)
		return
	}
	respondJSON(w, http.StatusOK, contestViews(contests), len(contests))
}

// LeaderboardRequest holds the leaderboard query parameters.
type LeaderboardRequest struct {
	College  string `validate:"max=200"`
	Platform string `validate:"omitempty,rated_platform"`
	Limit    int    `validate:"min=1,max=500"`
}

// Leaderboard ranks users by composite score, or by one platform's rating
// when platform is set, optionally within one college.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := LeaderboardRequest{
		College:  strings.TrimSpace(q.Get("college")),
		Platform: strings.ToLower(strings.TrimSpace(q.Get("platform"))),
		Limit:    getIntParam(r, "limit", database.DefaultLeaderboardLimit),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	var platform models.Platform
	if req.Platform != "" {
		platform, _ = models.ParsePlatform(req.Platform)
	}

	entries, err := h.store.Leaderboard(r.Context(), req.College, platform, req.Limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeDatabase, "Failed to load leaderboard", err)
		return
	}
	respondJSON(w, http.StatusOK, entries, len(entries))
}

// ActivityRequest holds the activity query parameters.
type ActivityRequest struct {
	Username string `validate:"required,max=100"`
	From     string `validate:"omitempty,date"`
	To       string `validate:"omitempty,date"`
}

// ActivityView is the heatmap payload for one user.
type ActivityView struct {
	Username string                  `json:"username"`
	From     string                  `json:"from"`
	To       string                  `json:"to"`
	Total    int                     `json:"total"`
	Days     []models.ActivityRecord `json:"days"`
}

// UserActivity returns a user's daily solved counts. The range defaults to
// the year ending today and may span at most MaxActivityDays.
func (h *Handler) UserActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ActivityRequest{
		Username: chi.URLParam(r, "username"),
		From:     strings.TrimSpace(q.Get("from")),
		To:       strings.TrimSpace(q.Get("to")),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	to := models.DayOf(h.now(), h.cfg.Location)
	if req.To != "" {
		to, _ = models.ParseDay(req.To, h.cfg.Location)
	}
	from := models.DayOf(to.Start.AddDate(0, 0, -(MaxActivityDays - 1)), h.cfg.Location)
	if req.From != "" {
		from, _ = models.ParseDay(req.From, h.cfg.Location)
	}

	if from.Start.After(to.Start) {
		respondValidationError(w, &models.APIError{Code: codeValidation, Message: "from must not be after to"})
		return
	}
	if to.Start.Sub(from.Start).Hours()/24 >= MaxActivityDays {
		respondValidationError(w, &models.APIError{Code: codeValidation, Message: "date range must not exceed 366 days"})
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, codeNotFound, "User not found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeDatabase, "Failed to load user", err)
		return
	}

	days, err := h.store.ListActivity(r.Context(), user.ID, from.Date, to.Date)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, codeDatabase, "Failed to load activity", err)
		return
	}

	total := 0
	for _, d := range days {
		total += d.Count
	}
	respondJSON(w, http.StatusOK, ActivityView{
		Username: user.Username,
		From:     from.Date,
		To:       to.Date,
		Total:    total,
		Days:     days,
	}, len(days))
}
