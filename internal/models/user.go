// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package models

import "time"

// Handles are a user's usernames on the rated platforms. Empty means the
// user has not linked that platform.
type Handles struct {
	Codeforces string `json:"codeforcesUsername,omitempty" validate:"omitempty,handle"`
	CodeChef   string `json:"codechefUsername,omitempty" validate:"omitempty,handle"`
	LeetCode   string `json:"leetcodeUsername,omitempty" validate:"omitempty,handle"`
}

// Any reports whether at least one handle is set.
func (h Handles) Any() bool {
	return h.Codeforces != "" || h.CodeChef != "" || h.LeetCode != ""
}

// For returns the handle for p, or "" for platforms without handles.
func (h Handles) For(p Platform) string {
	switch p {
	case PlatformCodeforces:
		return h.Codeforces
	case PlatformCodeChef:
		return h.CodeChef
	case PlatformLeetCode:
		return h.LeetCode
	}
	return ""
}

// Ratings holds the last confirmed rating per platform. 0 means no rating
// has been confirmed yet.
type Ratings struct {
	Codeforces int `json:"codeforces"`
	CodeChef   int `json:"codechef"`
	LeetCode   int `json:"leetcode"`
}

// For returns the rating for p.
func (r Ratings) For(p Platform) int {
	switch p {
	case PlatformCodeforces:
		return r.Codeforces
	case PlatformCodeChef:
		return r.CodeChef
	case PlatformLeetCode:
		return r.LeetCode
	}
	return 0
}

// Composite weights used for the cross-platform leaderboard score.
const (
	CodeforcesWeight = 2.0
	CodeChefWeight   = 1.5
	LeetCodeWeight   = 1.0
)

// CompositeScore combines the three ratings into one leaderboard score.
func CompositeScore(r Ratings) float64 {
	return float64(r.Codeforces)*CodeforcesWeight +
		float64(r.CodeChef)*CodeChefWeight +
		float64(r.LeetCode)*LeetCodeWeight
}

// User is a registered community member.
type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Name             string    `json:"name"`
	Email            string    `json:"email,omitempty"`
	CollegeName      string    `json:"collegeName,omitempty"`
	Handles          Handles   `json:"handles"`
	Ratings          Ratings   `json:"ratings"`
	CompositeScore   float64   `json:"compositeScore"`
	RatingsUpdatedAt time.Time `json:"ratingsUpdatedAt,omitempty"`
	CreatedAt        time.Time `json:"createdAt,omitempty"`
}

// LeaderboardEntry is one ranked row of a leaderboard.
type LeaderboardEntry struct {
	Rank           int     `json:"rank"`
	Username       string  `json:"username"`
	Name           string  `json:"name"`
	CollegeName    string  `json:"collegeName,omitempty"`
	Handle         string  `json:"handle,omitempty"`
	Rating         int     `json:"rating"`
	CompositeScore float64 `json:"compositeScore"`
}
