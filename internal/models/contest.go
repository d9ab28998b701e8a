// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package models

import (
	"fmt"
	"time"
)

// ContestStatus is the lifecycle state of a contest. The only legal
// transition is upcoming to past.
type ContestStatus string

const (
	ContestUpcoming ContestStatus = "upcoming"
	ContestPast     ContestStatus = "past"
)

// MaxSolutions caps the solution videos attached to a contest.
const MaxSolutions = 3

// Solution is a video walkthrough of a contest.
type Solution struct {
	VideoID   string `json:"videoId"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
}

// Contest is a scheduled or finished programming contest.
type Contest struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Platform  Platform      `json:"platform"`
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"-"`
	Link      string        `json:"link"`
	Status    ContestStatus `json:"status"`
	Solutions []Solution    `json:"solutions"`
	CreatedAt time.Time     `json:"createdAt,omitempty"`
	UpdatedAt time.Time     `json:"updatedAt,omitempty"`
}

// EndTime returns start plus duration.
func (c *Contest) EndTime() time.Time {
	return c.StartTime.Add(c.Duration)
}

// HasEnded reports whether now is strictly after the contest end.
func (c *Contest) HasEnded(now time.Time) bool {
	return now.After(c.EndTime())
}

// MarkPast moves the contest to past. It reports whether the status changed.
func (c *Contest) MarkPast() bool {
	if c.Status == ContestPast {
		return false
	}
	c.Status = ContestPast
	return true
}

// NeedsSolutions reports whether a solution lookup should run.
func (c *Contest) NeedsSolutions() bool {
	return c.Status == ContestPast && len(c.Solutions) == 0
}

// DurationLabel renders the duration as "Xd Yh" when it spans at least a
// day and as "Xh Ym" otherwise.
func (c *Contest) DurationLabel() string {
	return FormatDuration(c.Duration)
}

// FormatDuration renders d as "Xd Yh" or "Xh Ym".
func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	if total < 0 {
		total = 0
	}
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
