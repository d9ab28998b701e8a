// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day format of activity records.
const DateLayout = "2006-01-02"

// Submission is one accepted solve reported by a platform.
type Submission struct {
	Platform  Platform  `json:"platform"`
	ProblemID string    `json:"problemId"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}

// Key is the de-duplication identity of a submission: platform slug and
// problem id.
func (s Submission) Key() string {
	return s.Platform.Slug() + "-" + s.ProblemID
}

// DedupSubmissions keeps the first submission for each Key, preserving order.
func DedupSubmissions(subs []Submission) []Submission {
	seen := make(map[string]struct{}, len(subs))
	out := make([]Submission, 0, len(subs))
	for _, s := range subs {
		k := s.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

// ActivityRecord is the number of distinct accepted problems a user solved on
// one calendar day. (UserID, Date) is unique.
type ActivityRecord struct {
	UserID    string           `json:"userId"`
	Date      string           `json:"date"`
	Count     int              `json:"count"`
	Breakdown map[Platform]int `json:"breakdown,omitempty"`
	UpdatedAt time.Time        `json:"updatedAt,omitempty"`
}

// NewActivityRecord builds a record from de-duplicated submissions.
func NewActivityRecord(userID, date string, unique []Submission) ActivityRecord {
	breakdown := make(map[Platform]int)
	for _, s := range unique {
		breakdown[s.Platform]++
	}
	return ActivityRecord{
		UserID:    userID,
		Date:      date,
		Count:     len(unique),
		Breakdown: breakdown,
	}
}

// DayWindow is an inclusive calendar-day interval in a specific timezone.
type DayWindow struct {
	Date  string
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the window, inclusive.
func (w DayWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// DayOf returns the window covering the calendar day of t in loc, from
// 00:00:00 to 23:59:59.
func DayOf(t time.Time, loc *time.Location) DayWindow {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, loc)
	return DayWindow{Date: start.Format(DateLayout), Start: start, End: end}
}

// Yesterday returns the window for the calendar day before now in loc.
func Yesterday(now time.Time, loc *time.Location) DayWindow {
	n := now.In(loc)
	return DayOf(time.Date(n.Year(), n.Month(), n.Day()-1, 12, 0, 0, 0, loc), loc)
}

// ParseDay parses a YYYY-MM-DD date into its window in loc.
func ParseDay(date string, loc *time.Location) (DayWindow, error) {
	t, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return DayWindow{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	return DayOf(t, loc), nil
}
