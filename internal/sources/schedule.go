// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/cpsync/internal/models"
)

const week = 7 * 24 * time.Hour

// SeriesLocation is the timezone the builtin weekly series are published in.
// It is independent of the job scheduling timezone.
var SeriesLocation = loadSeriesLocation()

func loadSeriesLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// India has no daylight saving time.
		return time.FixedZone("IST", 5*3600+1800)
	}
	return loc
}

// WeeklySeries describes a contest that recurs at the same local weekday and
// time every week and is numbered consecutively from a known anchor contest.
type WeeklySeries struct {
	Platform models.Platform
	Weekday  time.Weekday
	Hour     int
	Minute   int
	Location *time.Location

	// Anchor is the start instant of the contest numbered AnchorNumber.
	Anchor       time.Time
	AnchorNumber int
	Length       time.Duration

	ID   func(n int) string
	Name func(n int) string
	Link func(n int) string
}

// Next returns the first occurrence starting at or after now.
func (s WeeklySeries) Next(now time.Time) time.Time {
	local := now.In(s.Location)
	days := (int(s.Weekday) - int(local.Weekday()) + 7) % 7
	start := time.Date(local.Year(), local.Month(), local.Day()+days, s.Hour, s.Minute, 0, 0, s.Location)
	if start.Before(now) {
		start = start.AddDate(0, 0, 7)
	}
	return start
}

// NumberAt returns the contest number of the occurrence starting at start.
func (s WeeklySeries) NumberAt(start time.Time) int {
	d := start.Sub(s.Anchor)
	n := d / week
	if d%week < 0 {
		n--
	}
	return s.AnchorNumber + int(n)
}

// Contest returns the normalized contest for the next occurrence after now.
func (s WeeklySeries) Contest(now time.Time) models.Contest {
	start := s.Next(now)
	n := s.NumberAt(start)
	return Normalize(RawContest{
		ID:              s.ID(n),
		Name:            s.Name(n),
		Platform:        s.Platform,
		StartTime:       start,
		DurationSeconds: int64(s.Length / time.Second),
		Link:            s.Link(n),
	}, now)
}

// BuiltinSeries returns the weekly series for platforms without a contest
// API, with weekdays, times and anchors in SeriesLocation.
func BuiltinSeries() []WeeklySeries {
	loc := SeriesLocation
	anchor := func(year int, month time.Month, day, hour, minute int) time.Time {
		return time.Date(year, month, day, hour, minute, 0, 0, loc)
	}
	return []WeeklySeries{
		{
			Platform: models.PlatformAtCoder, Weekday: time.Saturday, Hour: 17, Minute: 30, Location: loc,
			Anchor: anchor(2025, time.May, 24, 17, 30), AnchorNumber: 407, Length: 100 * time.Minute,
			ID:   func(n int) string { return fmt.Sprintf("abc%d", n) },
			Name: func(n int) string { return fmt.Sprintf("AtCoder Beginner Contest %d", n) },
			Link: func(n int) string { return fmt.Sprintf("https://atcoder.jp/contests/abc%d", n) },
		},
		{
			Platform: models.PlatformAtCoder, Weekday: time.Sunday, Hour: 17, Minute: 30, Location: loc,
			Anchor: anchor(2025, time.May, 25, 17, 30), AnchorNumber: 198, Length: 120 * time.Minute,
			ID:   func(n int) string { return fmt.Sprintf("arc%d", n) },
			Name: func(n int) string { return fmt.Sprintf("AtCoder Regular Contest %d", n) },
			Link: func(n int) string { return fmt.Sprintf("https://atcoder.jp/contests/arc%d", n) },
		},
		{
			Platform: models.PlatformCodeChef, Weekday: time.Saturday, Hour: 20, Minute: 0, Location: loc,
			Anchor: anchor(2025, time.May, 24, 20, 0), AnchorNumber: 187, Length: 120 * time.Minute,
			ID:   func(n int) string { return fmt.Sprintf("START%d", n) },
			Name: func(n int) string { return fmt.Sprintf("CodeChef Starters %d", n) },
			Link: func(n int) string { return fmt.Sprintf("https://www.codechef.com/START%d", n) },
		},
		{
			Platform: models.PlatformGeeksforGeeks, Weekday: time.Sunday, Hour: 19, Minute: 0, Location: loc,
			Anchor: anchor(2025, time.May, 25, 19, 0), AnchorNumber: 208, Length: 90 * time.Minute,
			ID:   func(n int) string { return fmt.Sprintf("gfg-weekly-%d", n) },
			Name: func(n int) string { return fmt.Sprintf("GfG Weekly - %d [Rated Contest]", n) },
			Link: func(n int) string {
				return fmt.Sprintf("https://practice.geeksforgeeks.org/contest/gfg-weekly-%d-rated-contest", n)
			},
		},
	}
}

// ScheduledSource generates contests for platforms that publish no contest
// API, from a fixed set of weekly series.
type ScheduledSource struct {
	series []WeeklySeries
	now    func() time.Time
}

var _ ContestSource = (*ScheduledSource)(nil)

// NewScheduledSource creates a source over series. A nil clock uses time.Now.
func NewScheduledSource(series []WeeklySeries, now func() time.Time) *ScheduledSource {
	if now == nil {
		now = time.Now
	}
	return &ScheduledSource{series: series, now: now}
}

// Name identifies the source in logs and metrics.
func (s *ScheduledSource) Name() string { return "schedule" }

// FetchContests returns the next occurrence of every series. The now
// argument wins over the source clock when set.
func (s *ScheduledSource) FetchContests(_ context.Context, now time.Time) []models.Contest {
	if now.IsZero() {
		now = s.now()
	}
	out := make([]models.Contest, 0, len(s.series))
	for _, series := range s.series {
		out = append(out, series.Contest(now))
	}
	return out
}

// NextFor returns the contest that follows endedID on platform. When a
// platform runs several series the first one whose upcoming contest differs
// from endedID is preferred, so an ended ABC is followed by the next ARC and
// vice versa.
func (s *ScheduledSource) NextFor(platform models.Platform, endedID string, now time.Time) (models.Contest, bool) {
	if now.IsZero() {
		now = s.now()
	}
	var (
		first models.Contest
		found bool
	)
	for _, series := range s.series {
		if series.Platform != platform {
			continue
		}
		c := series.Contest(now)
		if c.ID != endedID {
			return c, true
		}
		if !found {
			first, found = c, true
		}
	}
	return first, found
}

// Covers reports whether platform has at least one series.
func (s *ScheduledSource) Covers(platform models.Platform) bool {
	for _, series := range s.series {
		if series.Platform == platform {
			return true
		}
	}
	return false
}
