// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package sources

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/cpsync/internal/models"
)

// defaultContestDuration is used when a source gives no usable duration.
const defaultContestDuration = 2 * time.Hour

// RawContest is a contest as a source reported it, before defaults are filled.
type RawContest struct {
	ID        string
	Name      string
	Platform  models.Platform
	StartTime time.Time

	// DurationSeconds takes precedence over DurationLabel when positive.
	DurationSeconds int64
	DurationLabel   string

	Link string
}

// Normalize fills missing contest fields and derives status from now:
//
//   - ID: "<platform>-<start unix ms>-<8 random chars>"
//   - Name: "Unnamed <platform> Contest"
//   - StartTime: now
//   - Duration: DurationSeconds, else parsed DurationLabel, else 2h
//   - Link: "https://<platform slug>.com/contests"
//   - Status: past when now is after start+duration, else upcoming
func Normalize(raw RawContest, now time.Time) models.Contest {
	c := models.Contest{
		ID:        strings.TrimSpace(raw.ID),
		Name:      strings.TrimSpace(raw.Name),
		Platform:  raw.Platform,
		StartTime: raw.StartTime,
		Link:      strings.TrimSpace(raw.Link),
		Solutions: []models.Solution{},
	}

	if c.StartTime.IsZero() {
		c.StartTime = now
	}
	switch {
	case raw.DurationSeconds > 0:
		c.Duration = time.Duration(raw.DurationSeconds) * time.Second
	case raw.DurationLabel != "":
		c.Duration = ParseDurationLabel(raw.DurationLabel)
	default:
		c.Duration = defaultContestDuration
	}
	if c.ID == "" {
		c.ID = fmt.Sprintf("%s-%d-%s", raw.Platform, c.StartTime.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	}
	if c.Name == "" {
		c.Name = fmt.Sprintf("Unnamed %s Contest", raw.Platform)
	}
	if c.Link == "" {
		c.Link = fmt.Sprintf("https://%s.com/contests", raw.Platform.Slug())
	}

	c.Status = models.ContestUpcoming
	if c.HasEnded(now) {
		c.Status = models.ContestPast
	}
	return c
}

var (
	durationTokenPattern = regexp.MustCompile(`(\d+)\s*([dhm])`)
	durationClockPattern = regexp.MustCompile(`^\s*(\d+):(\d{1,2})\s*$`)
)

// ParseDurationLabel parses labels such as "2h 0m", "1d 2h", "90m" or "1:30".
// Unparseable labels yield two hours.
func ParseDurationLabel(label string) time.Duration {
	if m := durationClockPattern.FindStringSubmatch(label); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		if d := time.Duration(h)*time.Hour + time.Duration(mins)*time.Minute; d > 0 {
			return d
		}
		return defaultContestDuration
	}

	var total time.Duration
	for _, m := range durationTokenPattern.FindAllStringSubmatch(strings.ToLower(label), -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		switch m[2] {
		case "d":
			total += time.Duration(n) * 24 * time.Hour
		case "h":
			total += time.Duration(n) * time.Hour
		case "m":
			total += time.Duration(n) * time.Minute
		}
	}
	if total <= 0 {
		return defaultContestDuration
	}
	return total
}
