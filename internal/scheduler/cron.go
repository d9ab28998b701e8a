// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package scheduler

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
	"time"
)

// Schedule is a parsed standard 5-field cron expression:
// minute hour day-of-month month day-of-week.
//
// Supported syntax per field: *, n, n-m, lists (a,b,c), */s and n-m/s.
// Day-of-week accepts 0-7 where both 0 and 7 are Sunday. When both
// day-of-month and day-of-week are restricted, either one matching is enough.
type Schedule struct {
	expr    string
	minute  uint64
	hour    uint64
	dom     uint64
	month   uint64
	dow     uint64
	domStar bool
	dowStar bool
}

// maxSearch bounds Next. Every iteration advances at least one minute and
// usually a whole hour, day or month.
const maxSearch = 100_000

// ParseCron parses expr.
//
//	s, _ := scheduler.ParseCron("0 * * * *") // top of every hour
func ParseCron(expr string) (*Schedule, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, fmt.Errorf("cron expression %q must have 5 fields, got %d", expr, len(fields))
	}

	s := &Schedule{expr: strings.Join(fields, " ")}
	specs := []struct {
		name     string
		dst      *uint64
		min, max int
	}{
		{"minute", &s.minute, 0, 59},
		{"hour", &s.hour, 0, 23},
		{"day-of-month", &s.dom, 1, 31},
		{"month", &s.month, 1, 12},
		{"day-of-week", &s.dow, 0, 7},
	}
	for i, spec := range specs {
		set, err := parseField(fields[i], spec.min, spec.max)
		if err != nil {
			return nil, fmt.Errorf("invalid %s field: %w", spec.name, err)
		}
		*spec.dst = set
	}

	if s.dow&(1<<7) != 0 {
		s.dow = (s.dow &^ (1 << 7)) | 1
	}
	s.domStar = strings.HasPrefix(fields[2], "*")
	s.dowStar = strings.HasPrefix(fields[4], "*")
	return s, nil
}

// MustParseCron is ParseCron for expressions known at compile time.
func MustParseCron(expr string) *Schedule {
	s, err := ParseCron(expr)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the normalized expression.
func (s *Schedule) String() string {
	return s.expr
}

// Next returns the first minute strictly after 'after' that matches the
// schedule, evaluated in loc (UTC when nil). The zero time is returned when
// nothing matches, e.g. "0 0 31 2 *".
func (s *Schedule) Next(after time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t := after.In(loc)
	t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc).Add(time.Minute)

	for i := 0; i < maxSearch; i++ {
		switch {
		case !has(s.month, int(t.Month())):
			t = time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, loc)
		case !s.dayMatches(t):
			t = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc)
		case !has(s.hour, t.Hour()):
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, loc)
		case !has(s.minute, t.Minute()):
			t = t.Add(time.Minute)
		default:
			return t
		}
	}
	return time.Time{}
}

func (s *Schedule) dayMatches(t time.Time) bool {
	domOK := has(s.dom, t.Day())
	dowOK := has(s.dow, int(t.Weekday()))
	switch {
	case s.domStar && s.dowStar:
		return true
	case s.domStar:
		return dowOK
	case s.dowStar:
		return domOK
	default:
		return domOK || dowOK
	}
}

// Values returns the sorted values in a field bit set. Used by tests and
// diagnostics.
func Values(set uint64) []int {
	out := make([]int, 0, bits.OnesCount64(set))
	for set != 0 {
		v := bits.TrailingZeros64(set)
		out = append(out, v)
		set &^= 1 << v
	}
	return out
}

func has(set uint64, v int) bool {
	return set&(1<<uint(v)) != 0
}

func parseField(field string, minVal, maxVal int) (uint64, error) {
	var set uint64
	for _, part := range strings.Split(field, ",") {
		if part == "" {
			return 0, fmt.Errorf("empty list element in %q", field)
		}
		lo, hi, step, err := parseRange(part, minVal, maxVal)
		if err != nil {
			return 0, err
		}
		for v := lo; v <= hi; v += step {
			set |= 1 << uint(v)
		}
	}
	return set, nil
}

func parseRange(part string, minVal, maxVal int) (lo, hi, step int, err error) {
	step = 1
	rangePart := part
	if base, stepStr, ok := strings.Cut(part, "/"); ok {
		step, err = strconv.Atoi(stepStr)
		if err != nil || step <= 0 {
			return 0, 0, 0, fmt.Errorf("invalid step value: %s", stepStr)
		}
		rangePart = base
	}

	switch {
	case rangePart == "*":
		lo, hi = minVal, maxVal
	case strings.Contains(rangePart, "-"):
		startStr, endStr, _ := strings.Cut(rangePart, "-")
		if lo, err = strconv.Atoi(startStr); err != nil {
			return 0, 0, 0, fmt.Errorf("invalid range start: %s", startStr)
		}
		if hi, err = strconv.Atoi(endStr); err != nil {
			return 0, 0, 0, fmt.Errorf("invalid range end: %s", endStr)
		}
	default:
		if lo, err = strconv.Atoi(rangePart); err != nil {
			return 0, 0, 0, fmt.Errorf("invalid value: %s", rangePart)
		}
		hi = lo
		if step > 1 {
			hi = maxVal
		}
	}

	if lo < minVal || hi > maxVal || lo > hi {
		return 0, 0, 0, fmt.Errorf("value out of range: %s (min=%d, max=%d)", part, minVal, maxVal)
	}
	return lo, hi, step, nil
}
