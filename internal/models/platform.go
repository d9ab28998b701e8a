// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package models

import "strings"

// Platform identifies a competitive programming site. The value is the display
// name persisted with contests.
type Platform string

const (
	PlatformCodeforces    Platform = "Codeforces"
	PlatformCodeChef      Platform = "CodeChef"
	PlatformLeetCode      Platform = "LeetCode"
	PlatformAtCoder       Platform = "AtCoder"
	PlatformGeeksforGeeks Platform = "GeeksforGeeks"
)

// RatedPlatforms are the platforms polled for ratings and submissions, in the
// order the rating job queries them.
var RatedPlatforms = []Platform{PlatformCodeforces, PlatformCodeChef, PlatformLeetCode}

// AllPlatforms lists every platform that can own a contest.
var AllPlatforms = []Platform{
	PlatformCodeforces, PlatformCodeChef, PlatformLeetCode, PlatformAtCoder, PlatformGeeksforGeeks,
}

// Slug returns the lowercase platform name without spaces.
func (p Platform) Slug() string {
	return strings.ToLower(strings.ReplaceAll(string(p), " ", ""))
}

// Scheduled reports whether contests for p are generated from a weekly
// recurrence rule rather than fetched from an API.
func (p Platform) Scheduled() bool {
	switch p {
	case PlatformAtCoder, PlatformCodeChef, PlatformGeeksforGeeks:
		return true
	}
	return false
}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	for _, known := range AllPlatforms {
		if p == known {
			return true
		}
	}
	return false
}

// Rated reports whether p is polled for ratings and submissions.
func (p Platform) Rated() bool {
	for _, rated := range RatedPlatforms {
		if p == rated {
			return true
		}
	}
	return false
}

// ParsePlatform matches a platform by display name or slug, case-insensitively.
func ParsePlatform(s string) (Platform, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range AllPlatforms {
		if s == p.Slug() {
			return p, true
		}
	}
	return "", false
}
