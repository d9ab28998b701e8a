// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package validation

import (
	"strings"
	"testing"
)

func TestValidHandle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"tourist", true},
		{"user_name-42", true},
		{strings.Repeat("a", 50), true},
		{strings.Repeat("a", 51), false},
		{"", false},
		{" tourist", false},
		{"bad handle", false},
		{"semi;colon", false},
		{"../etc/passwd", false},
		{"ünicode", false},
	}
	for _, tt := range tests {
		if got := ValidHandle(tt.in); got != tt.want {
			t.Errorf("ValidHandle(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

type sampleQuery struct {
	Handle   string `validate:"required,handle"`
	Platform string `validate:"omitempty,rated_platform"`
	From     string `validate:"omitempty,date"`
	Limit    int    `validate:"min=1,max=100"`
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	ok := sampleQuery{Handle: "tourist", Platform: "codeforces", From: "2025-06-01", Limit: 10}
	if err := ValidateStruct(&ok); err != nil {
		t.Fatalf("ValidateStruct(valid) = %v", err)
	}

	bad := sampleQuery{Handle: "no spaces", Platform: "topcoder", From: "06/01/2025", Limit: 0}
	err := ValidateStruct(&bad)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if len(err.Fields) != 4 {
		t.Fatalf("got %d field errors, want 4: %v", len(err.Fields), err)
	}

	msg := err.Error()
	for _, want := range []string{"Handle must be 1-50", "Platform must be one of: codeforces, codechef, leetcode", "From must be a date", "Limit must be at least 1"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestRatedPlatformRule(t *testing.T) {
	t.Parallel()

	type query struct {
		Platform string `validate:"omitempty,rated_platform"`
	}
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"codeforces", true},
		{"CodeChef", true},
		{"leetcode", true},
		{"atcoder", false},
		{"geeksforgeeks", false},
		{"topcoder", false},
	}
	for _, tt := range tests {
		err := ValidateStruct(&query{Platform: tt.in})
		if got := err == nil; got != tt.want {
			t.Errorf("rated_platform(%q) valid = %v, want %v (%v)", tt.in, got, tt.want, err)
		}
	}
}
