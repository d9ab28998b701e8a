// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package sources

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cpsync/internal/logging"
	"github.com/tomtom215/cpsync/internal/models"
	"github.com/tomtom215/cpsync/internal/validation"
)

// codechefHeatmapMarker precedes the daily submission counts embedded in a
// CodeChef profile page.
const codechefHeatmapMarker = "var userDailySubmissionsStats ="

// CodeChef reads ratings and activity from public CodeChef profile pages.
// CodeChef exposes no per-problem submission feed, so activity is derived
// from the profile heatmap's daily counts.
type CodeChef struct {
	c *client
}

var (
	_ RatingSource     = (*CodeChef)(nil)
	_ SubmissionSource = (*CodeChef)(nil)
)

// NewCodeChef creates a CodeChef client.
func NewCodeChef(cfg ClientConfig) *CodeChef {
	return &CodeChef{c: newClient(platformName(models.PlatformCodeChef), cfg)}
}

// Platform returns CodeChef.
func (cc *CodeChef) Platform() models.Platform { return models.PlatformCodeChef }

func (cc *CodeChef) profile(ctx context.Context, operation, handle string) ([]byte, error) {
	headers := browserHeaders(cc.c.baseURL + "/")
	headers["Accept"] = "text/html,application/xhtml+xml"
	return cc.c.fetch(ctx, request{
		operation: operation,
		path:      "/users/" + handle,
		headers:   headers,
	})
}

// FetchRating returns the rating shown on the user's profile, or 0.
func (cc *CodeChef) FetchRating(ctx context.Context, handle string) int {
	if !validation.ValidHandle(handle) {
		return 0
	}
	page, err := cc.profile(ctx, "rating", handle)
	if err == nil {
		var rating int
		rating, err = parseCodeChefRating(page)
		if err == nil {
			return rating
		}
	}
	logging.Ctx(ctx).Warn().Err(err).Str("platform", cc.c.name).Str("handle", handle).Msg("Rating fetch failed")
	return 0
}

// parseCodeChefRating reads the first .rating-number element. A page without
// one belongs to an unrated user and yields 0.
func parseCodeChefRating(page []byte) (int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return 0, fmt.Errorf("codechef: %w: %v", ErrMalformedResponse, err)
	}
	sel := doc.Find(".rating-number").First()
	if sel.Length() == 0 {
		return 0, nil
	}
	return leadingInt(sel.Text()), nil
}

// leadingInt parses the non-negative integer prefix of s after leading
// whitespace, so "1876?" and " 1650 (Div 2)" both parse. Anything else,
// including a signed value such as "-5", yields 0.
func leadingInt(s string) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	n := 0
	for i, r := range s {
		if r < '0' || r > '9' {
			if i == 0 {
				return 0
			}
			break
		}
		n = n*10 + int(r-'0')
		if n > 1<<30 {
			return 0
		}
	}
	return n
}

// FetchSubmissions synthesizes one placeholder submission per accepted
// solve counted in the profile heatmap for the window's day. Placeholder ids
// are "codechef-<date>-<i>", so they never collapse with each other.
func (cc *CodeChef) FetchSubmissions(ctx context.Context, handle string, window models.DayWindow) []models.Submission {
	if !validation.ValidHandle(handle) {
		return []models.Submission{}
	}
	page, err := cc.profile(ctx, "submissions", handle)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("platform", cc.c.name).Str("handle", handle).Msg("Submission fetch failed")
		return []models.Submission{}
	}
	days, err := parseCodeChefHeatmap(page)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("platform", cc.c.name).Str("handle", handle).Msg("Heatmap parse failed")
		return []models.Submission{}
	}

	loc := window.Start.Location()
	out := make([]models.Submission, 0)
	for _, d := range days {
		day, err := time.ParseInLocation("2006-1-2", d.Date, loc)
		if err != nil || !window.Contains(day) {
			continue
		}
		date := day.Format(models.DateLayout)
		for i := 0; i < d.Count; i++ {
			out = append(out, models.Submission{
				Platform:  models.PlatformCodeChef,
				ProblemID: fmt.Sprintf("codechef-%s-%d", date, i),
				Title:     "Problem solved on " + date,
				Timestamp: day,
			})
		}
	}
	return out
}

type heatmapDay struct {
	Date  string
	Count int
}

// parseCodeChefHeatmap decodes the JSON value following the heatmap marker.
// CodeChef has shipped it both as {"2025-6-1": 3} and as
// [{"date": "2025-6-1", "value": 3}]; both are accepted.
func parseCodeChefHeatmap(page []byte) ([]heatmapDay, error) {
	idx := bytes.Index(page, []byte(codechefHeatmapMarker))
	if idx < 0 {
		return []heatmapDay{}, nil
	}
	var raw json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(page[idx+len(codechefHeatmapMarker):]))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("codechef heatmap: %w: %v", ErrMalformedResponse, err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []struct {
			Date  string      `json:"date"`
			Value json.Number `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("codechef heatmap: %w: %v", ErrMalformedResponse, err)
		}
		out := make([]heatmapDay, 0, len(entries))
		for _, e := range entries {
			out = append(out, heatmapDay{Date: e.Date, Count: countValue(e.Value)})
		}
		return out, nil
	}

	var byDate map[string]json.Number
	if err := json.Unmarshal(trimmed, &byDate); err != nil {
		return nil, fmt.Errorf("codechef heatmap: %w: %v", ErrMalformedResponse, err)
	}
	out := make([]heatmapDay, 0, len(byDate))
	for date, v := range byDate {
		out = append(out, heatmapDay{Date: date, Count: countValue(v)})
	}
	return out, nil
}

func countValue(n json.Number) int {
	v, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil {
			return 0
		}
		v = int64(f)
	}
	if v < 0 {
		return 0
	}
	if v > 1000 {
		v = 1000
	}
	return int(v)
}
