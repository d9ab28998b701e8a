// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package sources

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/cpsync/internal/logging"
	"github.com/tomtom215/cpsync/internal/metrics"
	"github.com/tomtom215/cpsync/internal/models"
)

// VideoCache stores search results between runs.
type VideoCache interface {
	Get(ctx context.Context, key string) ([]models.Solution, bool)
	Set(ctx context.Context, key string, solutions []models.Solution)
}

// YouTubeConfig configures solution lookup.
type YouTubeConfig struct {
	Client     ClientConfig
	APIKey     string
	MaxResults int
	Cache      VideoCache
}

// YouTube finds solution videos through the YouTube Data API search endpoint.
type YouTube struct {
	c          *client
	apiKey     string
	maxResults int
	cache      VideoCache
}

var _ VideoSource = (*YouTube)(nil)

// NewYouTube creates a YouTube client. Searches are attempted once; a failed
// lookup is retried by the next contest sync instead.
func NewYouTube(cfg YouTubeConfig) *YouTube {
	clientCfg := cfg.Client
	clientCfg.Retry = RetryPolicy{Attempts: 1}
	maxResults := cfg.MaxResults
	if maxResults <= 0 || maxResults > models.MaxSolutions {
		maxResults = models.MaxSolutions
	}
	return &YouTube{
		c:          newClient("youtube", clientCfg),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		maxResults: maxResults,
		cache:      cfg.Cache,
	}
}

// Enabled reports whether an API key is configured.
func (y *YouTube) Enabled() bool { return y.apiKey != "" }

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// SolutionQuery is the search text used for a contest.
func SolutionQuery(contest *models.Contest) string {
	return contest.Name + " " + string(contest.Platform) + " solution"
}

// SearchSolutions returns up to three videos for the contest. It returns an
// empty list when disabled or on any failure.
func (y *YouTube) SearchSolutions(ctx context.Context, contest *models.Contest) []models.Solution {
	if !y.Enabled() || contest == nil {
		return []models.Solution{}
	}
	q := SolutionQuery(contest)

	if y.cache != nil {
		if cached, ok := y.cache.Get(ctx, q); ok {
			metrics.RecordVideoCacheLookup(true)
			return cached
		}
		metrics.RecordVideoCacheLookup(false)
	}

	var resp youtubeSearchResponse
	err := y.c.fetchJSON(ctx, request{
		operation: "search",
		path:      "/youtube/v3/search",
		query: url.Values{
			"part":       {"snippet"},
			"type":       {"video"},
			"maxResults": {strconv.Itoa(y.maxResults)},
			"q":          {q},
			"key":        {y.apiKey},
		},
	}, &resp)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("contest_id", contest.ID).Msg("Solution search failed")
		return []models.Solution{}
	}

	solutions := make([]models.Solution, 0, len(resp.Items))
	for _, item := range resp.Items {
		if len(solutions) == y.maxResults {
			break
		}
		s := models.Solution{
			VideoID:   item.ID.VideoID,
			Title:     item.Snippet.Title,
			Thumbnail: item.Snippet.Thumbnails.Default.URL,
		}
		if s.Title == "" {
			s.Title = "Untitled Video"
		}
		if s.VideoID != "" {
			s.URL = "https://www.youtube.com/watch?v=" + s.VideoID
		}
		solutions = append(solutions, s)
	}

	if y.cache != nil && len(solutions) > 0 {
		y.cache.Set(ctx, q, solutions)
	}
	return solutions
}
