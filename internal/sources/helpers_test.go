// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package sources

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/cpsync/internal/models"
)

var kolkata = time.FixedZone("IST", 5*3600+1800)

// testServer counts requests and serves them with h.
func testServer(t *testing.T, h http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		Retry:   RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond},
	}
}

func testWindow(date string) models.DayWindow {
	w, err := models.ParseDay(date, kolkata)
	if err != nil {
		panic(err)
	}
	return w
}
