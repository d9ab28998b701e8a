// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package sources

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestClientRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var n int
	srv, calls := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		n++
		if n < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})

	c := newClient("test", testClientConfig(srv.URL))
	body, err := c.fetch(context.Background(), request{operation: "lookup", path: "/"})
	if err != nil {
		t.Fatalf("fetch() error = %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestClientContestTimeout(t *testing.T) {
	t.Parallel()

	srv, calls := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
			return
		}
		_, _ = w.Write([]byte("ok"))
	})

	cfg := testClientConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	cfg.ContestTimeout = 5 * time.Second
	cfg.Retry = RetryPolicy{Attempts: 1, BaseDelay: time.Millisecond}
	c := newClient("test", cfg)

	if _, err := c.fetch(context.Background(), request{operation: "rating", path: "/"}); err == nil {
		t.Error("rating fetch error = nil, want timeout")
	}
	body, err := c.fetch(context.Background(), request{operation: opContests, path: "/"})
	if err != nil {
		t.Fatalf("contest fetch error = %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestClientGivesUpAfterAttempts(t *testing.T) {
	t.Parallel()

	srv, calls := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	c := newClient("test", testClientConfig(srv.URL))
	_, err := c.fetch(context.Background(), request{operation: "lookup", path: "/"})
	if err == nil {
		t.Fatal("fetch() error = nil, want error")
	}
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("error = %v, want StatusError 503", err)
	}
	if !strings.Contains(err.Error(), "max retry attempts reached") {
		t.Errorf("error = %q, want retry exhaustion", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"not found", http.StatusNotFound, ErrNotFound},
		{"bad request", http.StatusBadRequest, nil},
		{"forbidden", http.StatusForbidden, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv, calls := testServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			c := newClient("test", testClientConfig(srv.URL))
			_, err := c.fetch(context.Background(), request{operation: "lookup", path: "/"})
			if err == nil {
				t.Fatal("fetch() error = nil, want error")
			}
			if !IsPermanent(err) {
				t.Errorf("IsPermanent(%v) = false", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if got := calls.Load(); got != 1 {
				t.Errorf("calls = %d, want 1", got)
			}
		})
	}
}

func TestClientMalformedJSONIsNotRetried(t *testing.T) {
	t.Parallel()

	srv, calls := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	})
	c := newClient("test", testClientConfig(srv.URL))
	var out map[string]string
	err := c.fetchJSON(context.Background(), request{operation: "lookup", path: "/"}, &out)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("error = %v, want ErrMalformedResponse", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestClientHonorsRetryAfter(t *testing.T) {
	t.Parallel()

	var n int
	srv, calls := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		n++
		if n == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("{}"))
	})
	c := newClient("test", testClientConfig(srv.URL))
	c.rateLimitBase = time.Millisecond

	if _, err := c.fetch(context.Background(), request{operation: "lookup", path: "/"}); err != nil {
		t.Fatalf("fetch() error = %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestClientSendsHeadersAndQuery(t *testing.T) {
	t.Parallel()

	srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "cpsync-test" {
			t.Errorf("User-Agent = %q", got)
		}
		if got := r.URL.Query().Get("handle"); got != "tourist" {
			t.Errorf("handle = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		_, _ = w.Write([]byte("{}"))
	})
	cfg := testClientConfig(srv.URL)
	cfg.UserAgent = "cpsync-test"
	c := newClient("test", cfg)

	var out map[string]interface{}
	err := c.fetchJSON(context.Background(), request{
		operation: "lookup",
		path:      "/",
		query:     url.Values{"handle": {"tourist"}},
	}, &out)
	if err != nil {
		t.Fatalf("fetchJSON() error = %v", err)
	}
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Retry(ctx, RetryPolicy{Attempts: 5, BaseDelay: time.Hour}, "test", func(context.Context) error {
		attempts++
		cancel()
		return errors.New("boom")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry() error = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRedactURL(t *testing.T) {
	t.Parallel()

	err := redactURL(&url.Error{Op: "Get", URL: "https://example.com/?key=secret", Err: errors.New("refused")})
	if strings.Contains(err.Error(), "secret") {
		t.Errorf("redactURL() = %q, still contains the key", err)
	}
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	t.Parallel()

	srv, calls := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	cfg := testClientConfig(srv.URL)
	cfg.Retry = RetryPolicy{Attempts: 1}
	cfg.CircuitBreaker = true
	c := newClient("breaker-test", cfg)

	for i := 0; i < 10; i++ {
		_, _ = c.fetch(context.Background(), request{operation: "lookup", path: "/"})
	}
	before := calls.Load()
	_, err := c.fetch(context.Background(), request{operation: "lookup", path: "/"})
	if err == nil || !IsPermanent(err) {
		t.Errorf("fetch() error = %v, want permanent breaker error", err)
	}
	if calls.Load() != before {
		t.Error("request reached the server while the breaker was open")
	}
}
