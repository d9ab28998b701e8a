// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

/*
client.go - Shared platform HTTP plumbing

Every platform client embeds a *client, which layers, from the outside in:

  - Retry: bounded attempts with doubling delay (retry.go)
  - Outbound rate limiter (golang.org/x/time/rate), one per platform
  - Circuit breaker (sony/gobreaker/v2), one per platform
  - HTTP 429 handling honouring Retry-After
  - Status classification: 404 and other 4xx are permanent, 5xx is retried

Responses are read into memory (bounded by maxResponseSize) so that JSON and
HTML parsers both work from the same bytes.
*/

//nolint:staticcheck // File documentation, not package doc
package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cpsync/internal/logging"
	"github.com/tomtom215/cpsync/internal/metrics"
	"github.com/tomtom215/cpsync/internal/models"
)

var (
	// ErrNotFound means the platform reported that the user or resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMalformedResponse means the platform answered but not in the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
)

// StatusError is a non-2xx platform response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

const (
	// opContests names contest listing requests, which use ContestTimeout.
	opContests = "contests"

	// maxErrorBodySize limits how much of an error body is kept for diagnostics.
	maxErrorBodySize = 64 * 1024

	// maxResponseSize bounds successful bodies. Codeforces user.status with
	// count=10000 is the largest expected payload.
	maxResponseSize = 32 << 20

	maxRateLimitRetries = 2
	maxRetryAfter       = 30 * time.Second
)

// ClientConfig configures one platform client.
type ClientConfig struct {
	BaseURL string

	// Timeout bounds each attempt. ContestTimeout replaces it for contest
	// listings; zero keeps Timeout.
	Timeout        time.Duration
	ContestTimeout time.Duration

	UserAgent string
	Retry     RetryPolicy

	// RequestsPerSecond limits outbound requests; 0 disables limiting.
	RequestsPerSecond float64
	Burst             int

	// CircuitBreaker enables the per-platform breaker.
	CircuitBreaker bool

	// HTTPClient overrides the default client. Its own Timeout still applies
	// on top of the per-attempt timeouts.
	HTTPClient *http.Client
}

type client struct {
	name      string
	baseURL   string
	userAgent string
	http      *http.Client
	retry     RetryPolicy

	timeout        time.Duration
	contestTimeout time.Duration

	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[[]byte]

	// rateLimitBase is the first 429 backoff; tests shorten it.
	rateLimitBase time.Duration
}

func newClient(name string, cfg ClientConfig) *client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	contestTimeout := cfg.ContestTimeout
	if contestTimeout <= 0 {
		contestTimeout = timeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	retry := cfg.Retry
	if retry.Attempts <= 0 {
		retry = DefaultRetryPolicy
	}

	c := &client{
		name:          name,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:     cfg.UserAgent,
		http:          httpClient,
		retry:         retry,

		timeout:        timeout,
		contestTimeout: contestTimeout,
		rateLimitBase: time.Second,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	if cfg.CircuitBreaker {
		c.breaker = newBreaker(name)
	}
	return c
}

// request describes one outbound call.
type request struct {
	operation string
	method    string
	path      string
	query     url.Values
	body      []byte
	headers   map[string]string
}

// fetch performs req with retries and returns the response body.
func (c *client) fetch(ctx context.Context, req request) ([]byte, error) {
	start := time.Now()
	var body []byte
	err := Retry(ctx, c.retry, c.name, func(ctx context.Context) error {
		var attemptErr error
		body, attemptErr = c.attempt(ctx, req)
		return attemptErr
	})
	metrics.RecordSourceRequest(c.name, req.operation, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", c.name, req.operation, err)
	}
	return body, nil
}

// fetchJSON performs req and decodes the JSON body into out.
func (c *client) fetchJSON(ctx context.Context, req request, out interface{}) error {
	if req.headers == nil {
		req.headers = map[string]string{}
	}
	if _, ok := req.headers["Accept"]; !ok {
		req.headers["Accept"] = "application/json"
	}
	body, err := c.fetch(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: %w: %v", c.name, req.operation, ErrMalformedResponse, err)
	}
	return nil
}

func (c *client) attempt(ctx context.Context, req request) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, permanent(fmt.Errorf("rate limiter: %w", err))
		}
	}

	if c.breaker == nil {
		return c.roundTrip(ctx, req)
	}
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, req)
	})
	recordBreakerResult(c.name, err)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, permanent(fmt.Errorf("circuit breaker: %w", err))
	}
	return body, err
}

// attemptTimeout returns the deadline for one attempt of operation.
func (c *client) attemptTimeout(operation string) time.Duration {
	if operation == opContests {
		return c.contestTimeout
	}
	return c.timeout
}

func (c *client) roundTrip(ctx context.Context, r request) ([]byte, error) {
	reqURL := c.baseURL + r.path
	if len(r.query) > 0 {
		reqURL += "?" + r.query.Encode()
	}
	method := r.method
	if method == "" {
		method = http.MethodGet
	}

	resp, cancel, err := c.doRequestWithRateLimit(ctx, method, reqURL, r)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, permanent(fmt.Errorf("%w: status 404", ErrNotFound))
	case resp.StatusCode >= 500:
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(readBodyForError(resp.Body))}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, permanent(&StatusError{StatusCode: resp.StatusCode, Body: string(readBodyForError(resp.Body))})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxResponseSize {
		return nil, permanent(fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedResponse, maxResponseSize))
	}
	return body, nil
}

// doRequestWithRateLimit sends the request, retrying HTTP 429 responses with
// exponential backoff or the server's Retry-After (seconds) when present.
// Each exchange is bounded by the operation's timeout; the returned cancel
// releases it once the body has been read.
func (c *client) doRequestWithRateLimit(ctx context.Context, method, reqURL string, r request) (*http.Response, context.CancelFunc, error) {
	timeout := c.attemptTimeout(r.operation)
	for attempt := 0; ; attempt++ {
		var body io.Reader = http.NoBody
		if r.body != nil {
			body = bytes.NewReader(r.body)
		}
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		req, err := http.NewRequestWithContext(reqCtx, method, reqURL, body)
		if err != nil {
			cancel()
			return nil, nil, permanent(fmt.Errorf("create request: %w", err))
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}
		for k, v := range r.headers {
			req.Header.Set(k, v)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			cancel()
			return nil, nil, fmt.Errorf("execute request: %w", redactURL(err))
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, cancel, nil
		}
		resp.Body.Close()
		cancel()

		if attempt == maxRateLimitRetries {
			return nil, nil, fmt.Errorf("rate limit exceeded after %d retries", maxRateLimitRetries)
		}

		delay := c.rateLimitBase * (1 << attempt)
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, convErr := strconv.Atoi(retryAfter); convErr == nil && seconds >= 0 {
				delay = time.Duration(seconds) * time.Second
			}
		}
		if delay > maxRetryAfter {
			delay = maxRetryAfter
		}

		logging.Ctx(ctx).Warn().
			Str("source", c.name).
			Dur("retry_delay", delay).
			Int("attempt", attempt+1).
			Msg("Platform rate limited (HTTP 429), retrying")

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// readBodyForError reads at most maxErrorBodySize bytes for diagnostics.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// redactURL drops the request URL from transport errors; some URLs carry API keys.
func redactURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

// browserHeaders are sent with page and contest requests so that platforms
// fronted by bot protection answer as they would to a browser.
func browserHeaders(referer string) map[string]string {
	return map[string]string{
		"Accept":          "application/json, text/plain, text/html, */*",
		"Accept-Language": "en-US,en;q=0.9",
		"Referer":         referer,
	}
}

func platformName(p models.Platform) string {
	return p.Slug()
}
