// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/cpsync/internal/logging"
	"github.com/tomtom215/cpsync/internal/scheduler"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateSources,
		c.validateYouTube,
		c.validateJobs,
		c.validateSecurity,
		c.validateLock,
		c.validateEvents,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	return nil
}

func (c *Config) validateSources() error {
	s := c.Sources
	for name, raw := range map[string]string{
		"CODEFORCES_BASE_URL": s.CodeforcesURL,
		"LEETCODE_BASE_URL":   s.LeetCodeURL,
		"CODECHEF_BASE_URL":   s.CodeChefURL,
	} {
		if err := validateHTTPURL(raw); err != nil {
			return fmt.Errorf("%s is invalid: %w", name, err)
		}
	}
	if s.RatingTimeout <= 0 || s.ContestTimeout <= 0 {
		return fmt.Errorf("source timeouts must be positive")
	}
	if s.RetryAttempts < 1 || s.RetryAttempts > 10 {
		return fmt.Errorf("SOURCE_RETRY_ATTEMPTS must be between 1 and 10, got %d", s.RetryAttempts)
	}
	if s.RetryBaseDelay < 0 {
		return fmt.Errorf("SOURCE_RETRY_BASE_DELAY must not be negative")
	}
	if s.RequestsPerSecond < 0 {
		return fmt.Errorf("SOURCE_REQUESTS_PER_SECOND must not be negative")
	}
	if s.RequestsPerSecond > 0 && s.Burst < 1 {
		return fmt.Errorf("SOURCE_BURST must be at least 1 when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if c.YouTube.APIKey == "" {
		return nil
	}
	if err := validateHTTPURL(c.YouTube.BaseURL); err != nil {
		return fmt.Errorf("YOUTUBE_BASE_URL is invalid: %w", err)
	}
	if c.YouTube.MaxResults < 1 || c.YouTube.MaxResults > 50 {
		return fmt.Errorf("YOUTUBE_MAX_RESULTS must be between 1 and 50, got %d", c.YouTube.MaxResults)
	}
	return nil
}

func (c *Config) validateJobs() error {
	j := c.Jobs
	if _, err := time.LoadLocation(j.Timezone); err != nil {
		return fmt.Errorf("SYNC_TIMEZONE %q is invalid: %w", j.Timezone, err)
	}
	for name, job := range map[string]JobConfig{
		"RATING_CRON":   j.Ratings,
		"CONTEST_CRON":  j.Contests,
		"ACTIVITY_CRON": j.Activity,
	} {
		if !job.Enabled {
			continue
		}
		if _, err := scheduler.ParseCron(job.Schedule); err != nil {
			return fmt.Errorf("%s is invalid: %w", name, err)
		}
	}
	if j.UserConcurrency < 1 {
		return fmt.Errorf("SYNC_USER_CONCURRENCY must be at least 1, got %d", j.UserConcurrency)
	}
	if j.ContestRetention < 0 {
		return fmt.Errorf("CONTEST_RETENTION must not be negative")
	}
	if j.SolutionBackfillLimit < 0 {
		return fmt.Errorf("SOLUTION_BACKFILL_LIMIT must not be negative")
	}
	if j.SolutionBackfillInterval <= 0 {
		return fmt.Errorf("SOLUTION_BACKFILL_INTERVAL must be positive")
	}
	if j.TriggerTimeout <= 0 {
		return fmt.Errorf("TRIGGER_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if strings.TrimSpace(c.Security.CronToken) == "" {
		return fmt.Errorf("CRON_SECRET_TOKEN must not be empty")
	}
	if c.Security.RateLimitRequests < 0 || c.Security.TriggerRateLimit < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}
	if c.Security.RateLimitRequests > 0 && c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when RATE_LIMIT_REQUESTS is set")
	}
	return nil
}

func (c *Config) validateLock() error {
	switch c.Lock.Backend {
	case "local":
		return nil
	case "redis":
		if c.Lock.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when LOCK_BACKEND=redis")
		}
		if c.Lock.TTL <= 0 {
			return fmt.Errorf("LOCK_TTL must be positive")
		}
		return nil
	default:
		return fmt.Errorf("LOCK_BACKEND must be local or redis, got %q", c.Lock.Backend)
	}
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	switch c.Events.Backend {
	case "gochannel":
		return nil
	case "nats":
		if c.Events.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required when EVENTS_BACKEND=nats")
		}
		return nil
	default:
		return fmt.Errorf("EVENTS_BACKEND must be gochannel or nats, got %q", c.Events.Backend)
	}
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is invalid", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
