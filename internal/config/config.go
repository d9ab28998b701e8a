// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package config

import (
	"time"
)

// DefaultCronToken is the trigger secret used when none is configured.
// Startup logs a warning when it is in effect.
const DefaultCronToken = "default-secret"

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Sources  SourcesConfig  `koanf:"sources"`
	YouTube  YouTubeConfig  `koanf:"youtube"`
	Jobs     JobsConfig     `koanf:"jobs"`
	Security SecurityConfig `koanf:"security"`
	Lock     LockConfig     `koanf:"lock"`
	Events   EventsConfig   `koanf:"events"`
	Cache    CacheConfig    `koanf:"cache"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds DuckDB settings. An empty Path opens an in-memory database.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// SourcesConfig configures the outbound platform clients.
type SourcesConfig struct {
	CodeforcesURL string `koanf:"codeforces_url"`
	LeetCodeURL   string `koanf:"leetcode_url"`
	CodeChefURL   string `koanf:"codechef_url"`
	UserAgent     string `koanf:"user_agent"`

	// RatingTimeout bounds rating and submission requests.
	RatingTimeout time.Duration `koanf:"rating_timeout"`
	// ContestTimeout bounds contest listing requests.
	ContestTimeout time.Duration `koanf:"contest_timeout"`

	RetryAttempts  int           `koanf:"retry_attempts"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`

	// RequestsPerSecond is the outbound rate limit per platform; 0 disables it.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`

	CircuitBreaker bool `koanf:"circuit_breaker"`
}

// YouTubeConfig configures solution-video lookup. An empty APIKey disables it.
type YouTubeConfig struct {
	APIKey     string        `koanf:"api_key"`
	BaseURL    string        `koanf:"base_url"`
	Timeout    time.Duration `koanf:"timeout"`
	MaxResults int           `koanf:"max_results"`
}

// JobConfig configures one background job.
type JobConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Schedule string `koanf:"schedule"`
}

// JobsConfig configures the three sync jobs.
type JobsConfig struct {
	Timezone   string `koanf:"timezone"`
	RunOnStart bool   `koanf:"run_on_start"`

	Ratings  JobConfig `koanf:"ratings"`
	Contests JobConfig `koanf:"contests"`
	Activity JobConfig `koanf:"activity"`

	// UserConcurrency bounds how many users a job processes at once.
	UserConcurrency int `koanf:"user_concurrency"`

	// ContestRetention is the number of past contests kept after pruning.
	ContestRetention int `koanf:"contest_retention"`

	// SolutionBackfillLimit bounds the solution lookups retried per run for
	// past contests whose earlier lookup came back empty.
	SolutionBackfillLimit int `koanf:"solution_backfill_limit"`

	// SolutionBackfillInterval is the minimum time between solution lookups
	// for the same contest.
	SolutionBackfillInterval time.Duration `koanf:"solution_backfill_interval"`

	// TriggerTimeout bounds a run started through the HTTP API.
	TriggerTimeout time.Duration `koanf:"trigger_timeout"`
}

// SecurityConfig holds API protection settings.
type SecurityConfig struct {
	CronToken   string   `koanf:"cron_token"`
	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	// TriggerRateLimit caps POST /api/cron/* per client IP per minute.
	TriggerRateLimit int `koanf:"trigger_rate_limit"`
}

// LockConfig selects the job run guard backend.
type LockConfig struct {
	// Backend is "local" (in-process) or "redis" (shared across replicas).
	Backend   string        `koanf:"backend"`
	RedisURL  string        `koanf:"redis_url"`
	KeyPrefix string        `koanf:"key_prefix"`
	TTL       time.Duration `koanf:"ttl"`
}

// EventsConfig configures sync event publishing.
type EventsConfig struct {
	Enabled bool `koanf:"enabled"`
	// Backend is "gochannel" (in-process) or "nats".
	Backend       string        `koanf:"backend"`
	NATSURL       string        `koanf:"nats_url"`
	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
}

// CacheConfig configures the on-disk lookup cache.
type CacheConfig struct {
	// Path is the Badger directory. Empty keeps the cache in memory.
	Path     string        `koanf:"path"`
	VideoTTL time.Duration `koanf:"video_ttl"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Location resolves the reference timezone. Unknown names fall back to a
// fixed +05:30 zone named after the configured value.
func (j JobsConfig) Location() *time.Location {
	if loc, err := time.LoadLocation(j.Timezone); err == nil {
		return loc
	}
	return time.FixedZone(j.Timezone, 5*3600+1800)
}

// UsesDefaultCronToken reports whether the trigger secret was left unset.
func (c *Config) UsesDefaultCronToken() bool {
	return c.Security.CronToken == DefaultCronToken
}
