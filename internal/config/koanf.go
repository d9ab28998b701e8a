// CPSync - Competitive Programming Platform Sync Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cpsync

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cpsync/config.yaml",
	"/etc/cpsync/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    10 * time.Minute,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:      "/data/cpsync.duckdb",
			MaxMemory: "512MB",
		},
		Sources: SourcesConfig{
			CodeforcesURL:     "https://codeforces.com",
			LeetCodeURL:       "https://leetcode.com",
			CodeChefURL:       "https://www.codechef.com",
			UserAgent:         browserUserAgent,
			RatingTimeout:     5 * time.Second,
			ContestTimeout:    15 * time.Second,
			RetryAttempts:     3,
			RetryBaseDelay:    time.Second,
			RequestsPerSecond: 2,
			Burst:             4,
			CircuitBreaker:    true,
		},
		YouTube: YouTubeConfig{
			BaseURL:    "https://www.googleapis.com",
			Timeout:    10 * time.Second,
			MaxResults: 3,
		},
		Jobs: JobsConfig{
			Timezone:                 "Asia/Kolkata",
			RunOnStart:               true,
			Ratings:                  JobConfig{Enabled: true, Schedule: "0 * * * *"},
			Contests:                 JobConfig{Enabled: true, Schedule: "0 * * * *"},
			Activity:                 JobConfig{Enabled: true, Schedule: "0 * * * *"},
			UserConcurrency:          1,
			ContestRetention:         20,
			SolutionBackfillLimit:    3,
			SolutionBackfillInterval: 24 * time.Hour,
			TriggerTimeout:           10 * time.Minute,
		},
		Security: SecurityConfig{
			CronToken:         DefaultCronToken,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			TriggerRateLimit:  10,
		},
		Lock: LockConfig{
			Backend:   "local",
			KeyPrefix: "cpsync:lock:",
			TTL:       30 * time.Minute,
		},
		Events: EventsConfig{
			Enabled:       true,
			Backend:       "gochannel",
			NATSURL:       "nats://127.0.0.1:4222",
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
		},
		Cache: CacheConfig{
			Path:     "/data/cache",
			VideoTTL: 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from defaults, the optional YAML file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// LoadWithKoanf performs the layered load. Precedence: env > file > defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercase environment variable names to koanf paths.
// Variables not listed are ignored.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"port":                  "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"codeforces_base_url":        "sources.codeforces_url",
	"leetcode_base_url":          "sources.leetcode_url",
	"codechef_base_url":          "sources.codechef_url",
	"source_user_agent":          "sources.user_agent",
	"source_rating_timeout":      "sources.rating_timeout",
	"source_contest_timeout":     "sources.contest_timeout",
	"source_retry_attempts":      "sources.retry_attempts",
	"source_retry_base_delay":    "sources.retry_base_delay",
	"source_requests_per_second": "sources.requests_per_second",
	"source_burst":               "sources.burst",
	"source_circuit_breaker":     "sources.circuit_breaker",
	"youtube_api_key":            "youtube.api_key",
	"youtube_base_url":           "youtube.base_url",
	"youtube_timeout":            "youtube.timeout",
	"youtube_max_results":        "youtube.max_results",
	"sync_timezone":              "jobs.timezone",
	"sync_run_on_start":          "jobs.run_on_start",
	"sync_user_concurrency":      "jobs.user_concurrency",
	"contest_retention":          "jobs.contest_retention",
	"solution_backfill_limit":    "jobs.solution_backfill_limit",
	"solution_backfill_interval": "jobs.solution_backfill_interval",
	"trigger_timeout":            "jobs.trigger_timeout",
	"rating_cron":                "jobs.ratings.schedule",
	"rating_sync_enabled":        "jobs.ratings.enabled",
	"contest_cron":               "jobs.contests.schedule",
	"contest_sync_enabled":       "jobs.contests.enabled",
	"activity_cron":              "jobs.activity.schedule",
	"activity_sync_enabled":      "jobs.activity.enabled",
	"cron_secret_token":          "security.cron_token",
	"cors_origins":               "security.cors_origins",
	"rate_limit_requests":        "security.rate_limit_requests",
	"rate_limit_window":          "security.rate_limit_window",
	"trigger_rate_limit":         "security.trigger_rate_limit",
	"lock_backend":               "lock.backend",
	"redis_url":                  "lock.redis_url",
	"lock_key_prefix":            "lock.key_prefix",
	"lock_ttl":                   "lock.ttl",
	"events_enabled":             "events.enabled",
	"events_backend":             "events.backend",
	"nats_url":                   "events.nats_url",
	"nats_max_reconnects":        "events.max_reconnects",
	"nats_reconnect_wait":        "events.reconnect_wait",
	"cache_path":                 "cache.path",
	"video_cache_ttl":            "cache.video_ttl",
	"log_level":                  "logging.level",
	"log_format":                 "logging.format",
	"log_caller":                 "logging.caller",
}

// envTransformFunc maps an environment variable name to its config path,
// e.g. CRON_SECRET_TOKEN -> security.cron_token. Unmapped names return ""
// so stray variables never leak into configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
