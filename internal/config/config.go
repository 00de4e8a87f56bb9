// Package config defines service configuration and how it is loaded.
//
// Values are layered defaults -> optional YAML file -> environment, see Load.
package config

import (
	"runtime"
	"time"
)

// Backends accepted by ViewStore and StateStore.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// ProductsURL and SettingsURL point at the published spreadsheet feeds.
	// A value without a scheme is read from the local filesystem.
	ProductsURL string `koanf:"products_url"`
	SettingsURL string `koanf:"settings_url"`
	// FeedFormat is csv, xlsx or auto (decided from the URL / content type).
	FeedFormat string `koanf:"feed_format"`

	FetchTimeoutMS    int `koanf:"fetch_timeout_ms"`
	RefreshIntervalMS int `koanf:"refresh_interval_ms"`

	// ViewStore is memory, redis or postgres.
	ViewStore   string `koanf:"view_store"`
	RedisURL    string `koanf:"redis_url"`
	RedisHash   string `koanf:"redis_hash"`
	PostgresURL string `koanf:"postgres_url"`

	// StateStore is memory or sqlite.
	StateStore string `koanf:"state_store"`
	SQLitePath string `koanf:"sqlite_path"`

	// AnalyticsURL receives click events as JSON. Empty disables analytics.
	AnalyticsURL string `koanf:"analytics_url"`

	// FallbackURL is used for unknown codes when the settings feed has no fallback row.
	FallbackURL string `koanf:"fallback_url"`

	PageSize    int `koanf:"page_size"`
	TopN        int `koanf:"top_n"`
	MaxTopLimit int `koanf:"max_top_limit"`
	RecentCap   int `koanf:"recent_cap"`

	// SessionLimit caps the sessions held in memory; SessionTTLMS evicts idle ones.
	// Evicted sessions are rebuilt from the state store.
	SessionLimit int `koanf:"session_limit"`
	SessionTTLMS int `koanf:"session_ttl_ms"`

	// AdminToken guards the admin routes as a bearer token. Empty leaves them open.
	AdminToken string `koanf:"admin_token"`

	QueueSize   int `koanf:"queue_size"`
	WorkerCount int `koanf:"worker_count"`
	DedupeSize  int `koanf:"dedupe_size"`

	// RandomSeed makes shuffles and games reproducible. 0 seeds from the clock.
	RandomSeed int64 `koanf:"random_seed"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		FeedFormat:        "auto",
		FetchTimeoutMS:    5_000,
		RefreshIntervalMS: 300_000,
		ViewStore:         BackendMemory,
		RedisURL:          "redis://localhost:6379/0",
		RedisHash:         "daonpick:views",
		StateStore:        BackendMemory,
		SQLitePath:        "daonpick.db",
		FallbackURL:       "https://link.coupang.com/a/dQHV5K",
		PageSize:          10,
		TopN:              10,
		MaxTopLimit:       100,
		RecentCap:         5,
		SessionLimit:      10_000,
		SessionTTLMS:      1_800_000,
		QueueSize:         10_000,
		WorkerCount:       runtime.NumCPU(),
		DedupeSize:        100_000,
	}
}

// FetchTimeout returns the per-load fetch budget.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// SessionTTL returns how long an idle session stays in memory.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMS) * time.Millisecond
}

// RefreshInterval returns the background reload period; zero disables it.
func (c *Config) RefreshInterval() time.Duration {
	if c.RefreshIntervalMS <= 0 {
		return 0
	}
	return time.Duration(c.RefreshIntervalMS) * time.Millisecond
}
