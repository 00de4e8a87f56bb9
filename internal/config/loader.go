package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override; EnvFile names the YAML file.
const (
	EnvPrefix = "DAONPICK_"
	EnvFile   = "DAONPICK_CONFIG"
)

// Load builds a Config by layering, from low to high precedence:
//  1. defaults (New)
//  2. YAML file named by DAONPICK_CONFIG, when set
//  3. DAONPICK_* environment variables
func Load(_ context.Context) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv(EnvFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// DAONPICK_PAGE_SIZE -> page_size; underscores are kept to match the koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants the rest of the service relies on.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.PageSize < 1:
		return fmt.Errorf("%w: page_size must be positive", ErrInvalidConfig)
	case c.RecentCap < 1:
		return fmt.Errorf("%w: recent_cap must be positive", ErrInvalidConfig)
	case c.SessionLimit < 1:
		return fmt.Errorf("%w: session_limit must be positive", ErrInvalidConfig)
	case c.SessionTTLMS < 1:
		return fmt.Errorf("%w: session_ttl_ms must be positive", ErrInvalidConfig)
	}
	switch c.ViewStore {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("%w: unknown view_store %q", ErrInvalidConfig, c.ViewStore)
	}
	switch c.StateStore {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("%w: unknown state_store %q", ErrInvalidConfig, c.StateStore)
	}
	switch c.FeedFormat {
	case "auto", "csv", "xlsx":
	default:
		return fmt.Errorf("%w: unknown feed_format %q", ErrInvalidConfig, c.FeedFormat)
	}
	return nil
}
