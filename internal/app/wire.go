package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/daonpick/internal/adapters/analytics"
	"github.com/okian/daonpick/internal/adapters/feed"
	"github.com/okian/daonpick/internal/adapters/statestore"
	"github.com/okian/daonpick/internal/adapters/viewstore"
	"github.com/okian/daonpick/internal/config"
	"github.com/okian/daonpick/internal/domain/sampler"
	"github.com/okian/daonpick/pkg/logger"
)

// NewFeed builds the feed source described by cfg.
func NewFeed(cfg *config.Config) *feed.Source {
	return feed.NewSource(
		feed.WithProductsURL(cfg.ProductsURL),
		feed.WithSettingsURL(cfg.SettingsURL),
		feed.WithFormat(feed.Format(cfg.FeedFormat)),
		feed.WithHTTPClient(&http.Client{Timeout: cfg.FetchTimeout()}),
	)
}

// NewViewStore opens the view counter backend named by cfg.ViewStore.
func NewViewStore(ctx context.Context, cfg *config.Config, log logger.Logger) (viewstore.Store, error) {
	switch cfg.ViewStore {
	case config.BackendRedis:
		return viewstore.NewRedisStore(ctx, cfg.RedisURL, cfg.RedisHash)
	case config.BackendPostgres:
		return viewstore.NewPostgresStore(ctx, cfg.PostgresURL, viewstore.WithPostgresLogger(log))
	case config.BackendMemory, "":
		return viewstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: view_store %q", config.ErrInvalidConfig, cfg.ViewStore)
	}
}

// NewStateStore opens the session state backend named by cfg.StateStore.
func NewStateStore(ctx context.Context, cfg *config.Config) (statestore.Store, error) {
	switch cfg.StateStore {
	case config.BackendSQLite:
		return statestore.OpenSQLite(ctx, cfg.SQLitePath)
	case config.BackendMemory, "":
		return statestore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: state_store %q", config.ErrInvalidConfig, cfg.StateStore)
	}
}

// NewTracker returns the analytics collector, or Noop when none is configured.
func NewTracker(cfg *config.Config) analytics.Tracker {
	if cfg.AnalyticsURL == "" {
		return analytics.Noop{}
	}
	return analytics.NewHTTPTracker(cfg.AnalyticsURL,
		analytics.WithHTTPClient(&http.Client{Timeout: cfg.FetchTimeout()}))
}

// FromConfig opens every backend named by cfg and returns the options for
// New. The opened stores are owned by the Service and closed by Stop.
func FromConfig(ctx context.Context, cfg *config.Config, log logger.Logger) ([]Option, error) {
	views, err := NewViewStore(ctx, cfg, log.Named("viewstore"))
	if err != nil {
		return nil, fmt.Errorf("open view store: %w", err)
	}
	state, err := NewStateStore(ctx, cfg)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open state store: %w", err), views.Close())
	}

	return []Option{
		WithLogger(log),
		WithFeed(NewFeed(cfg)),
		WithViewStore(views),
		WithStateStore(state),
		WithTracker(NewTracker(cfg)),
		WithSampler(sampler.New(cfg.RandomSeed)),
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithDedupeSize(cfg.DedupeSize),
		WithRecentCap(cfg.RecentCap),
		WithPageSize(cfg.PageSize),
		WithSessionLimit(cfg.SessionLimit),
		WithSessionTTL(cfg.SessionTTL()),
		WithFetchTimeout(cfg.FetchTimeout()),
		WithRefreshInterval(cfg.RefreshInterval()),
		WithFallbackURL(cfg.FallbackURL),
	}, nil
}
