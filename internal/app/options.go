package service

import (
	"time"

	"github.com/okian/daonpick/internal/adapters/analytics"
	"github.com/okian/daonpick/internal/adapters/statestore"
	"github.com/okian/daonpick/internal/adapters/viewstore"
	"github.com/okian/daonpick/internal/domain/sampler"
	"github.com/okian/daonpick/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithFeed sets the product and settings source.
func WithFeed(f FeedSource) Option {
	return func(s *Service) {
		if f != nil {
			s.feed = f
		}
	}
}

// WithViewStore sets the view counter store.
func WithViewStore(v viewstore.Store) Option {
	return func(s *Service) {
		if v != nil {
			s.views = v
		}
	}
}

// WithStateStore sets where session lists are persisted.
func WithStateStore(st statestore.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.state = st
		}
	}
}

// WithTracker sets the analytics collector.
func WithTracker(t analytics.Tracker) Option {
	return func(s *Service) {
		if t != nil {
			s.tracker = t
		}
	}
}

// WithSampler sets the source of randomness.
func WithSampler(sm sampler.Sampler) Option {
	return func(s *Service) {
		if sm != nil {
			s.sampler = sm
		}
	}
}

// WithWorkerCount sets the number of click task workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the click task queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many click ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithRecentCap sets how many recent views a session keeps.
func WithRecentCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentCap = n
		}
	}
}

// WithFetchTimeout bounds one catalog load.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithRefreshInterval reloads the catalog periodically. Zero disables it.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.refreshInterval = d
		}
	}
}

// WithFallbackURL sets the lookup-miss destination used when the settings
// feed has no fallback row.
func WithFallbackURL(u string) Option {
	return func(s *Service) {
		if u != "" {
			s.fallbackURL = u
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPageSize sets how many entries one catalog page reveals.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithSessionLimit caps how many sessions are held in memory. The least
// recently used one is evicted first.
func WithSessionLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sessionLimit = n
		}
	}
}

// WithSessionTTL sets how long an idle session stays in memory.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sessionTTL = d
		}
	}
}
