// Package service provides the catalog service behind the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/okian/daonpick/internal/adapters/analytics"
	"github.com/okian/daonpick/internal/adapters/feed"
	eventqueue "github.com/okian/daonpick/internal/adapters/mq/queue"
	workerpool "github.com/okian/daonpick/internal/adapters/mq/worker"
	"github.com/okian/daonpick/internal/adapters/statestore"
	"github.com/okian/daonpick/internal/adapters/viewstore"
	"github.com/okian/daonpick/internal/domain/dedupe"
	"github.com/okian/daonpick/internal/domain/model"
	"github.com/okian/daonpick/internal/domain/paging"
	"github.com/okian/daonpick/internal/domain/sampler"
	"github.com/okian/daonpick/pkg/logger"
	"github.com/okian/daonpick/pkg/metrics"
)

const (
	defaultQueueSize    = 10_000
	defaultDedupeSize   = 100_000
	defaultRecentCap    = 5
	defaultFetchTimeout = 5 * time.Second
	defaultFallbackURL  = "https://link.coupang.com/a/dQHV5K"
	defaultSessionLimit = 10_000
	defaultSessionTTL   = 30 * time.Minute
)

// FeedSource supplies product and settings rows.
type FeedSource interface {
	Products(ctx context.Context) ([]model.ProductRecord, feed.Report, error)
	Settings(ctx context.Context) ([]model.Setting, feed.Report, error)
}

// emptyFeed stands in when no feed is configured, so the catalog falls back
// to the seed list.
type emptyFeed struct{}

func (emptyFeed) Products(context.Context) ([]model.ProductRecord, feed.Report, error) {
	return nil, feed.Report{}, feed.ErrNotConfigured
}

func (emptyFeed) Settings(context.Context) ([]model.Setting, feed.Report, error) {
	return nil, feed.Report{}, feed.ErrNotConfigured
}

// Service owns the published catalog, the per-session state and the click
// task pipeline.
type Service struct {
	mu sync.RWMutex

	// Core components
	feed    FeedSource
	views   viewstore.Store
	state   statestore.Store
	tracker analytics.Tracker
	sampler sampler.Sampler
	deduper dedupe.Deduper
	queue   eventqueue.Queue
	pool    *workerpool.Pool

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	recentCap       int
	pageSize        int
	fetchTimeout    time.Duration
	refreshInterval time.Duration
	fallbackURL     string
	sessionLimit    int
	sessionTTL      time.Duration

	// Catalog
	snapshot atomic.Pointer[Snapshot]
	loadGen  atomic.Uint64

	// Sessions idle longer than sessionTTL, or beyond sessionLimit, are
	// evicted and rebuilt from the state store on their next request.
	sessMu   sync.Mutex
	sessions *expirable.LRU[string, *Session]

	started   bool
	startTime time.Time
	stop      chan struct{}
	done      chan struct{}
	logger    logger.Logger
}

// New creates a Service. Components left unset get in-memory defaults.
func New(opts ...Option) *Service {
	s := &Service{
		feed:         emptyFeed{},
		tracker:      analytics.Noop{},
		workerCount:  runtime.NumCPU(),
		queueSize:    defaultQueueSize,
		dedupeSize:   defaultDedupeSize,
		recentCap:    defaultRecentCap,
		pageSize:     paging.PageSize,
		fetchTimeout: defaultFetchTimeout,
		fallbackURL:  defaultFallbackURL,
		sessionLimit: defaultSessionLimit,
		sessionTTL:   defaultSessionTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.views == nil {
		s.views = viewstore.NewMemoryStore()
	}
	if s.state == nil {
		s.state = statestore.NewMemoryStore()
	}
	if s.sampler == nil {
		s.sampler = sampler.New(0)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.sessions = expirable.NewLRU[string, *Session](s.sessionLimit, nil, s.sessionTTL)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.snapshot.Store(s.build(0, nil, nil, nil, time.Now()))
	return s
}

// Start loads the first catalog, starts the click workers and the refresh loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.startTime = time.Now()

	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	metrics.UpdateQueueCapacity(s.queueSize)
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.views, s.tracker,
		workerpool.WithLogger(s.logger.Named("worker")))
	s.pool.Start(context.WithoutCancel(ctx))

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	if _, err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		s.logger.Warn(ctx, "initial catalog load failed", logger.Error(err))
	}
	go s.refreshLoop(context.WithoutCancel(ctx))

	s.logger.Info(ctx, "service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Duration("refresh_interval", s.refreshInterval),
	)
	return nil
}

// Stop ends the refresh loop, drains the click queue and closes the stores.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	close(s.stop)
	done, pool := s.done, s.pool
	s.mu.Unlock()

	<-done
	var errs []error
	if err := pool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.views.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.state.Close(); err != nil {
		errs = append(errs, err)
	}
	s.logger.Info(ctx, "service stopped")
	return errors.Join(errs...)
}

func (s *Service) refreshLoop(ctx context.Context) {
	defer close(s.done)
	if s.refreshInterval <= 0 {
		<-s.stop
		return
	}
	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
				s.logger.Warn(ctx, "catalog refresh failed", logger.Error(err))
			}
		}
	}
}

// Enqueue hands a click to the task queue. It is the recorders' dispatcher.
func (s *Service) Enqueue(ctx context.Context, c model.Click) error {
	s.mu.RLock()
	q := s.queue
	s.mu.RUnlock()
	if q == nil {
		metrics.RecordQueueDropped()
		return ErrNotStarted
	}
	// the queue counts its own drops
	return q.Enqueue(ctx, c)
}

// GetStats returns service statistics.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	started, startTime, q, pool := s.started, s.startTime, s.queue, s.pool
	s.mu.RUnlock()

	snap := s.Catalog()
	stats := map[string]any{
		"started":            started,
		"catalog_entries":    len(snap.Entries),
		"catalog_generation": snap.Generation,
		"catalog_loaded_at":  snap.LoadedAt,
		"degraded":           snap.Degraded,
		"sessions":           s.SessionCount(),
		"dedupe_size":        s.deduper.Size(),
		"worker_count":       s.workerCount,
		"queue_capacity":     s.queueSize,
	}
	if started {
		stats["uptime"] = time.Since(startTime).String()
	}
	if q != nil {
		stats["queue_size"] = q.Len()
		stats["queue_closed"] = q.IsClosed()
	}
	if pool != nil {
		stats["workers_running"] = pool.Size()
	}
	return stats
}
