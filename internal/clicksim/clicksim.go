// Package clicksim fires concurrent clicks at a view store and checks how
// many increments survived.
package clicksim

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/daonpick/internal/adapters/viewstore"
	"github.com/okian/daonpick/pkg/logger"
)

// ErrNoClicks is returned when the run is configured with no work.
var ErrNoClicks = errors.New("clicksim: workers and clicks must be positive")

// Result summarizes one run.
type Result struct {
	Code     string        `json:"code"`
	Workers  int           `json:"workers"`
	Clicks   int           `json:"clicks_per_worker"`
	Before   int64         `json:"before"`
	After    int64         `json:"after"`
	Expected int64         `json:"expected"`
	Lost     int64         `json:"lost"`
	Failed   int64         `json:"failed"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Observed returns the counter delta the store reports.
func (r Result) Observed() int64 { return r.After - r.Before }

func (r Result) String() string {
	return fmt.Sprintf("code=%s workers=%d clicks=%d expected=%d observed=%d lost=%d failed=%d elapsed=%s",
		r.Code, r.Workers, r.Clicks, r.Expected, r.Observed(), r.Lost, r.Failed, r.Elapsed)
}

// Simulator drives concurrent increments.
type Simulator struct {
	workers int
	clicks  int
	logger  logger.Logger
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithWorkers sets the number of concurrent clickers.
func WithWorkers(n int) Option { return func(s *Simulator) { s.workers = n } }

// WithClicks sets how many clicks each worker sends.
func WithClicks(n int) Option { return func(s *Simulator) { s.clicks = n } }

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Simulator with 8 workers sending 100 clicks each.
func New(opts ...Option) *Simulator {
	s := &Simulator{workers: 8, clicks: 100}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("clicksim")
	}
	return s
}

// Run increments code workers*clicks times concurrently and compares the
// counter delta with the number of successful increments.
func (s *Simulator) Run(ctx context.Context, store viewstore.Store, code string) (Result, error) {
	if s.workers <= 0 || s.clicks <= 0 {
		return Result{}, ErrNoClicks
	}
	res := Result{Code: code, Workers: s.workers, Clicks: s.clicks}

	before, err := countOf(ctx, store, code)
	if err != nil {
		return res, fmt.Errorf("read before: %w", err)
	}
	res.Before = before

	start := time.Now()
	failed := make([]int64, s.workers)
	var g errgroup.Group
	for w := 0; w < s.workers; w++ {
		g.Go(func() error {
			for i := 0; i < s.clicks; i++ {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if err := store.Increment(ctx, code); err != nil {
					failed[w]++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	res.Elapsed = time.Since(start)

	for _, f := range failed {
		res.Failed += f
	}
	res.Expected = int64(s.workers*s.clicks) - res.Failed

	after, err := countOf(ctx, store, code)
	if err != nil {
		return res, fmt.Errorf("read after: %w", err)
	}
	res.After = after
	res.Lost = res.Expected - res.Observed()

	s.logger.Info(ctx, "click simulation finished",
		logger.String("code", code),
		logger.Int64("expected", res.Expected),
		logger.Int64("observed", res.Observed()),
		logger.Int64("lost", res.Lost),
		logger.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

func countOf(ctx context.Context, store viewstore.Store, code string) (int64, error) {
	counts, err := store.All(ctx)
	if err != nil {
		return 0, err
	}
	code = strings.TrimSpace(code)
	for _, c := range counts {
		if strings.TrimSpace(c.Code) == code {
			return c.Count, nil
		}
	}
	return 0, nil
}
