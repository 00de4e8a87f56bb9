// Package worker drains click tasks and applies their side effects: the view
// counter increment and the analytics event. Failures are logged and counted,
// never returned to the click path.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/daonpick/internal/adapters/mq/queue"
	"github.com/okian/daonpick/pkg/logger"
	"github.com/okian/daonpick/pkg/metrics"
)

const (
	defaultTaskTimeout  = 5 * time.Second
	poolShutdownTimeout = 30 * time.Second
)

// Incrementer bumps the view counter of a product.
type Incrementer interface {
	Increment(ctx context.Context, code string) error
}

// Tracker delivers an analytics event for a click.
type Tracker interface {
	Track(ctx context.Context, c queue.Task) error
}

// Queue defines how workers receive tasks.
type Queue interface {
	Dequeue() <-chan queue.Task
}

// Worker processes click tasks until its queue is closed and drained.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue   Queue
	counter Incrementer
	tracker Tracker
	name    string
	timeout time.Duration

	stop chan struct{}
	done chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
// A nil tracker skips analytics.
func NewInMemoryWorker(q Queue, counter Incrementer, tracker Tracker, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:   q,
		counter: counter,
		tracker: tracker,
		name:    "worker",
		timeout: defaultTaskTimeout,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes tasks until the queue channel is closed, ctx is cancelled or
// Shutdown gives up waiting.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	tasks := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case t, ok := <-tasks:
			if !ok {
				return
			}
			w.process(ctx, t)
		}
	}
}

// Shutdown waits for Run to drain the closed queue. When ctx expires first
// the worker is told to stop and the remaining tasks are abandoned.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		close(w.stop)
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, t queue.Task) { //nolint:gocritic // hugeParam: Task is received by value
	start := time.Now()
	tctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	outcome := "ok"
	if err := w.counter.Increment(tctx, t.Code); err != nil {
		outcome = "error"
		metrics.RecordIncrement("error")
		metrics.RecordError("worker", "increment")
		w.logger.Error(ctx, "view increment failed",
			logger.String("click_id", t.ID),
			logger.String("code", t.Code),
			logger.Error(err),
		)
	} else {
		metrics.RecordIncrement("ok")
	}

	if w.tracker != nil {
		if err := w.tracker.Track(tctx, t); err != nil {
			outcome = "error"
			metrics.RecordAnalyticsEvent("error")
			metrics.RecordError("worker", "analytics")
			w.logger.Warn(ctx, "analytics event failed",
				logger.String("click_id", t.ID),
				logger.Error(err),
			)
		} else {
			metrics.RecordAnalyticsEvent("ok")
		}
	}

	metrics.RecordTaskProcessed(outcome, float64(time.Since(start).Milliseconds()))
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	wg      sync.WaitGroup
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. A non-positive count uses
// one worker per CPU.
func NewPool(workerCount int, q Queue, counter Incrementer, tracker Tracker, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, counter, tracker, wopts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *InMemoryWorker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var errs []error
	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			errs = append(errs, err)
		}
	}
	p.wg.Wait()
	metrics.UpdateWorkerCount(0)
	return errors.Join(errs...)
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }
