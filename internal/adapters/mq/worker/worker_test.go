package worker_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/okian/daonpick/internal/adapters/mq/queue"
	"github.com/okian/daonpick/internal/adapters/mq/worker"
	"github.com/okian/daonpick/internal/domain/model"
	"github.com/okian/daonpick/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	logger.SetLevelString("error") //nolint:errcheck // static level
	m.Run()
}

type countingStore struct {
	mu     sync.Mutex
	counts map[string]int
	fail   map[string]error
}

func newCountingStore() *countingStore {
	return &countingStore{counts: map[string]int{}, fail: map[string]error{}}
}

func (s *countingStore) Increment(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail[code]; err != nil {
		return err
	}
	s.counts[code]++
	return nil
}

func (s *countingStore) get(code string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[code]
}

type recordingTracker struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (r *recordingTracker) Track(ctx context.Context, c queue.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, c.ID)
	return nil
}

func (r *recordingTracker) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over a queue of clicks", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(500))
		store := newCountingStore()
		tracker := &recordingTracker{}
		pool := worker.NewPool(4, q, store, tracker, worker.WithLogger(logger.Nop()))
		ctx := context.Background()

		convey.Convey("When tasks are queued and the pool shuts down", func() {
			pool.Start(ctx)
			for i := 0; i < 300; i++ {
				code := "A"
				if i%3 == 0 {
					code = "B"
				}
				convey.So(q.Enqueue(ctx, model.Click{ID: strconv.Itoa(i), Code: code}), convey.ShouldBeNil)
			}
			err := pool.Shutdown(ctx)

			convey.Convey("Then every queued task is drained", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(store.get("A"), convey.ShouldEqual, 200)
				convey.So(store.get("B"), convey.ShouldEqual, 100)
				convey.So(tracker.count(), convey.ShouldEqual, 300)
				convey.So(pool.Size(), convey.ShouldEqual, 4)
			})

			convey.Convey("Then no goroutines are left behind", func() {
				goleak.VerifyNone(t)
			})

			convey.Convey("Then later clicks are rejected", func() {
				convey.So(errors.Is(q.Enqueue(ctx, model.Click{ID: "late"}), queue.ErrClosed), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When side effects fail", func() {
			store.fail["A"] = errors.New("store down")
			tracker.err = errors.New("collector down")
			pool.Start(ctx)
			convey.So(q.Enqueue(ctx, model.Click{ID: "1", Code: "A"}), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, model.Click{ID: "2", Code: "B"}), convey.ShouldBeNil)

			convey.Convey("Then the pool keeps working and drains", func() {
				convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)
				convey.So(store.get("A"), convey.ShouldEqual, 0)
				convey.So(store.get("B"), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When no tracker is configured", func() {
			p := worker.NewPool(1, q, store, nil, worker.WithLogger(logger.Nop()))
			p.Start(ctx)
			convey.So(q.Enqueue(ctx, model.Click{ID: "1", Code: "C"}), convey.ShouldBeNil)
			convey.So(p.Shutdown(ctx), convey.ShouldBeNil)
			convey.So(store.get("C"), convey.ShouldEqual, 1)
		})
	})
}

type blockingStore struct{ release chan struct{} }

func (b *blockingStore) Increment(ctx context.Context, code string) error {
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil
}

func TestWorkerShutdownTimeout(t *testing.T) {
	convey.Convey("Given a worker stuck on a slow store", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		store := &blockingStore{release: make(chan struct{})}
		w := worker.NewInMemoryWorker(q, store, nil,
			worker.WithLogger(logger.Nop()),
			worker.WithTaskTimeout(time.Second),
		)
		go w.Run(context.Background())
		convey.So(q.Enqueue(context.Background(), model.Click{ID: "1", Code: "A"}), convey.ShouldBeNil)
		convey.So(q.Enqueue(context.Background(), model.Click{ID: "2", Code: "A"}), convey.ShouldBeNil)
		_ = q.Close()

		convey.Convey("When shutdown runs out of time", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			err := w.Shutdown(ctx)
			close(store.release)

			convey.Convey("Then it reports the timeout", func() {
				convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
			})
		})
	})
}
