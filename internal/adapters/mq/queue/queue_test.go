package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/daonpick/internal/domain/model"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	click1 := model.Click{ID: "c1", Code: "10024"}
	if err := q.Enqueue(ctx, click1); err != nil {
		t.Errorf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue()
	if got.ID != "c1" {
		t.Errorf("expected c1, got %s", got.ID)
	}

	// Fill to capacity
	_ = q.Enqueue(ctx, model.Click{ID: "c2"})
	_ = q.Enqueue(ctx, model.Click{ID: "c3"})
	if err := q.Enqueue(ctx, model.Click{ID: "c4"}); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, model.Click{ID: "c1"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	const producers, perProducer = 10, 100
	q := NewInMemoryQueue(WithCapacity(producers * perProducer))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				if err := q.Enqueue(ctx, model.Click{ID: fmt.Sprintf("c%d_%d", id, j)}); err != nil {
					t.Errorf("enqueue: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()
	_ = q.Close()

	seen := make(map[string]bool)
	for c := range q.Dequeue() {
		if seen[c.ID] {
			t.Errorf("duplicate task %s", c.ID)
		}
		seen[c.ID] = true
	}
	if len(seen) != producers*perProducer {
		t.Errorf("expected %d tasks, got %d", producers*perProducer, len(seen))
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	_ = q.Enqueue(ctx, model.Click{ID: "c1"})
	_ = q.Enqueue(ctx, model.Click{ID: "c2"})

	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if err := q.Enqueue(ctx, model.Click{ID: "c3"}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after closing, got %v", err)
	}

	// Queued tasks remain readable after close.
	var drained []string
	for c := range q.Dequeue() {
		drained = append(drained, c.ID)
	}
	if len(drained) != 2 || drained[0] != "c1" || drained[1] != "c2" {
		t.Errorf("expected [c1 c2], got %v", drained)
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected second close to succeed, got error: %v", err)
	}
}
