package viewstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/daonpick/internal/domain/model"
)

// ReadModifyWrite increments by reading the current count and writing it
// back plus one. Two concurrent increments of the same code can both read n
// and both write n+1, so one view is lost. Use it only when the backend has
// no atomic increment.
type ReadModifyWrite struct {
	rw  ReadWriter
	gap time.Duration
}

// RMWOption configures a ReadModifyWrite.
type RMWOption func(*ReadModifyWrite)

// WithGap sleeps between the read and the write. The click simulator uses it
// to make lost updates visible.
func WithGap(d time.Duration) RMWOption {
	return func(r *ReadModifyWrite) {
		if d > 0 {
			r.gap = d
		}
	}
}

// NewReadModifyWrite wraps rw.
func NewReadModifyWrite(rw ReadWriter, opts ...RMWOption) *ReadModifyWrite {
	r := &ReadModifyWrite{rw: rw}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// All implements Store.
func (r *ReadModifyWrite) All(ctx context.Context) ([]model.ViewCount, error) {
	return r.rw.All(ctx)
}

// Increment implements Store. It is not linearizable.
func (r *ReadModifyWrite) Increment(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrEmptyCode
	}
	n, err := r.rw.Get(ctx, code)
	if err != nil {
		observe("rmw", "increment", err)
		return fmt.Errorf("read %s: %w", code, err)
	}
	if r.gap > 0 {
		select {
		case <-time.After(r.gap):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	err = r.rw.Set(ctx, code, n+1)
	observe("rmw", "increment", err)
	if err != nil {
		return fmt.Errorf("write %s: %w", code, err)
	}
	return nil
}

// Close implements Store.
func (r *ReadModifyWrite) Close() error {
	if c, ok := r.rw.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
