// Package viewstore reads and increments the per-product view counters.
//
// Redis and Postgres increment atomically on the server. MemoryStore does
// the same under a mutex. ReadModifyWrite exists for backends that only
// offer get and set; it loses updates under concurrent clicks on one code.
package viewstore

import (
	"context"

	"github.com/okian/daonpick/internal/domain/model"
	"github.com/okian/daonpick/pkg/metrics"
)

// Store is the view counter collaborator.
type Store interface {
	// All returns every counter. Codes appear at most once.
	All(ctx context.Context) ([]model.ViewCount, error)
	// Increment adds one view to code.
	Increment(ctx context.Context, code string) error
	Close() error
}

// ReadWriter is a counter backend with plain get and set primitives.
type ReadWriter interface {
	All(ctx context.Context) ([]model.ViewCount, error)
	Get(ctx context.Context, code string) (int64, error)
	Set(ctx context.Context, code string, n int64) error
}

func observe(backend, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		metrics.RecordError("viewstore", backend+"_"+op)
	}
	metrics.RecordViewStoreOp(backend, op, outcome)
}
