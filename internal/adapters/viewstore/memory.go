package viewstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/okian/daonpick/internal/domain/model"
)

// MemoryStore keeps counters in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

// NewMemoryStore returns a store preloaded with seed.
func NewMemoryStore(seed ...model.ViewCount) *MemoryStore {
	m := &MemoryStore{counts: make(map[string]int64, len(seed))}
	for _, c := range seed {
		m.counts[strings.TrimSpace(c.Code)] = c.Count
	}
	return m
}

// All returns the counters sorted by code.
func (m *MemoryStore) All(ctx context.Context) ([]model.ViewCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.ViewCount, 0, len(m.counts))
	for code, n := range m.counts {
		out = append(out, model.ViewCount{Code: code, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	observe("memory", "all", nil)
	return out, nil
}

// Increment implements Store.
func (m *MemoryStore) Increment(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrEmptyCode
	}
	m.mu.Lock()
	m.counts[code]++
	m.mu.Unlock()
	observe("memory", "increment", nil)
	return nil
}

// Get implements ReadWriter.
func (m *MemoryStore) Get(ctx context.Context, code string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[strings.TrimSpace(code)], nil
}

// Set implements ReadWriter.
func (m *MemoryStore) Set(ctx context.Context, code string, n int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[strings.TrimSpace(code)] = n
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }
