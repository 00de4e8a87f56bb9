// Package statestore persists the per-session wishlist and recent views.
package statestore

import (
	"context"
	"sync"
)

// Keys under which the client lists are persisted.
const (
	WishlistKey = "daonpick_wishlist"
	RecentKey   = "daonpick_recent"
)

// SessionKey scopes a list key to a session.
func SessionKey(session, key string) string {
	return "session/" + session + "/" + key
}

// Store is a small key-value store for raw JSON documents.
type Store interface {
	// Get returns the stored value. Returns ErrNotFound for an unknown key.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// MemoryStore keeps values in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Put implements Store.
func (m *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }
