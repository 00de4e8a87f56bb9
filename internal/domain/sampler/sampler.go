// Package sampler is the one source of randomness for catalog shuffles,
// badge and fortune picks, and game draws. Tests inject a fixed seed.
package sampler

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultSeed is used by tests that want reproducible draws.
const DefaultSeed = 42

// Sampler draws uniform random values.
type Sampler interface {
	// Intn returns a uniform value in [0, n). n must be positive.
	Intn(n int) int
	// Shuffle permutes n elements through swap.
	Shuffle(n int, swap func(i, j int))
}

// Rand is a Sampler safe for concurrent use.
type Rand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a sampler seeded with seed. A zero seed is replaced by the clock.
func New(seed int64) *Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Rand{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // display randomness, not security
}

// Intn implements Sampler.
func (r *Rand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// Shuffle implements Sampler.
func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(n, swap)
}

// Shuffled returns a shuffled copy of items. The input is not modified.
func Shuffled[T any](s Sampler, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	s.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Sample draws min(k, len(items)) distinct items without replacement.
func Sample[T any](s Sampler, items []T, k int) []T {
	if k <= 0 || len(items) == 0 {
		return nil
	}
	if k > len(items) {
		k = len(items)
	}
	pool := make([]T, len(items))
	copy(pool, items)
	// partial Fisher-Yates over the first k slots
	for i := 0; i < k; i++ {
		j := i + s.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

// Pick returns one item chosen uniformly. ok is false for an empty slice.
func Pick[T any](s Sampler, items []T) (item T, ok bool) {
	if len(items) == 0 {
		return item, false
	}
	return items[s.Intn(len(items))], true
}
