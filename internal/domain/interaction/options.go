package interaction

import (
	"time"

	"github.com/okian/daonpick/internal/domain/dedupe"
	"github.com/okian/daonpick/pkg/logger"
)

// Option applies a configuration option to the Recorder.
type Option func(*Recorder)

// WithRecentCap sets how many recent views are kept.
func WithRecentCap(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.recentCap = n
		}
	}
}

// WithDispatcher sets where click tasks are handed off.
func WithDispatcher(d Dispatcher) Option {
	return func(r *Recorder) {
		if d != nil {
			r.tasks = d
		}
	}
}

// WithDeduper shares a click id set across recorders.
func WithDeduper(d dedupe.Deduper) Option {
	return func(r *Recorder) {
		if d != nil {
			r.seen = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock overrides time.Now for click timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides how click ids are generated.
func WithIDGenerator(gen func() string) Option {
	return func(r *Recorder) {
		if gen != nil {
			r.newID = gen
		}
	}
}
