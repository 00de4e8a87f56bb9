package feed

import (
	"net/http"

	"github.com/microcosm-cc/bluemonday"
)

// Option applies a configuration option to the Source.
type Option func(*Source)

// WithProductsURL sets where the product feed is read from. Plain paths and
// file:// URLs are read from disk.
func WithProductsURL(u string) Option {
	return func(s *Source) { s.productsURL = u }
}

// WithSettingsURL sets where the settings feed is read from.
func WithSettingsURL(u string) Option {
	return func(s *Source) { s.settingsURL = u }
}

// WithFormat forces the feed format instead of sniffing it.
func WithFormat(f Format) Option {
	return func(s *Source) {
		if f != "" {
			s.format = f
		}
	}
}

// WithHTTPClient sets the client used for remote feeds.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) {
		if c != nil {
			s.client = c
		}
	}
}

// WithPolicy sets the sanitizer applied to free-text columns.
func WithPolicy(p *bluemonday.Policy) Option {
	return func(s *Source) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithMaxBytes bounds the size of one feed. Larger feeds fail to fetch.
func WithMaxBytes(n int64) Option {
	return func(s *Source) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}
