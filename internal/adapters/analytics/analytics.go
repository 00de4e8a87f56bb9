// Package analytics forwards click events to an external collector.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/daonpick/internal/domain/model"
)

// ErrRejected is returned when the collector answers with a non-2xx status.
var ErrRejected = errors.New("analytics collector rejected event")

// Tracker delivers click events. Delivery is best effort.
type Tracker interface {
	Track(ctx context.Context, c model.Click) error
}

// Noop drops every event. It stands in when no collector is configured.
type Noop struct{}

// Track implements Tracker.
func (Noop) Track(context.Context, model.Click) error { return nil }

// Event is the JSON body posted to the collector.
type Event struct {
	Name      string    `json:"event"`
	ClickID   string    `json:"click_id"`
	Session   string    `json:"session"`
	Code      string    `json:"item_id"`
	ItemName  string    `json:"item_name"`
	Category  string    `json:"item_category"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"ts"`
}

// HTTPTracker posts events as JSON.
type HTTPTracker struct {
	url    string
	client *http.Client
}

// Option configures an HTTPTracker.
type Option func(*HTTPTracker)

// WithHTTPClient sets the client used for delivery.
func WithHTTPClient(c *http.Client) Option {
	return func(t *HTTPTracker) {
		if c != nil {
			t.client = c
		}
	}
}

// NewHTTPTracker posts events to url.
func NewHTTPTracker(url string, opts ...Option) *HTTPTracker {
	t := &HTTPTracker{url: url, client: &http.Client{Timeout: 3 * time.Second}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Track implements Tracker.
func (t *HTTPTracker) Track(ctx context.Context, c model.Click) error {
	body, err := json.Marshal(Event{
		Name:      "select_item",
		ClickID:   c.ID,
		Session:   c.Session,
		Code:      c.Code,
		ItemName:  c.Name,
		Category:  c.Category,
		URL:       c.URL,
		Timestamp: c.At.UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}
	return nil
}
