// Package clickload drives click traffic at a running catalog service and
// verifies that every unique click moved the view counters exactly once.
package clickload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/daonpick/pkg/logger"
)

// Sentinel errors.
var (
	ErrUnhealthy = errors.New("service health check failed")
	ErrNoCodes   = errors.New("catalog returned no entries")
	ErrMismatch  = errors.New("view counters do not match the unique clicks")
)

// Run executes the load test.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	c := cfg.withDefaults()
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	log := logger.Get().Named("clickload")
	start := time.Now()

	log.Info(ctx, "starting click load",
		logger.String("base_url", c.BaseURL),
		logger.Int("clicks", c.Clicks),
		logger.Int("replays", c.Replays),
		logger.Int("workers", c.Workers),
	)

	hc := &http.Client{Timeout: c.Timeout}
	if err := checkHealth(ctx, hc, c.BaseURL); err != nil {
		return nil, err
	}
	if err := refresh(ctx, hc, c.BaseURL, c.AdminToken); err != nil {
		return nil, err
	}
	baseline, err := top(ctx, hc, c.BaseURL, c.Codes)
	if err != nil {
		return nil, err
	}

	clicks, expected := plan(baseline, c.Clicks, c.Replays)
	stats := &Stats{Expected: expected, Observed: map[string]int{}}
	if err := submit(ctx, &c, clicks, stats); err != nil {
		return stats, err
	}

	stats.Mismatched, err = settle(ctx, hc, &c, baseline, stats)
	stats.Duration = time.Since(start)
	if err != nil {
		return stats, err
	}
	log.Info(ctx, "click load finished",
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("failed", stats.Failed),
		logger.Any("mismatched", stats.Mismatched),
		logger.Duration("duration", stats.Duration),
	)
	if len(stats.Mismatched) > 0 {
		return stats, fmt.Errorf("%w: %s", ErrMismatch, strings.Join(stats.Mismatched, ","))
	}
	return stats, nil
}

// plan spreads n unique clicks round-robin over the codes and appends
// replays of the first ids. Replays must not move any counter.
func plan(codes []entry, n, replays int) ([]click, map[string]int) {
	clicks := make([]click, 0, n+replays)
	expected := make(map[string]int, len(codes))
	for i := 0; i < n; i++ {
		code := codes[i%len(codes)].Code
		clicks = append(clicks, click{id: uuid.NewString(), code: code})
		expected[code]++
	}
	for i := 0; i < replays && i < n; i++ {
		clicks = append(clicks, clicks[i])
	}
	return clicks, expected
}

func submit(ctx context.Context, c *Config, clicks []click, stats *Stats) error {
	work := make(chan click)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < c.Workers; w++ {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return err
		}
		hc := &http.Client{Timeout: c.Timeout, Jar: jar}
		g.Go(func() error {
			for ck := range work {
				err := post(gctx, hc, c.BaseURL+"/click/"+url.PathEscape(ck.code), ck.id)
				mu.Lock()
				stats.Submitted++
				if err != nil {
					stats.Failed++
				} else {
					stats.Accepted++
				}
				mu.Unlock()
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(work)
		for _, ck := range clicks {
			select {
			case work <- ck:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	return g.Wait()
}

// settle refreshes the catalog until every code moved by its expected delta
// or the settle time runs out, and returns the codes that never matched.
func settle(ctx context.Context, hc *http.Client, c *Config, baseline []entry, stats *Stats) ([]string, error) {
	deadline := time.Now().Add(c.Settle)
	for {
		if err := refresh(ctx, hc, c.BaseURL, c.AdminToken); err != nil {
			return nil, err
		}
		var mismatched []string
		for _, b := range baseline {
			views, err := lookup(ctx, hc, c.BaseURL, b.Code)
			if err != nil {
				return nil, err
			}
			stats.Observed[b.Code] = int(views - b.Views)
			if stats.Observed[b.Code] != stats.Expected[b.Code] {
				mismatched = append(mismatched, b.Code)
			}
		}
		if len(mismatched) == 0 || time.Now().After(deadline) {
			return mismatched, nil
		}
		select {
		case <-time.After(c.Interval):
		case <-ctx.Done():
			return mismatched, ctx.Err()
		}
	}
}

func checkHealth(ctx context.Context, hc *http.Client, base string) error {
	resp, err := do(ctx, hc, http.MethodGet, base+"/healthz", "")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	return drain(resp)
}

func refresh(ctx context.Context, hc *http.Client, base, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/admin/refresh", http.NoBody)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		_ = drain(resp)
		return fmt.Errorf("refresh: status %d", resp.StatusCode)
	}
	return drain(resp)
}

func top(ctx context.Context, hc *http.Client, base string, n int) ([]entry, error) {
	resp, err := do(ctx, hc, http.MethodGet, fmt.Sprintf("%s/catalog/top?limit=%d", base, n), "")
	if err != nil {
		return nil, fmt.Errorf("top: %w", err)
	}
	var out []entry
	if err := decode(resp, &out); err != nil {
		return nil, fmt.Errorf("top: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNoCodes
	}
	return out, nil
}

func lookup(ctx context.Context, hc *http.Client, base, code string) (int64, error) {
	resp, err := do(ctx, hc, http.MethodGet, base+"/lookup/"+url.PathEscape(code), "")
	if err != nil {
		return 0, fmt.Errorf("lookup %s: %w", code, err)
	}
	var out lookupResponse
	if err := decode(resp, &out); err != nil {
		return 0, fmt.Errorf("lookup %s: %w", code, err)
	}
	if !out.Found || out.Entry == nil {
		return 0, fmt.Errorf("lookup %s: %w", code, ErrNoCodes)
	}
	return out.Entry.Views, nil
}

func post(ctx context.Context, hc *http.Client, u, clickID string) error {
	resp, err := do(ctx, hc, http.MethodPost, u, clickID)
	if err != nil {
		return err
	}
	return drain(resp)
}

func do(ctx context.Context, hc *http.Client, method, u, clickID string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, http.NoBody)
	if err != nil {
		return nil, err
	}
	if clickID != "" {
		req.Header.Set("X-Click-ID", clickID)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		_ = drain(resp)
		return nil, fmt.Errorf("%s %s: status %d", method, u, resp.StatusCode)
	}
	return resp, nil
}

func decode(resp *http.Response, v any) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(v)
}

func drain(resp *http.Response) error {
	defer resp.Body.Close()
	_, err := io.Copy(io.Discard, resp.Body)
	return err
}
