// Package feed reads the spreadsheet-backed product and settings feeds.
//
// A feed is a header row followed by data rows, published as CSV or XLSX
// over HTTP or read from a local file. Rows are mapped to typed records at
// this boundary; nothing untyped leaves the package.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/okian/daonpick/internal/domain/model"
	"github.com/okian/daonpick/pkg/metrics"
)

// DefaultMaxBytes bounds one feed download.
const DefaultMaxBytes = 32 << 20

// Source fetches and parses both feeds.
type Source struct {
	productsURL string
	settingsURL string
	format      Format
	client      *http.Client
	policy      *bluemonday.Policy
	maxBytes    int64
}

// NewSource creates a Source with configuration options.
func NewSource(opts ...Option) *Source {
	s := &Source{
		format: FormatAuto,
		client: &http.Client{Timeout: 10 * time.Second},
		policy:   bluemonday.StrictPolicy(),
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Products fetches the product feed.
func (s *Source) Products(ctx context.Context) ([]model.ProductRecord, Report, error) {
	rows, err := s.table(ctx, "products", s.productsURL)
	if err != nil {
		return nil, Report{}, err
	}
	products, rep := Products(rows, s.policy)
	s.account("products", rep)
	return products, rep, nil
}

// Settings fetches the settings feed.
func (s *Source) Settings(ctx context.Context) ([]model.Setting, Report, error) {
	rows, err := s.table(ctx, "settings", s.settingsURL)
	if err != nil {
		return nil, Report{}, err
	}
	settings, rep := Settings(rows)
	s.account("settings", rep)
	return settings, rep, nil
}

func (s *Source) account(name string, rep Report) {
	metrics.UpdateFeedRows(name, rep.Valid)
	for _, is := range rep.Issues {
		metrics.RecordFeedInvalidRow(name, is.Field)
	}
}

func (s *Source) table(ctx context.Context, name, url string) ([]Row, error) {
	if url == "" {
		return nil, fmt.Errorf("%s: %w", name, ErrNotConfigured)
	}
	start := time.Now()
	data, err := s.read(ctx, url)
	var rows []Row
	if err == nil {
		rows, err = ParseTable(s.format, data)
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		metrics.RecordError("feed", name)
	}
	metrics.RecordFeedFetch(name, outcome, float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return rows, nil
}

func (s *Source) read(ctx context.Context, url string) ([]byte, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		f, err := os.Open(strings.TrimPrefix(url, "file://"))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFetch, err)
		}
		defer f.Close()
		return s.readAll(f)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}
	return s.readAll(resp.Body)
}

// readAll reads r whole. A body over maxBytes is an error rather than a
// truncated feed that would still parse.
func (s *Source) readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %w (%d bytes)", ErrFetch, ErrTooLarge, s.maxBytes)
	}
	return data, nil
}
