package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/daonpick/internal/domain/category"
	"github.com/okian/daonpick/internal/domain/merge"
	"github.com/okian/daonpick/internal/domain/model"
	"github.com/okian/daonpick/internal/domain/paging"
	"github.com/okian/daonpick/internal/domain/ranking"
	"github.com/okian/daonpick/pkg/logger"
	"github.com/okian/daonpick/pkg/metrics"
)

// Sources named in Degraded and in metrics.
const (
	SourceProducts = "products"
	SourceSettings = "settings"
	SourceViews    = "views"
)

// Snapshot is an immutable published catalog. Readers must not modify it.
type Snapshot struct {
	Generation uint64
	Entries    []model.CatalogEntry
	Settings   []model.Setting
	Tabs       []category.Tab
	// Degraded lists the sources that were unavailable for this load.
	Degraded []string
	LoadedAt time.Time

	index map[string]int
}

// Lookup finds an entry by its case-insensitive trimmed code.
func (s *Snapshot) Lookup(code string) (model.CatalogEntry, bool) {
	i, ok := s.index[model.LookupKey(code)]
	if !ok {
		return model.CatalogEntry{}, false
	}
	return s.Entries[i], true
}

// Buttons returns the settings rows of type button.
func (s *Snapshot) Buttons() []model.Setting {
	out := make([]model.Setting, 0, len(s.Settings))
	for _, st := range s.Settings {
		if st.Type == model.SettingButton {
			out = append(out, st)
		}
	}
	return out
}

func (s *Service) build(gen uint64, products []model.ProductRecord, counts []model.ViewCount,
	settings []model.Setting, now time.Time,
) *Snapshot {
	entries := merge.Merge(s.sampler, products, counts)
	if settings == nil {
		settings = merge.SeedSettings(s.fallbackURL)
	}
	snap := &Snapshot{
		Generation: gen,
		Entries:    entries,
		Settings:   settings,
		Tabs:       category.Ordered(entries, category.Canonical()),
		LoadedAt:   now,
		index:      make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		k := e.Key()
		if _, dup := snap.index[k]; !dup {
			snap.index[k] = i
		}
	}
	return snap
}

// Catalog returns the published snapshot. It is never nil.
func (s *Service) Catalog() *Snapshot {
	return s.snapshot.Load()
}

// Refresh fetches products, settings and view counts concurrently and
// publishes the merged catalog. Each failed source degrades to its default
// instead of failing the load. A load that finishes after a newer one has
// already been published is discarded with ErrSuperseded.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	gen := s.loadGen.Add(1)
	start := time.Now()

	fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	var (
		products []model.ProductRecord
		settings []model.Setting
		counts   []model.ViewCount
		degraded []string
		failed   [3]bool
	)
	g, gctx := errgroup.WithContext(fctx)
	g.Go(func() error {
		var err error
		products, _, err = s.feed.Products(gctx)
		failed[0] = s.degrade(ctx, SourceProducts, err)
		return nil
	})
	g.Go(func() error {
		var err error
		settings, _, err = s.feed.Settings(gctx)
		failed[1] = s.degrade(ctx, SourceSettings, err)
		return nil
	})
	g.Go(func() error {
		var err error
		counts, err = s.views.All(gctx)
		failed[2] = s.degrade(ctx, SourceViews, err)
		return nil
	})
	_ = g.Wait()

	for i, src := range []string{SourceProducts, SourceSettings, SourceViews} {
		metrics.UpdateDegraded(src, failed[i])
		if failed[i] {
			degraded = append(degraded, src)
		}
	}
	if failed[0] {
		products = nil
	}
	if failed[1] || len(settings) == 0 {
		settings = nil
	}
	if failed[2] {
		counts = nil
	}

	snap := s.build(gen, products, counts, settings, time.Now())
	snap.Degraded = degraded
	metrics.RecordCatalogLoad(float64(time.Since(start).Milliseconds()))

	for {
		cur := s.snapshot.Load()
		if cur.Generation > gen {
			metrics.RecordLoadDiscarded()
			s.logger.Debug(ctx, "catalog load discarded",
				logger.Int64("generation", int64(gen)),
				logger.Int64("published", int64(cur.Generation)),
			)
			return cur, ErrSuperseded
		}
		if s.snapshot.CompareAndSwap(cur, snap) {
			break
		}
	}
	metrics.UpdateCatalog(len(snap.Entries), gen)
	s.logger.Info(ctx, "catalog published",
		logger.Int64("generation", int64(gen)),
		logger.Int("entries", len(snap.Entries)),
		logger.Any("degraded", degraded),
	)
	return snap, nil
}

func (s *Service) degrade(ctx context.Context, source string, err error) bool {
	if err == nil {
		return false
	}
	metrics.RecordError("catalog", source)
	s.logger.Warn(ctx, "source unavailable, using default",
		logger.String("source", source),
		logger.Error(err),
	)
	return true
}

// Page is one window of a filtered catalog.
type Page struct {
	Category    string               `json:"category"`
	Items       []model.CatalogEntry `json:"items"`
	Visible     int                  `json:"visible"`
	NextVisible int                  `json:"next_visible"`
	HasMore     bool                 `json:"has_more"`
	Total       int                  `json:"total"`
}

// Browse serves the session's window of the category; an empty category
// means All. Switching category resets the window to the first page and
// ignores visible. Otherwise a positive visible moves the window there and
// zero keeps the current one.
func (s *Service) Browse(sess *Session, categoryKey string, visible int) Page {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	c := s.cursorFor(sess)
	if !c.SetFilter(pageKey(categoryKey)) && visible > 0 {
		c.Seek(visible)
	}
	return s.pageAt(c.Filter(), c.Visible())
}

// More reveals the next page of the session's active category.
func (s *Service) More(sess *Session) Page {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	c := s.cursorFor(sess)
	c.LoadMore()
	return s.pageAt(c.Filter(), c.Visible())
}

// cursorFor returns the session's paging cursor. Callers hold sess.mu.
func (s *Service) cursorFor(sess *Session) *paging.Cursor {
	if sess.cursor == nil {
		sess.cursor = paging.NewCursor(category.All, s.pageSize)
	}
	return sess.cursor
}

func pageKey(categoryKey string) string {
	if categoryKey == "" || categoryKey == category.All {
		return category.All
	}
	return category.Normalize(categoryKey)
}

func (s *Service) pageAt(key string, visible int) Page {
	filtered := category.Filter(s.Catalog().Entries, key)
	items := paging.Window(filtered, visible)
	return Page{
		Category:    key,
		Items:       items,
		Visible:     len(items),
		NextVisible: paging.AdvanceBy(visible, s.pageSize),
		HasMore:     paging.HasMore(filtered, visible),
		Total:       len(filtered),
	}
}

// Top returns the n most viewed entries with their ranks.
func (s *Service) Top(n int) []ranking.Ranked {
	return ranking.WithRanks(ranking.TopN(s.Catalog().Entries, n))
}

// Badges returns k distinct promotional badges.
func (s *Service) Badges(k int) []string {
	return ranking.PickBadges(s.sampler, k)
}

// LookupResult is the outcome of a code lookup.
type LookupResult struct {
	Entry    model.CatalogEntry
	Found    bool
	Fallback string
}

// Lookup resolves a product code. A miss carries the fallback URL.
func (s *Service) Lookup(code string) LookupResult {
	snap := s.Catalog()
	if e, ok := snap.Lookup(code); ok {
		return LookupResult{Entry: e, Found: true}
	}
	metrics.RecordLookupMiss()
	return LookupResult{Fallback: s.fallback(snap)}
}

func (s *Service) fallback(snap *Snapshot) string {
	for _, st := range snap.Settings {
		if st.Type == model.SettingFallback && st.URL != "" {
			return st.URL
		}
	}
	return s.fallbackURL
}
