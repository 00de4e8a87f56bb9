// Package interaction records what a session does with the catalog: its
// wishlist, its recent views and its clicks.
//
// Both lists are persisted after every mutation. Stored data that cannot be
// decoded loads as empty, and individual malformed items are dropped. Click
// side effects are handed to a Dispatcher and never block the caller.
package interaction

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/daonpick/internal/adapters/statestore"
	"github.com/okian/daonpick/internal/domain/dedupe"
	"github.com/okian/daonpick/internal/domain/model"
	"github.com/okian/daonpick/pkg/logger"
	"github.com/okian/daonpick/pkg/metrics"
)

// DefaultRecentCap is the number of recent views kept per session.
const DefaultRecentCap = 5

// Dispatcher accepts click tasks without waiting for them to run.
type Dispatcher interface {
	Enqueue(ctx context.Context, c model.Click) error
}

type discard struct{}

func (discard) Enqueue(context.Context, model.Click) error { return nil }

// Recorder owns one session's interaction state. It is safe for concurrent use.
type Recorder struct {
	store     statestore.Store
	session   string
	tasks     Dispatcher
	seen      dedupe.Deduper
	recentCap int
	now       func() time.Time
	newID     func() string
	logger    logger.Logger

	mu       sync.Mutex
	wishlist []model.SavedItem
	recent   []model.SavedItem
}

// NewRecorder loads the persisted lists of session from store.
func NewRecorder(ctx context.Context, store statestore.Store, session string, opts ...Option) *Recorder {
	r := &Recorder{
		store:     store,
		session:   session,
		tasks:     discard{},
		recentCap: DefaultRecentCap,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("recorder")
	}
	r.logger = r.logger.With(logger.String("session", session))

	r.wishlist = r.load(ctx, statestore.WishlistKey, func(it model.SavedItem) bool { return it.Code != "" })
	r.recent = r.load(ctx, statestore.RecentKey, complete)
	if len(r.recent) > r.recentCap {
		r.recent = r.recent[:r.recentCap]
	}
	return r
}

// Session returns the session id the recorder belongs to.
func (r *Recorder) Session() string { return r.session }

func complete(it model.SavedItem) bool {
	return it.Code != "" && it.Name != "" && it.Image != ""
}

func (r *Recorder) load(ctx context.Context, key string, keep func(model.SavedItem) bool) []model.SavedItem {
	out := []model.SavedItem{}
	raw, err := r.store.Get(ctx, statestore.SessionKey(r.session, key))
	if errors.Is(err, statestore.ErrNotFound) {
		return out
	}
	if err != nil {
		metrics.RecordError("recorder", "load")
		r.logger.Warn(ctx, "state load failed", logger.String("key", key), logger.Error(err))
		return out
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		r.logger.Warn(ctx, "corrupt state ignored", logger.String("key", key), logger.Error(err))
		return out
	}
	seen := make(map[string]struct{}, len(items))
	for _, msg := range items {
		it, ok := decodeItem(msg)
		if !ok || !keep(it) {
			continue
		}
		// first occurrence wins; lists are stored most recent first
		k := model.LookupKey(it.Code)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

// decodeItem accepts codes stored as strings or numbers.
func decodeItem(msg json.RawMessage) (model.SavedItem, bool) {
	var fields map[string]any
	if err := json.Unmarshal(msg, &fields); err != nil {
		return model.SavedItem{}, false
	}
	return model.SavedItem{
		Code:  text(fields["code"]),
		Name:  text(fields["name"]),
		Image: text(fields["image"]),
		Link:  text(fields["link"]),
	}, true
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func (r *Recorder) persist(ctx context.Context, key string, items []model.SavedItem) {
	raw, err := json.Marshal(items)
	if err == nil {
		err = r.store.Put(ctx, statestore.SessionKey(r.session, key), raw)
	}
	if err != nil {
		metrics.RecordError("recorder", "persist")
		r.logger.Error(ctx, "state persist failed", logger.String("key", key), logger.Error(err))
	}
}

func (r *Recorder) remove(ctx context.Context, key string) {
	if err := r.store.Delete(ctx, statestore.SessionKey(r.session, key)); err != nil {
		metrics.RecordError("recorder", "delete")
		r.logger.Error(ctx, "state delete failed", logger.String("key", key), logger.Error(err))
	}
}

func indexOf(items []model.SavedItem, code string) int {
	key := model.LookupKey(code)
	return slices.IndexFunc(items, func(it model.SavedItem) bool { return model.LookupKey(it.Code) == key })
}

// ToggleWishlist removes p when it is wishlisted and prepends it otherwise.
// It reports whether p is wishlisted afterwards.
func (r *Recorder) ToggleWishlist(ctx context.Context, p model.ProductRecord) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.Code) == "" {
		return false
	}
	added := false
	if i := indexOf(r.wishlist, p.Code); i >= 0 {
		r.wishlist = slices.Delete(slices.Clone(r.wishlist), i, i+1)
	} else {
		r.wishlist = append([]model.SavedItem{p.Saved()}, r.wishlist...)
		added = true
	}
	r.persist(ctx, statestore.WishlistKey, r.wishlist)
	return added
}

// IsWishlisted reports whether code is on the wishlist.
func (r *Recorder) IsWishlisted(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return indexOf(r.wishlist, code) >= 0
}

// Wishlist returns the wishlist, most recently added first.
func (r *Recorder) Wishlist() []model.SavedItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.wishlist)
}

// ClearWishlist empties the wishlist.
func (r *Recorder) ClearWishlist(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wishlist = []model.SavedItem{}
	r.remove(ctx, statestore.WishlistKey)
}

// AddRecentView moves p to the front of the recent views. Products missing a
// code, name or image are ignored. It reports whether p was recorded.
func (r *Recorder) AddRecentView(ctx context.Context, p model.ProductRecord) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addRecent(ctx, p)
}

func (r *Recorder) addRecent(ctx context.Context, p model.ProductRecord) bool {
	it := p.Saved()
	it.Code = strings.TrimSpace(it.Code)
	if !complete(it) {
		return false
	}
	next := make([]model.SavedItem, 0, r.recentCap)
	next = append(next, it)
	for _, old := range r.recent {
		if model.LookupKey(old.Code) != model.LookupKey(it.Code) {
			next = append(next, old)
		}
	}
	if len(next) > r.recentCap {
		next = next[:r.recentCap]
	}
	r.recent = next
	r.persist(ctx, statestore.RecentKey, r.recent)
	return true
}

// RecentViews returns the recent views, most recent first.
func (r *Recorder) RecentViews() []model.SavedItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.recent)
}

// ClearRecent empties the recent views.
func (r *Recorder) ClearRecent(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recent = []model.SavedItem{}
	r.remove(ctx, statestore.RecentKey)
}

// NormalizeURL prefixes links that lack a scheme with https://.
func NormalizeURL(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(link), "http") {
		return link
	}
	return "https://" + strings.TrimPrefix(link, "//")
}

// RecordClick records a recent view, hands the counter increment and the
// analytics event to the dispatcher, and returns the outbound URL.
// A click id already seen is not dispatched again; an empty id gets a fresh
// one. Dispatch failures are logged and never returned.
func (r *Recorder) RecordClick(ctx context.Context, e model.CatalogEntry, clickID string) (string, error) {
	r.mu.Lock()
	r.addRecent(ctx, e.ProductRecord)
	r.mu.Unlock()

	url := NormalizeURL(e.Link)
	if url == "" {
		return "", ErrNoLink
	}

	if clickID == "" {
		clickID = r.newID()
	}
	if r.seen != nil && r.seen.SeenAndRecord(ctx, clickID) {
		metrics.RecordClickDuplicate()
		return url, nil
	}

	metrics.RecordClick()
	c := model.Click{
		ID:       clickID,
		Session:  r.session,
		Code:     e.Code,
		Name:     e.Name,
		Category: e.Category,
		URL:      url,
		At:       r.now(),
	}
	if err := r.tasks.Enqueue(context.WithoutCancel(ctx), c); err != nil {
		if r.seen != nil {
			r.seen.Unrecord(ctx, clickID)
		}
		r.logger.Warn(ctx, "click side effects dropped",
			logger.String("click_id", clickID),
			logger.String("code", e.Code),
			logger.Error(err),
		)
	}
	return url, nil
}
