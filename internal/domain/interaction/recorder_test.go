package interaction_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/okian/daonpick/internal/adapters/statestore"
	"github.com/okian/daonpick/internal/domain/dedupe"
	"github.com/okian/daonpick/internal/domain/interaction"
	"github.com/okian/daonpick/internal/domain/model"
	"github.com/okian/daonpick/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeDispatcher struct {
	mu     sync.Mutex
	clicks []model.Click
	err    error
}

func (f *fakeDispatcher) Enqueue(ctx context.Context, c model.Click) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.clicks = append(f.clicks, c)
	return nil
}

type failingStore struct{ *statestore.MemoryStore }

func (failingStore) Put(context.Context, string, []byte) error { return errors.New("disk full") }

func product(code string) model.ProductRecord {
	return model.ProductRecord{Code: code, Name: "name " + code, Image: "https://img/" + code, Link: "link.example/" + code}
}

func codes(items []model.SavedItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Code
	}
	return out
}

func newRecorder(ctx context.Context, store statestore.Store, opts ...interaction.Option) *interaction.Recorder {
	opts = append([]interaction.Option{interaction.WithLogger(logger.Nop())}, opts...)
	return interaction.NewRecorder(ctx, store, "s1", opts...)
}

func TestWishlist(t *testing.T) {
	Convey("Given an empty wishlist", t, func() {
		ctx := context.Background()
		store := statestore.NewMemoryStore()
		r := newRecorder(ctx, store)

		Convey("When X is toggled once", func() {
			added := r.ToggleWishlist(ctx, product("X"))

			Convey("Then the wishlist is [X]", func() {
				So(added, ShouldBeTrue)
				So(codes(r.Wishlist()), ShouldResemble, []string{"X"})
				So(r.IsWishlisted("x"), ShouldBeTrue)
			})

			Convey("Then a second toggle empties it again", func() {
				So(r.ToggleWishlist(ctx, product("X")), ShouldBeFalse)
				So(r.Wishlist(), ShouldBeEmpty)
				So(r.IsWishlisted("X"), ShouldBeFalse)
			})

			Convey("Then the list is persisted under the session key", func() {
				raw, err := store.Get(ctx, statestore.SessionKey("s1", statestore.WishlistKey))
				So(err, ShouldBeNil)
				So(string(raw), ShouldContainSubstring, `"code":"X"`)
			})
		})

		Convey("When several products are added", func() {
			r.ToggleWishlist(ctx, product("A"))
			r.ToggleWishlist(ctx, product("B"))

			Convey("Then the newest is first", func() {
				So(codes(r.Wishlist()), ShouldResemble, []string{"B", "A"})
			})

			Convey("Then a new recorder on the same store sees them", func() {
				again := newRecorder(ctx, store)
				So(codes(again.Wishlist()), ShouldResemble, []string{"B", "A"})
			})

			Convey("Then clearing empties the list and drops the stored key", func() {
				r.ClearWishlist(ctx)
				So(r.Wishlist(), ShouldBeEmpty)
				So(newRecorder(ctx, store).Wishlist(), ShouldBeEmpty)
				_, err := store.Get(ctx, statestore.SessionKey("s1", statestore.WishlistKey))
				So(errors.Is(err, statestore.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the product has no code", func() {
			So(r.ToggleWishlist(ctx, model.ProductRecord{Name: "n"}), ShouldBeFalse)
			So(r.Wishlist(), ShouldBeEmpty)
		})
	})
}

func TestRecentViews(t *testing.T) {
	Convey("Given a recorder", t, func() {
		ctx := context.Background()
		r := newRecorder(ctx, statestore.NewMemoryStore())

		Convey("When seven products are viewed", func() {
			for i := 1; i <= 7; i++ {
				r.AddRecentView(ctx, product(strconv.Itoa(i)))
			}

			Convey("Then only the five most recent are kept", func() {
				So(codes(r.RecentViews()), ShouldResemble, []string{"7", "6", "5", "4", "3"})
			})

			Convey("Then viewing one again moves it to the front without duplicating", func() {
				r.AddRecentView(ctx, product("5"))
				So(codes(r.RecentViews()), ShouldResemble, []string{"5", "7", "6", "4", "3"})
			})
		})

		Convey("When an incomplete product is viewed", func() {
			p := product("A")
			p.Image = ""
			So(r.AddRecentView(ctx, p), ShouldBeFalse)
			So(r.AddRecentView(ctx, model.ProductRecord{Code: "B", Image: "i"}), ShouldBeFalse)
			So(r.RecentViews(), ShouldBeEmpty)
		})

		Convey("When the recent views are cleared", func() {
			r.AddRecentView(ctx, product("A"))
			r.ClearRecent(ctx)
			So(r.RecentViews(), ShouldBeEmpty)
		})
	})

	Convey("Given a custom cap", t, func() {
		ctx := context.Background()
		r := newRecorder(ctx, statestore.NewMemoryStore(), interaction.WithRecentCap(2))
		r.AddRecentView(ctx, product("A"))
		r.AddRecentView(ctx, product("B"))
		r.AddRecentView(ctx, product("C"))
		So(codes(r.RecentViews()), ShouldResemble, []string{"C", "B"})
	})
}

func TestCorruptState(t *testing.T) {
	Convey("Given corrupt persisted data", t, func() {
		ctx := context.Background()
		store := statestore.NewMemoryStore()
		_ = store.Put(ctx, statestore.SessionKey("s1", statestore.WishlistKey), []byte(`{not json`))
		_ = store.Put(ctx, statestore.SessionKey("s1", statestore.RecentKey), []byte(
			`[{"code":10024,"name":"n","image":"i","link":"l"}, 7, {"code":"B","name":"b"}, {"code":"C","name":"c","image":"i"}]`))

		r := newRecorder(ctx, store)

		Convey("Then the unreadable list loads as empty", func() {
			So(r.Wishlist(), ShouldBeEmpty)
		})

		Convey("Then malformed items are dropped and numeric codes kept", func() {
			So(codes(r.RecentViews()), ShouldResemble, []string{"10024", "C"})
		})
	})

	Convey("Given persisted lists holding the same code twice", t, func() {
		ctx := context.Background()
		store := statestore.NewMemoryStore()
		_ = store.Put(ctx, statestore.SessionKey("s1", statestore.WishlistKey), []byte(
			`[{"code":"A","name":"a"}, {"code":"B","name":"b"}, {"code":" a ","name":"again"}]`))
		_ = store.Put(ctx, statestore.SessionKey("s1", statestore.RecentKey), []byte(
			`[{"code":"X","name":"x","image":"i"}, {"code":"x","name":"old","image":"i"}, {"code":"Y","name":"y","image":"i"}]`))

		r := newRecorder(ctx, store)

		Convey("Then each code is loaded once, keeping the first occurrence", func() {
			So(codes(r.Wishlist()), ShouldResemble, []string{"A", "B"})
			So(codes(r.RecentViews()), ShouldResemble, []string{"X", "Y"})
			So(r.RecentViews()[0].Name, ShouldEqual, "x")
		})
	})

	Convey("Given a store that fails writes", t, func() {
		ctx := context.Background()
		r := newRecorder(ctx, failingStore{statestore.NewMemoryStore()})

		Convey("Then mutations still apply in memory", func() {
			So(r.ToggleWishlist(ctx, product("A")), ShouldBeTrue)
			So(r.IsWishlisted("A"), ShouldBeTrue)
		})
	})
}

func TestRecordClick(t *testing.T) {
	Convey("Given a recorder with a dispatcher and a deduper", t, func() {
		ctx := context.Background()
		tasks := &fakeDispatcher{}
		seen := dedupe.NewInMemoryDeduper()
		at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		r := newRecorder(ctx, statestore.NewMemoryStore(),
			interaction.WithDispatcher(tasks),
			interaction.WithDeduper(seen),
			interaction.WithClock(func() time.Time { return at }),
			interaction.WithIDGenerator(func() string { return "generated" }),
		)
		entry := model.CatalogEntry{ProductRecord: product("A"), Views: 3}

		Convey("When a product is clicked", func() {
			url, err := r.RecordClick(ctx, entry, "click-1")

			Convey("Then the URL is scheme-normalized", func() {
				So(err, ShouldBeNil)
				So(url, ShouldEqual, "https://link.example/A")
			})

			Convey("Then a recent view and one task are recorded", func() {
				So(codes(r.RecentViews()), ShouldResemble, []string{"A"})
				So(len(tasks.clicks), ShouldEqual, 1)
				So(tasks.clicks[0].Code, ShouldEqual, "A")
				So(tasks.clicks[0].Session, ShouldEqual, "s1")
				So(tasks.clicks[0].At, ShouldEqual, at)
			})

			Convey("Then retrying with the same click id does not dispatch twice", func() {
				url2, err := r.RecordClick(ctx, entry, "click-1")
				So(err, ShouldBeNil)
				So(url2, ShouldEqual, url)
				So(len(tasks.clicks), ShouldEqual, 1)
			})
		})

		Convey("When the click carries no id", func() {
			_, _ = r.RecordClick(ctx, entry, "")
			So(tasks.clicks[0].ID, ShouldEqual, "generated")
		})

		Convey("When the dispatcher rejects the task", func() {
			tasks.err = errors.New("queue full")
			url, err := r.RecordClick(ctx, entry, "click-2")

			Convey("Then navigation still proceeds", func() {
				So(err, ShouldBeNil)
				So(url, ShouldEqual, "https://link.example/A")
			})

			Convey("Then the click id can be retried", func() {
				tasks.err = nil
				_, _ = r.RecordClick(ctx, entry, "click-2")
				So(len(tasks.clicks), ShouldEqual, 1)
			})
		})

		Convey("When the product has no link", func() {
			noLink := entry
			noLink.Link = "  "
			_, err := r.RecordClick(ctx, noLink, "click-3")

			Convey("Then ErrNoLink is returned and the view is still recorded", func() {
				So(errors.Is(err, interaction.ErrNoLink), ShouldBeTrue)
				So(codes(r.RecentViews()), ShouldResemble, []string{"A"})
				So(tasks.clicks, ShouldBeEmpty)
			})
		})
	})
}

func TestNormalizeURL(t *testing.T) {
	Convey("Given outbound links", t, func() {
		So(interaction.NormalizeURL("https://a.b/c"), ShouldEqual, "https://a.b/c")
		So(interaction.NormalizeURL("http://a.b"), ShouldEqual, "http://a.b")
		So(interaction.NormalizeURL("HTTPS://A.B"), ShouldEqual, "HTTPS://A.B")
		So(interaction.NormalizeURL("link.coupang.com/a/x"), ShouldEqual, "https://link.coupang.com/a/x")
		So(interaction.NormalizeURL("//cdn.example/x"), ShouldEqual, "https://cdn.example/x")
		So(interaction.NormalizeURL(""), ShouldEqual, "")
	})
}
