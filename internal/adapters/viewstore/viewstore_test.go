package viewstore_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/okian/daonpick/internal/adapters/viewstore"
	"github.com/okian/daonpick/internal/domain/model"
	"github.com/okian/daonpick/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func countOf(counts []model.ViewCount, code string) int64 {
	for _, c := range counts {
		if c.Code == code {
			return c.Count
		}
	}
	return -1
}

func hammer(store viewstore.Store, code string, n int) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Increment(context.Background(), code)
		}()
	}
	wg.Wait()
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a memory store with a seed", t, func() {
		ctx := context.Background()
		s := viewstore.NewMemoryStore(model.ViewCount{Code: "A", Count: 5})

		Convey("When incrementing concurrently", func() {
			hammer(s, "A", 200)

			Convey("Then no increment is lost", func() {
				all, err := s.All(ctx)
				So(err, ShouldBeNil)
				So(countOf(all, "A"), ShouldEqual, 205)
			})
		})

		Convey("When the code is empty", func() {
			So(errors.Is(s.Increment(ctx, " "), viewstore.ErrEmptyCode), ShouldBeTrue)
		})

		Convey("Then get and set round trip", func() {
			So(s.Set(ctx, "B", 9), ShouldBeNil)
			n, err := s.Get(ctx, "B")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 9)
		})
	})
}

func TestReadModifyWrite(t *testing.T) {
	Convey("Given a read-modify-write adapter", t, func() {
		ctx := context.Background()
		mem := viewstore.NewMemoryStore()

		Convey("When increments are sequential", func() {
			s := viewstore.NewReadModifyWrite(mem)
			for i := 0; i < 10; i++ {
				So(s.Increment(ctx, "A"), ShouldBeNil)
			}

			Convey("Then every increment lands", func() {
				n, _ := mem.Get(ctx, "A")
				So(n, ShouldEqual, 10)
			})
		})

		Convey("When increments race with a gap between read and write", func() {
			s := viewstore.NewReadModifyWrite(mem, viewstore.WithGap(5*time.Millisecond))
			hammer(s, "A", 50)

			Convey("Then updates are lost", func() {
				n, _ := mem.Get(ctx, "A")
				So(n, ShouldBeGreaterThan, 0)
				So(n, ShouldBeLessThan, 50)
			})
		})

		Convey("When the context is cancelled inside the gap", func() {
			s := viewstore.NewReadModifyWrite(mem, viewstore.WithGap(time.Second))
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			So(errors.Is(s.Increment(cctx, "A"), context.Canceled), ShouldBeTrue)
			So(s.Close(), ShouldBeNil)
		})
	})
}

func TestRedisStore(t *testing.T) {
	Convey("Given a redis store on miniredis", t, func() {
		ctx := context.Background()
		mr := miniredis.RunT(t)
		s, err := viewstore.NewRedisStore(ctx, "redis://"+mr.Addr()+"/0", "test:views")
		So(err, ShouldBeNil)
		defer func() { _ = s.Close() }()

		Convey("When incrementing concurrently", func() {
			hammer(s, "10024", 100)

			Convey("Then HINCRBY keeps every increment", func() {
				all, err := s.All(ctx)
				So(err, ShouldBeNil)
				So(countOf(all, "10024"), ShouldEqual, 100)
				So(mr.HGet("test:views", "10024"), ShouldEqual, "100")
			})
		})

		Convey("When the hash holds a non-numeric field", func() {
			mr.HSet("test:views", "bad", "x")
			mr.HSet("test:views", "good", "3")

			Convey("Then it is skipped", func() {
				all, err := s.All(ctx)
				So(err, ShouldBeNil)
				So(len(all), ShouldEqual, 1)
				So(countOf(all, "good"), ShouldEqual, 3)
			})
		})

		Convey("Then get reports zero for a missing code and set overwrites", func() {
			n, err := s.Get(ctx, "nope")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)
			So(s.Set(ctx, "nope", 4), ShouldBeNil)
			n, _ = s.Get(ctx, "nope")
			So(n, ShouldEqual, 4)
		})

		Convey("When the server goes away", func() {
			mr.Close()
			_, err := s.All(ctx)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given an unreachable redis", t, func() {
		_, err := viewstore.NewRedisStore(context.Background(), "not a url", "")
		So(errors.Is(err, viewstore.ErrConnect), ShouldBeTrue)
	})

	Convey("Given a client built elsewhere", t, func() {
		mr := miniredis.RunT(t)
		s := viewstore.NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
		So(s.Increment(context.Background(), "A"), ShouldBeNil)
		So(mr.HGet(viewstore.DefaultRedisHash, "A"), ShouldEqual, "1")
		So(s.Close(), ShouldBeNil)
	})
}

// TestPostgresStore runs against a real database named by
// DAONPICK_TEST_POSTGRES_URL and is skipped otherwise.
func TestPostgresStore(t *testing.T) {
	url := os.Getenv("DAONPICK_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("DAONPICK_TEST_POSTGRES_URL not set")
	}
	Convey("Given a postgres store", t, func() {
		ctx := context.Background()
		s, err := viewstore.NewPostgresStore(ctx, url, viewstore.WithPostgresLogger(logger.Nop()))
		So(err, ShouldBeNil)
		defer func() { _ = s.Close() }()

		before, err := s.All(ctx)
		So(err, ShouldBeNil)
		base := countOf(before, "pg-test")
		if base < 0 {
			base = 0
		}

		hammer(s, "pg-test", 20)
		after, err := s.All(ctx)
		So(err, ShouldBeNil)
		So(countOf(after, "pg-test"), ShouldEqual, base+20)
	})
}
