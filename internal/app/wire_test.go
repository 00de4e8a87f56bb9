package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/okian/daonpick/internal/adapters/analytics"
	"github.com/okian/daonpick/internal/adapters/statestore"
	"github.com/okian/daonpick/internal/adapters/viewstore"
	service "github.com/okian/daonpick/internal/app"
	"github.com/okian/daonpick/internal/config"
	"github.com/okian/daonpick/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWiring(t *testing.T) {
	ctx := context.Background()

	Convey("Given the default config", t, func() {
		cfg := config.New()

		Convey("Then the in-memory backends are chosen", func() {
			views, err := service.NewViewStore(ctx, cfg, logger.Nop())
			So(err, ShouldBeNil)
			So(views, ShouldHaveSameTypeAs, &viewstore.MemoryStore{})
			state, err := service.NewStateStore(ctx, cfg)
			So(err, ShouldBeNil)
			So(state, ShouldHaveSameTypeAs, &statestore.MemoryStore{})
			So(service.NewTracker(cfg), ShouldHaveSameTypeAs, analytics.Noop{})
		})

		Convey("Then the options build a service that starts and stops", func() {
			cfg.RefreshIntervalMS = 0
			opts, err := service.FromConfig(ctx, cfg, logger.Nop())
			So(err, ShouldBeNil)
			svc := service.New(opts...)
			So(svc.Start(ctx), ShouldBeNil)
			So(len(svc.Catalog().Entries), ShouldEqual, 2)
			So(svc.Stop(ctx), ShouldBeNil)
		})
	})

	Convey("Given redis, sqlite and analytics settings", t, func() {
		mr := miniredis.RunT(t)
		cfg := config.New()
		cfg.ViewStore = config.BackendRedis
		cfg.RedisURL = "redis://" + mr.Addr()
		cfg.StateStore = config.BackendSQLite
		cfg.SQLitePath = filepath.Join(t.TempDir(), "state.db")
		cfg.AnalyticsURL = "http://collector.invalid/events"

		Convey("Then each backend is opened", func() {
			views, err := service.NewViewStore(ctx, cfg, logger.Nop())
			So(err, ShouldBeNil)
			defer views.Close()
			So(views, ShouldHaveSameTypeAs, &viewstore.RedisStore{})

			state, err := service.NewStateStore(ctx, cfg)
			So(err, ShouldBeNil)
			defer state.Close()
			So(state, ShouldHaveSameTypeAs, &statestore.SQLiteStore{})

			So(service.NewTracker(cfg), ShouldHaveSameTypeAs, &analytics.HTTPTracker{})
		})
	})

	Convey("Given an unknown backend", t, func() {
		cfg := config.New()
		cfg.ViewStore = "mongo"

		Convey("Then wiring fails with an invalid config error", func() {
			_, err := service.FromConfig(ctx, cfg, logger.Nop())
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
