package config_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/okian/daonpick/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.PageSize, convey.ShouldEqual, 10)
			convey.So(cfg.TopN, convey.ShouldEqual, 10)
			convey.So(cfg.RecentCap, convey.ShouldEqual, 5)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.ViewStore, convey.ShouldEqual, config.BackendMemory)
			convey.So(cfg.FetchTimeout(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.SessionLimit, convey.ShouldEqual, 10_000)
			convey.So(cfg.SessionTTL(), convey.ShouldEqual, 30*time.Minute)
			convey.So(cfg.AdminToken, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then a non-positive session limit is rejected", func() {
			cfg.SessionLimit = 0
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("Then a non-positive refresh interval disables refresh", func() {
			cfg.RefreshIntervalMS = 0
			convey.So(cfg.RefreshInterval(), convey.ShouldEqual, time.Duration(0))
		})
	})
}
