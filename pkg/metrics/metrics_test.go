package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the namespace", func() {
				So(m, ShouldNotBeNil)
				m.clicks.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_unit_clicks_total")
			})
		})
	})
}

func TestRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording clicks and increments", func() {
			before := testutil.ToFloat64(globalManager.clicks)
			RecordClick()
			RecordIncrement("ok")
			RecordFeedFetch("products", "ok", 12)
			UpdateCatalog(42, 7)
			UpdateDegraded("views", true)

			Convey("Then the values are observable", func() {
				So(testutil.ToFloat64(globalManager.clicks), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.catalogSize), ShouldEqual, 42)
				So(testutil.ToFloat64(globalManager.catalogGen), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.catalogDegraded.WithLabelValues("views")), ShouldEqual, 1)
				So(GetRegistry(), ShouldNotBeNil)
			})
		})
	})
}
