package category_test

import (
	"testing"

	"github.com/okian/daonpick/internal/domain/category"
	"github.com/okian/daonpick/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func entry(code, cat string) model.CatalogEntry {
	return model.CatalogEntry{ProductRecord: model.ProductRecord{Code: code, Category: cat}}
}

func TestNormalize(t *testing.T) {
	Convey("Given category labels with and without emoji", t, func() {
		cases := map[string]string{
			"🍽️주방용품":    "주방용품",
			" 주방용품 ":    "주방용품",
			"🕯️ 인테리어":  "인테리어",
			"🏎️자동차용품":  "자동차용품",
			"🛹완구/취미":   "완구/취미",
			"👨‍👩‍👧가족": "가족",
			"":          "",
		}
		for in, want := range cases {
			So(category.Normalize(in), ShouldEqual, want)
		}
	})

	Convey("Given every canonical tab", t, func() {
		for _, tab := range category.Canonical() {
			So(category.Normalize(tab.Label), ShouldEqual, tab.Key)
		}
	})
}

func TestDistinctAndFilter(t *testing.T) {
	Convey("Given a catalog with mixed labels", t, func() {
		catalog := []model.CatalogEntry{
			entry("1", "🧴뷰티"),
			entry("2", "주방용품"),
			entry("3", "뷰티"),
			entry("4", ""),
			entry("5", "🍽️주방용품"),
			entry("6", "캠핑"),
		}

		Convey("Then distinct keys keep first appearance order", func() {
			So(category.Distinct(catalog), ShouldResemble, []string{"뷰티", "주방용품", "", "캠핑"})
		})

		Convey("Then filtering groups labels regardless of emoji", func() {
			got := category.Filter(catalog, "뷰티")
			So(len(got), ShouldEqual, 2)
			So(got[0].Code, ShouldEqual, "1")
			So(got[1].Code, ShouldEqual, "3")
		})

		Convey("Then the all key returns the catalog unfiltered", func() {
			So(category.Filter(catalog, category.All), ShouldResemble, catalog)
		})

		Convey("Then the filters over distinct keys partition the catalog", func() {
			total := 0
			seen := map[string]int{}
			for _, k := range category.Distinct(catalog) {
				for _, e := range category.Filter(catalog, k) {
					seen[e.Code]++
					total++
				}
			}
			So(total, ShouldEqual, len(catalog))
			So(len(seen), ShouldEqual, len(catalog))
			for _, n := range seen {
				So(n, ShouldEqual, 1)
			}
		})

		Convey("Then uncategorized entries are reachable through the empty key", func() {
			got := category.Filter(catalog, "")
			So(len(got), ShouldEqual, 1)
			So(got[0].Code, ShouldEqual, "4")
		})

		Convey("Then ordered tabs follow the canonical order with All first", func() {
			tabs := category.Ordered(catalog, category.Canonical())
			So(len(tabs), ShouldEqual, 3)
			So(tabs[0].Key, ShouldEqual, category.All)
			So(tabs[1].Key, ShouldEqual, "주방용품")
			So(tabs[2].Key, ShouldEqual, "뷰티")
		})
	})
}

func TestPartitionWithUncategorized(t *testing.T) {
	Convey("Given a catalog where some labels normalize to nothing", t, func() {
		catalog := []model.CatalogEntry{
			entry("a", "뷰티"),
			entry("b", ""),
			entry("c", "🔥"),
		}

		Convey("When filtering by every distinct key", func() {
			var union []string
			for _, k := range category.Distinct(catalog) {
				for _, e := range category.Filter(catalog, k) {
					union = append(union, e.Code)
				}
			}

			Convey("Then every entry appears exactly once", func() {
				So(len(union), ShouldEqual, len(catalog))
				So(union, ShouldContain, "a")
				So(union, ShouldContain, "b")
				So(union, ShouldContain, "c")
			})
		})

		Convey("Then no tab is shown for the uncategorized entries", func() {
			tabs := category.Ordered(catalog, category.Canonical())
			So(len(tabs), ShouldEqual, 2)
			So(tabs[1].Key, ShouldEqual, "뷰티")
		})
	})
}
