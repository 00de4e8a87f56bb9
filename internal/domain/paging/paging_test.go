package paging_test

import (
	"testing"

	"github.com/okian/daonpick/internal/domain/paging"
	. "github.com/smartystreets/goconvey/convey"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestWindow(t *testing.T) {
	Convey("Given a list of 25 items", t, func() {
		list := seq(25)

		Convey("Then every window is a prefix of length min(v, len)", func() {
			for _, v := range []int{-3, 0, 1, 10, 24, 25, 40} {
				w := paging.Window(list, v)
				want := v
				if want < 0 {
					want = 0
				}
				if want > len(list) {
					want = len(list)
				}
				So(len(w), ShouldEqual, want)
				So(w, ShouldResemble, list[:want])
				So(paging.HasMore(list, v), ShouldEqual, want < len(list))
			}
		})

		Convey("Then advancing reveals one page at a time", func() {
			v := paging.PageSize
			v = paging.Advance(v)
			So(v, ShouldEqual, 20)
			So(paging.HasMore(list, v), ShouldBeTrue)
			v = paging.Advance(v)
			So(paging.HasMore(list, v), ShouldBeFalse)
			So(paging.Advance(-5), ShouldEqual, paging.PageSize)
		})
	})
}

func TestCursor(t *testing.T) {
	Convey("Given a cursor on the all filter", t, func() {
		c := paging.NewCursor("전체", 0)
		c.LoadMore()
		c.LoadMore()
		So(c.Visible(), ShouldEqual, 30)

		Convey("When the same filter is set again", func() {
			So(c.SetFilter("전체"), ShouldBeFalse)
			So(c.Visible(), ShouldEqual, 30)
		})

		Convey("When the filter changes", func() {
			So(c.SetFilter("뷰티"), ShouldBeTrue)

			Convey("Then the window resets to the first page", func() {
				So(c.Visible(), ShouldEqual, paging.PageSize)
				So(c.Filter(), ShouldEqual, "뷰티")
			})
		})
	})
}

func TestCursorPageSize(t *testing.T) {
	Convey("Given a cursor with a page size of 4", t, func() {
		c := paging.NewCursor("전체", 4)
		So(c.Visible(), ShouldEqual, 4)

		Convey("When loading more", func() {
			c.LoadMore()

			Convey("Then it advances by its own page size", func() {
				So(c.Visible(), ShouldEqual, 8)
				So(paging.AdvanceBy(8, 4), ShouldEqual, 12)
			})
		})

		Convey("When seeking below the first page", func() {
			c.Seek(1)

			Convey("Then the first page is kept", func() {
				So(c.Visible(), ShouldEqual, 4)
			})
		})

		Convey("When seeking and then switching filters", func() {
			c.Seek(30)
			So(c.Visible(), ShouldEqual, 30)
			c.SetFilter("뷰티")

			Convey("Then the offset does not carry over", func() {
				So(c.Visible(), ShouldEqual, 4)
			})
		})
	})
}
