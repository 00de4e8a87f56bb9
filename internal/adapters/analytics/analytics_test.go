package analytics_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/daonpick/internal/adapters/analytics"
	"github.com/okian/daonpick/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestHTTPTracker(t *testing.T) {
	Convey("Given a collector", t, func() {
		received := make(chan analytics.Event, 1)
		var status atomic.Int32
		status.Store(http.StatusNoContent)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var ev analytics.Event
			_ = json.NewDecoder(r.Body).Decode(&ev)
			received <- ev
			w.WriteHeader(int(status.Load()))
		}))
		defer srv.Close()

		tracker := analytics.NewHTTPTracker(srv.URL, analytics.WithHTTPClient(srv.Client()))
		click := model.Click{ID: "c1", Session: "s1", Code: "10024", Name: "다지기", URL: "https://x", At: time.Unix(0, 0)}

		Convey("When a click is tracked", func() {
			err := tracker.Track(context.Background(), click)

			Convey("Then the event is posted as JSON", func() {
				So(err, ShouldBeNil)
				ev := <-received
				So(ev.Name, ShouldEqual, "select_item")
				So(ev.ClickID, ShouldEqual, "c1")
				So(ev.Code, ShouldEqual, "10024")
				So(ev.ItemName, ShouldEqual, "다지기")
			})
		})

		Convey("When the collector rejects the event", func() {
			status.Store(http.StatusBadGateway)
			err := tracker.Track(context.Background(), click)
			So(errors.Is(err, analytics.ErrRejected), ShouldBeTrue)
		})
	})

	Convey("Given no collector", t, func() {
		So(analytics.Noop{}.Track(context.Background(), model.Click{}), ShouldBeNil)
	})
}
