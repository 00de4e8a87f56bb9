package clickload_test

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/daonpick/internal/adapters/feed"
	"github.com/okian/daonpick/internal/adapters/http/api"
	service "github.com/okian/daonpick/internal/app"
	"github.com/okian/daonpick/internal/clickload"
	"github.com/okian/daonpick/internal/domain/model"
	"github.com/okian/daonpick/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type stubFeed struct{}

func (stubFeed) Products(context.Context) ([]model.ProductRecord, feed.Report, error) {
	out := make([]model.ProductRecord, 6)
	for i := range out {
		code := fmt.Sprintf("%d", 20000+i)
		out[i] = model.ProductRecord{Code: code, Name: "n" + code, Image: "i", Link: "https://shop/" + code}
	}
	return out, feed.Report{}, nil
}

func (stubFeed) Settings(context.Context) ([]model.Setting, feed.Report, error) {
	return nil, feed.Report{}, nil
}

func TestRun(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	Convey("Given a running catalog service", t, func() {
		svc := service.New(service.WithFeed(stubFeed{}), service.WithLogger(logger.Nop()), service.WithWorkerCount(2))
		So(svc.Start(ctx), ShouldBeNil)
		srv := httptest.NewServer(api.NewServer(svc, api.WithLogger(logger.Nop())).Handler(ctx))
		defer srv.Close()
		defer func() { _ = svc.Stop(ctx) }()

		Convey("When clicks and replays are submitted", func() {
			stats, err := clickload.Run(ctx, &clickload.Config{
				BaseURL:  srv.URL,
				Clicks:   60,
				Replays:  20,
				Codes:    3,
				Workers:  4,
				Settle:   5 * time.Second,
				Interval: 20 * time.Millisecond,
			})

			Convey("Then only the unique clicks are counted", func() {
				So(err, ShouldBeNil)
				So(stats.Submitted, ShouldEqual, 80)
				So(stats.Accepted, ShouldEqual, 80)
				So(stats.Mismatched, ShouldBeEmpty)
				total := 0
				for _, n := range stats.Observed {
					total += n
				}
				So(total, ShouldEqual, 60)
			})
		})
	})

	Convey("Given nothing listening", t, func() {
		_, err := clickload.Run(ctx, &clickload.Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})

		Convey("Then the health check fails", func() {
			So(errors.Is(err, clickload.ErrUnhealthy), ShouldBeTrue)
		})
	})
}
