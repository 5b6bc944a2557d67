package mid

import (
	"context"
	"net/http"

	"github.com/jrazmi/smarttasks/bridge/scaffolding/metrics"
	"github.com/jrazmi/smarttasks/infrastructure/web"
)

// goroutineSampleEvery is how many requests pass between goroutine samples.
const goroutineSampleEvery = 100

// Metrics counts requests by status class and samples the goroutine count.
func Metrics() web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			ctx = metrics.Set(ctx)

			resp := next(ctx, r)

			if n := metrics.AddRequests(ctx); n%goroutineSampleEvery == 1 {
				metrics.AddGoroutines(ctx)
			}
			metrics.AddResponse(ctx, web.StatusOf(resp))
			if isError(resp) != nil {
				metrics.AddErrors(ctx)
			}

			return resp
		}
	}
}
