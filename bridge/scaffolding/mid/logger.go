package mid

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jrazmi/smarttasks/infrastructure/web"
	"github.com/jrazmi/smarttasks/sdk/logger"
	"github.com/jrazmi/smarttasks/sdk/telemetry"
)

// Logger writes information about the request to the logs.
func Logger(log *logger.Logger) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			now := time.Now()

			p := r.URL.Path
			if r.URL.RawQuery != "" {
				p = fmt.Sprintf("%s?%s", p, r.URL.RawQuery)
			}

			traceID := telemetry.GetTraceID(ctx)
			log.InfoContext(ctx, "request started", "method", r.Method, "path", p, "remoteaddr", r.RemoteAddr, "trace_id", traceID)

			resp := next(ctx, r)

			log.InfoContext(ctx, "request completed", "method", r.Method, "path", p, "remoteaddr", r.RemoteAddr,
				"status", web.StatusOf(resp), "trace_id", traceID, "since", time.Since(now).String())

			return resp
		}
	}
}
