// Package mid provides app level middleware support.
package mid

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path"

	"github.com/jrazmi/smarttasks/bridge/scaffolding/errs"
	"github.com/jrazmi/smarttasks/infrastructure/web"
	"github.com/jrazmi/smarttasks/sdk/logger"
	"github.com/jrazmi/smarttasks/sdk/telemetry"
)

// isError tests if the Encoder has an error inside of it.
func isError(e web.Encoder) error {
	if err, ok := e.(error); ok {
		return err
	}
	return nil
}

// Errors turns errors coming out of the call chain into client responses.
// Anything that is not an *errs.Error becomes a generic 500, and a handler
// that ran past its deadline becomes a 504. Client errors are logged at warn
// and server errors at error level.
func Errors(log *logger.Logger) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			resp := next(ctx, r)
			err := isError(resp)
			if err == nil {
				return resp
			}

			appErr := errs.GetError(err)
			switch {
			case appErr != nil:
			case errors.Is(err, context.DeadlineExceeded):
				appErr = errs.Newf(errs.DeadlineExceeded, "request timed out")
			default:
				appErr = errs.Newf(errs.InternalOnlyLog, "%s", err)
			}

			level := slog.LevelWarn
			if appErr.HTTPStatus() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.Log(ctx, level, "handled error during request",
				"err", err,
				"code", appErr.Code,
				"path", r.URL.Path,
				"trace_id", telemetry.GetTraceID(ctx),
				"source_err_file", path.Base(appErr.FileName),
				"source_err_func", path.Base(appErr.FuncName))

			if appErr.Code == errs.InternalOnlyLog {
				appErr = errs.Newf(errs.Internal, "Internal Server Error")
			}
			return appErr
		}
	}
}
