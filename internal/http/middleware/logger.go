package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logger writes one structured line per request with request_id, method,
// path, status and latency in milliseconds. When a span is active the
// trace_id is included as well. A request-scoped logger is attached to the
// user context for zerolog.Ctx.
func Logger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		reqLog := log.With().Str("request_id", RequestIDFromCtx(c)).Logger()
		c.SetUserContext(reqLog.WithContext(c.UserContext()))

		if err := c.Next(); err != nil {
			handleError(c, err)
		}
		status := c.Response().StatusCode()

		var ev *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error()
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		default:
			ev = log.Info()
		}

		ev = ev.
			Str("request_id", RequestIDFromCtx(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Float64("latency", float64(time.Since(start).Microseconds())/1000)

		if sc := trace.SpanContextFromContext(c.UserContext()); sc.HasTraceID() {
			ev = ev.Str("trace_id", sc.TraceID().String())
		}
		if u := UserFromCtx(c); u != nil {
			ev = ev.Str("user_id", u.ID)
		}
		ev.Msg("request")

		return nil
	}
}

// handleError writes the response for a chain error through the app's error
// handler, so the status recorded afterwards is the one the client receives.
func handleError(c *fiber.Ctx, err error) {
	if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
		_ = c.SendStatus(fiber.StatusInternalServerError)
	}
}
