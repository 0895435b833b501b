package middleware

import (
	"market-tips/pkg/trace"

	"github.com/labstack/echo/v4"
)

// NewTraceMiddleware propagates the inbound X-Trace-ID header, or assigns a
// fresh trace ID, into the request context and echoes it on the response.
func NewTraceMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			traceID := c.Request().Header.Get(trace.HeaderName)
			if traceID == "" {
				traceID = trace.NewTraceID()
			}

			ctx := trace.WithContext(c.Request().Context(), traceID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set(trace.HeaderName, traceID)

			return next(c)
		}
	}
}
