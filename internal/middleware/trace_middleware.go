package middleware

import (
	"pickMyBook/business/policy"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const TraceHeader = "X-Trace-Id"

// Trace attaches a trace id to the request context so writes to the policy
// store can be correlated with the request that caused them.
func Trace() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tid := c.Request().Header.Get(TraceHeader)
			if tid == "" {
				tid = uuid.NewString()
			}

			ctx := policy.WithTraceID(c.Request().Context(), tid)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set(TraceHeader, tid)

			return next(c)
		}
	}
}
