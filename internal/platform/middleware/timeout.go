package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/apperr"
)

// RequestTimeout puts a deadline on the request context. Backend calls made
// with that context fail once it passes, and the request is then answered
// with 504 unless the handler already wrote a response. The handler runs on
// the request goroutine, so nothing writes to the response after return.
// The websocket endpoint is excluded.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if timeout <= 0 || strings.HasSuffix(c.Request().URL.Path, "/ws") {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)
			if !errors.Is(ctx.Err(), context.DeadlineExceeded) || c.Response().Committed {
				return err
			}
			return echo.NewHTTPError(http.StatusGatewayTimeout, apperr.MsgUnavailable).SetInternal(ctx.Err())
		}
	}
}
