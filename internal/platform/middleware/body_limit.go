package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// DefaultBodyLimit fits every JSON form the portal accepts.
const DefaultBodyLimit = "1M"

// BodyLimit caps request bodies at limit, a size such as "64K" or "1M".
// Both an oversized Content-Length and a body that overflows while the
// handler reads it (including through c.Bind) end as 413 with a user
// message.
func BodyLimit(limit string) echo.MiddlewareFunc {
	limit = strings.TrimSpace(limit)
	if limit == "" {
		limit = DefaultBodyLimit
	}
	capped := echomw.BodyLimitWithConfig(echomw.BodyLimitConfig{Limit: limit})
	tooLarge := echo.NewHTTPError(http.StatusRequestEntityTooLarge,
		fmt.Sprintf("Dữ liệu gửi lên quá lớn (tối đa %s).", strings.ToUpper(limit)))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		h := capped(next)
		return func(c echo.Context) error {
			err := h(c)
			if isTooLarge(err) {
				return tooLarge
			}
			return err
		}
	}
}

// isTooLarge sees through the binder, which wraps read errors in a 400.
func isTooLarge(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
		return true
	}
	var he *echo.HTTPError
	return errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge
}
