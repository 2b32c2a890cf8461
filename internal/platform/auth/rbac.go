package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/apperr"
)

// RequireRole returns middleware that checks the session user holds one of
// the given roles. Roles are disjoint: an admin does not inherit patient or
// doctor views.
func RequireRole(roles ...Role) echo.MiddlewareFunc {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := SessionFromContext(c.Request().Context())
			if sess == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, apperr.MsgUnauthorized)
			}
			for _, r := range roles {
				if sess.User.Role == r {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, apperr.MsgForbidden).
				SetInternal(fmt.Errorf("required role: %s", strings.Join(names, " or ")))
		}
	}
}
