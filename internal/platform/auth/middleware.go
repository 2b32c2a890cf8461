package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/apperr"
)

const (
	// CookieName carries the portal session id in browsers.
	CookieName = "clinic_session"
	// HeaderName is accepted for non-browser clients and the websocket handshake.
	HeaderName = "X-Session-ID"
)

// ErrNoSession is returned by a Resolver when the id is unknown or expired.
var ErrNoSession = errors.New("session not found")

// Resolver looks up a live session by id.
type Resolver interface {
	Resolve(ctx context.Context, id uuid.UUID) (*Session, error)
}

// SessionIDFromRequest reads the session id from the cookie, falling back to
// the header. ok is false when neither holds a valid UUID.
func SessionIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	raw := ""
	if ck, err := r.Cookie(CookieName); err == nil {
		raw = ck.Value
	}
	if raw == "" {
		raw = strings.TrimSpace(r.Header.Get(HeaderName))
	}
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// SessionMiddleware attaches the caller's session to the request context.
// Requests without a session pass through untouched; RequireSession and
// RequireRole decide what is protected.
func SessionMiddleware(resolver Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := SessionIDFromRequest(c.Request())
			if !ok {
				return next(c)
			}
			sess, err := resolver.Resolve(c.Request().Context(), id)
			if err != nil {
				if errors.Is(err, ErrNoSession) {
					return next(c)
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "session lookup failed").SetInternal(err)
			}
			ctx := WithSession(c.Request().Context(), sess)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequireSession rejects requests that carry no live session.
func RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if SessionFromContext(c.Request().Context()) == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, apperr.MsgUnauthorized)
		}
		return next(c)
	}
}
