package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type stubResolver struct {
	sessions map[uuid.UUID]*Session
	err      error
}

func (r *stubResolver) Resolve(_ context.Context, id uuid.UUID) (*Session, error) {
	if r.err != nil {
		return nil, r.err
	}
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

func newSession(role Role) *Session {
	return &Session{
		ID:    uuid.New(),
		Token: "tok",
		User:  User{ID: 7, Username: "an", Role: role},
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"PATIENT", RolePatient, true},
		{"doctor", RoleDoctor, true},
		{"ROLE_ADMIN", RoleAdmin, true},
		{" admin ", RoleAdmin, true},
		{"nurse", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseRole(%q) err = %v, want ok=%v", tt.in, err, tt.ok)
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSessionFromContext_Empty(t *testing.T) {
	ctx := context.Background()
	if SessionFromContext(ctx) != nil {
		t.Error("expected nil session")
	}
	if UserIDFromContext(ctx) != 0 {
		t.Error("expected zero user id")
	}
	if RoleFromContext(ctx) != "" {
		t.Error("expected empty role")
	}
	if TokenFromContext(ctx) != "" {
		t.Error("expected empty token")
	}
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	s := &Session{ExpiresAt: now.Add(time.Minute)}
	if s.Expired(now) {
		t.Error("expected session to be live")
	}
	if !s.Expired(now.Add(time.Minute)) {
		t.Error("expected session to be expired at ExpiresAt")
	}
	if (&Session{}).Expired(now) {
		t.Error("expected zero expiry to never expire")
	}
}

func TestSessionMiddleware_AttachesSession(t *testing.T) {
	sess := newSession(RolePatient)
	mw := SessionMiddleware(&stubResolver{sessions: map[uuid.UUID]*Session{sess.ID: sess}})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: sess.ID.String()})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got *Session
	err := mw(func(c echo.Context) error {
		got = SessionFromContext(c.Request().Context())
		return nil
	})(c)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != sess {
		t.Errorf("expected session %v, got %v", sess.ID, got)
	}
}

func TestSessionMiddleware_HeaderFallback(t *testing.T) {
	sess := newSession(RoleDoctor)
	mw := SessionMiddleware(&stubResolver{sessions: map[uuid.UUID]*Session{sess.ID: sess}})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderName, sess.ID.String())
	c := e.NewContext(req, httptest.NewRecorder())

	var role Role
	_ = mw(func(c echo.Context) error {
		role = RoleFromContext(c.Request().Context())
		return nil
	})(c)
	if role != RoleDoctor {
		t.Errorf("expected DOCTOR, got %q", role)
	}
}

func TestSessionMiddleware_UnknownSessionPassesThrough(t *testing.T) {
	mw := SessionMiddleware(&stubResolver{sessions: map[uuid.UUID]*Session{}})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderName, uuid.NewString())
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		if SessionFromContext(c.Request().Context()) != nil {
			t.Error("expected no session")
		}
		return nil
	})(c)
	if err != nil || !called {
		t.Fatalf("expected pass-through, got err=%v called=%v", err, called)
	}
}

func TestSessionMiddleware_MalformedID(t *testing.T) {
	mw := SessionMiddleware(&stubResolver{err: errors.New("must not be called")})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-uuid"})
	c := e.NewContext(req, httptest.NewRecorder())

	if err := mw(func(echo.Context) error { return nil })(c); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestSessionMiddleware_StoreFailure(t *testing.T) {
	mw := SessionMiddleware(&stubResolver{err: errors.New("db down")})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderName, uuid.NewString())
	c := e.NewContext(req, httptest.NewRecorder())

	err := mw(func(echo.Context) error { return nil })(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", httpErr.Code)
	}
}

func TestRequireSession(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := RequireSession(func(echo.Context) error { return nil })(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestRequireRole_Allowed(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithSession(req.Context(), newSession(RoleAdmin)))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequireRole(RoleAdmin)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := h(c); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_AdminDoesNotInherit(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithSession(req.Context(), newSession(RoleAdmin)))
	c := e.NewContext(req, httptest.NewRecorder())

	err := RequireRole(RolePatient)(func(echo.Context) error { return nil })(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
}

func TestRequireRole_NoSession(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := RequireRole(RoleDoctor)(func(echo.Context) error { return nil })(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "an",
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	got, ok := TokenExpiry(signed)
	if !ok {
		t.Fatal("expected expiry to be found")
	}
	if !got.Equal(exp) {
		t.Errorf("expected %v, got %v", exp, got)
	}
}

func TestTokenExpiry_Opaque(t *testing.T) {
	if _, ok := TokenExpiry("opaque-token"); ok {
		t.Error("expected no expiry for opaque token")
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "an"})
	signed, _ := tok.SignedString([]byte("k"))
	if _, ok := TokenExpiry(signed); ok {
		t.Error("expected no expiry when exp is absent")
	}
}
