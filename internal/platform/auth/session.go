package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const sessionKey contextKey = "session"

// User is the profile blob the backend returns at login.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

// Session binds the backend bearer token to the logged-in user. A session is
// the single source of truth for identity within one browser.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Token     string    `json:"-"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func SessionFromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}

// UserIDFromContext returns 0 when no session is attached.
func UserIDFromContext(ctx context.Context) int64 {
	if s := SessionFromContext(ctx); s != nil {
		return s.User.ID
	}
	return 0
}

func RoleFromContext(ctx context.Context) Role {
	if s := SessionFromContext(ctx); s != nil {
		return s.User.Role
	}
	return ""
}

func TokenFromContext(ctx context.Context) string {
	if s := SessionFromContext(ctx); s != nil {
		return s.Token
	}
	return ""
}
