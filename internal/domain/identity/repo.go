package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/backend"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/auth"
)

// SessionStore persists portal sessions. Get returns auth.ErrNoSession for
// an unknown id.
type SessionStore interface {
	Save(ctx context.Context, s *auth.Session) error
	Get(ctx context.Context, id uuid.UUID) (*auth.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteExpired removes sessions that expired before now and returns
	// their ids.
	DeleteExpired(ctx context.Context) ([]uuid.UUID, error)
}

// Authenticator exchanges credentials for a backend token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*backend.LoginResult, error)
	SocialLogin(ctx context.Context, provider, idToken string) (*backend.LoginResult, error)
}

// EventPublisher fans session events out to every listener of that session.
type EventPublisher interface {
	Publish(ctx context.Context, ev SessionEvent) error
}
