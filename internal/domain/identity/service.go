package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/backend"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/apperr"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/auth"
)

var (
	// ErrSessionExpired is returned for a stored session past its expiry.
	// It matches auth.ErrNoSession so middleware treats it as logged out.
	ErrSessionExpired = fmt.Errorf("session expired: %w", auth.ErrNoSession)

	ErrInvalidCredentials = &apperr.BusinessError{
		Status:  http.StatusUnauthorized,
		Message: "Tên đăng nhập hoặc mật khẩu không đúng.",
	}
	ErrUnknownRole = &apperr.BusinessError{
		Status:  http.StatusForbidden,
		Message: "Tài khoản chưa được cấp vai trò hợp lệ.",
	}
)

type Service struct {
	authn  Authenticator
	store  SessionStore
	events EventPublisher
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// NewService wires login to the backend and the session store. events may be
// nil, in which case session changes are not broadcast.
func NewService(authn Authenticator, store SessionStore, events EventPublisher, ttl time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		authn:  authn,
		store:  store,
		events: events,
		ttl:    ttl,
		now:    time.Now,
		logger: logger.With().Str("component", "identity").Logger(),
	}
}

func (s *Service) Login(ctx context.Context, username, password string) (*auth.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.Validation("username", "Vui lòng nhập tên đăng nhập.")
	}
	if password == "" {
		return nil, apperr.Validation("password", "Vui lòng nhập mật khẩu.")
	}
	res, err := s.authn.Login(ctx, username, password)
	if err != nil {
		return nil, loginError(err)
	}
	return s.start(ctx, res)
}

func (s *Service) SocialLogin(ctx context.Context, provider, idToken string) (*auth.Session, error) {
	p, ok := ParseProvider(strings.ToLower(strings.TrimSpace(provider)))
	if !ok {
		return nil, apperr.Validation("provider", "Nhà cung cấp đăng nhập không được hỗ trợ.")
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, apperr.Validation("token", "Thiếu mã xác thực từ nhà cung cấp.")
	}
	res, err := s.authn.SocialLogin(ctx, string(p), idToken)
	if err != nil {
		return nil, loginError(err)
	}
	return s.start(ctx, res)
}

func loginError(err error) error {
	if errors.Is(err, apperr.ErrUnauthorized) {
		return ErrInvalidCredentials
	}
	return err
}

// start turns a backend login result into a stored session. The session
// expires with the backend token when its exp claim is readable.
func (s *Service) start(ctx context.Context, res *backend.LoginResult) (*auth.Session, error) {
	role, err := auth.ParseRole(res.User.Role)
	if err != nil {
		s.logger.Warn().Str("role", res.User.Role).Int64("user_id", res.User.ID).Msg("login with unknown role")
		return nil, ErrUnknownRole
	}

	now := s.now()
	expires := now.Add(s.ttl)
	if exp, ok := auth.TokenExpiry(res.Token); ok && exp.Before(expires) {
		expires = exp
	}
	if !expires.After(now) {
		return nil, ErrInvalidCredentials
	}

	sess := &auth.Session{
		ID:    uuid.New(),
		Token: res.Token,
		User: auth.User{
			ID:       res.User.ID,
			Username: res.User.Username,
			Email:    res.User.Email,
			FullName: res.User.FullName,
			Role:     role,
		},
		CreatedAt: now,
		ExpiresAt: expires,
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info().
		Str("session_id", sess.ID.String()).
		Int64("user_id", sess.User.ID).
		Str("role", role.String()).
		Msg("login")
	s.publish(ctx, SessionEvent{Type: EventLogin, SessionID: sess.ID.String(), User: &sess.User})
	return sess, nil
}

// Logout ends the session. Logging out an unknown session is not an error.
func (s *Service) Logout(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info().Str("session_id", id.String()).Msg("logout")
	s.publish(ctx, SessionEvent{Type: EventLogout, SessionID: id.String()})
	return nil
}

// Resolve returns the live session for id. An expired session is removed and
// announced as a logout.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID) (*auth.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		if err := s.store.Delete(ctx, id); err != nil {
			s.logger.Warn().Err(err).Str("session_id", id.String()).Msg("drop expired session")
		}
		s.publish(ctx, SessionEvent{Type: EventLogout, SessionID: id.String()})
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Current is Resolve for the session attached to ctx.
func (s *Service) Current(ctx context.Context) (*auth.Session, error) {
	sess := auth.SessionFromContext(ctx)
	if sess == nil {
		return nil, auth.ErrNoSession
	}
	return s.Resolve(ctx, sess.ID)
}

// PurgeExpired drops expired sessions from the store and announces a logout
// for each one so open tabs and dialogs are torn down.
func (s *Service) PurgeExpired(ctx context.Context) error {
	ids, err := s.store.DeleteExpired(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		s.publish(ctx, SessionEvent{Type: EventLogout, SessionID: id.String()})
	}
	if len(ids) > 0 {
		s.logger.Info().Int("count", len(ids)).Msg("purged expired sessions")
	}
	return nil
}

func (s *Service) publish(ctx context.Context, ev SessionEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Str("type", string(ev.Type)).Str("session_id", ev.SessionID).Msg("publish session event")
	}
}
