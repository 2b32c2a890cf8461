package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/auth"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/db"
)

type sessionStorePG struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a SessionStore backed by the portal_session table.
func NewPGStore(pool *pgxpool.Pool) SessionStore {
	return &sessionStorePG{pool: pool}
}

func (r *sessionStorePG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const sessionCols = `id, token, user_id, username, email, full_name, role, created_at, expires_at`

func (r *sessionStorePG) Save(ctx context.Context, s *auth.Session) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO portal_session (`+sessionCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			token = EXCLUDED.token,
			user_id = EXCLUDED.user_id,
			username = EXCLUDED.username,
			email = EXCLUDED.email,
			full_name = EXCLUDED.full_name,
			role = EXCLUDED.role,
			expires_at = EXCLUDED.expires_at`,
		s.ID, s.Token, s.User.ID, s.User.Username, s.User.Email, s.User.FullName,
		string(s.User.Role), s.CreatedAt, s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *sessionStorePG) Get(ctx context.Context, id uuid.UUID) (*auth.Session, error) {
	var s auth.Session
	var role string
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+sessionCols+` FROM portal_session WHERE id = $1`, id).Scan(
		&s.ID, &s.Token, &s.User.ID, &s.User.Username, &s.User.Email, &s.User.FullName,
		&role, &s.CreatedAt, &s.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, auth.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	s.User.Role, err = auth.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

func (r *sessionStorePG) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM portal_session WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *sessionStorePG) DeleteExpired(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx, `DELETE FROM portal_session WHERE expires_at <= NOW() RETURNING id`)
	if err != nil {
		return nil, fmt.Errorf("delete expired sessions: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expired session: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("delete expired sessions: %w", err)
	}
	return ids, nil
}
