package appointment

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/auth"
)

// DialogRegistry keeps one assignment Flow per admin session and shares the
// in-flight guard between those flows and quick approval.
type DialogRegistry struct {
	repo    AssignmentRepository
	locks   *inflight
	refresh RefreshFunc
	logger  zerolog.Logger
	quick   *QuickApprover

	mu    sync.Mutex
	flows map[uuid.UUID]*Flow
}

func NewDialogRegistry(repo AssignmentRepository, refresh RefreshFunc, logger zerolog.Logger) *DialogRegistry {
	locks := newInflight()
	logger = logger.With().Str("component", "assignment").Logger()
	return &DialogRegistry{
		repo:    repo,
		locks:   locks,
		refresh: refresh,
		logger:  logger,
		quick:   newQuickApprover(repo, locks, refresh, logger),
		flows:   make(map[uuid.UUID]*Flow),
	}
}

// Flow returns the session's dialog, creating an idle one on first use.
func (r *DialogRegistry) Flow(sess *auth.Session) *Flow {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flows[sess.ID]
	if !ok {
		f = newFlow(r.repo, sess.Token, r.locks, r.refresh,
			r.logger.With().Str("session_id", sess.ID.String()).Logger())
		r.flows[sess.ID] = f
	}
	return f
}

// Close drops the session's dialog, typically on logout.
func (r *DialogRegistry) Close(sessionID uuid.UUID) {
	r.mu.Lock()
	delete(r.flows, sessionID)
	r.mu.Unlock()
}

func (r *DialogRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}

func (r *DialogRegistry) QuickApprove(ctx context.Context, token string, appt Record, confirmed bool) (*Record, error) {
	return r.quick.Approve(ctx, token, appt, confirmed)
}

func (r *DialogRegistry) QuickApprover() *QuickApprover {
	return r.quick
}
