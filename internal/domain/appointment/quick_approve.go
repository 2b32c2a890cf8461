package appointment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/backend"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/apperr"
)

// ErrConfirmationRequired is returned when a quick approval arrives without
// the admin's explicit confirmation.
var ErrConfirmationRequired = &apperr.ValidationError{Field: "confirmed",
	Message: "Duyệt nhanh không thể hoàn tác, vui lòng xác nhận trước khi gửi"}

// QuickApprover approves appointments without a chosen doctor or slot,
// leaving the choice to the backend. It has no dialog: each call goes
// Idle -> Submitting -> Success|Failed.
type QuickApprover struct {
	repo    AssignmentRepository
	locks   *inflight
	refresh RefreshFunc
	logger  zerolog.Logger
}

func newQuickApprover(repo AssignmentRepository, locks *inflight, refresh RefreshFunc, logger zerolog.Logger) *QuickApprover {
	return &QuickApprover{repo: repo, locks: locks, refresh: refresh, logger: logger}
}

// State reports Submitting while an approval for id is in flight.
func (q *QuickApprover) State(id int64) State {
	if q.locks.held(id) {
		return StateSubmitting
	}
	return StateIdle
}

// Approve submits an empty assignment for appt. confirmed must be true.
func (q *QuickApprover) Approve(ctx context.Context, token string, appt Record, confirmed bool) (*Record, error) {
	if !confirmed {
		return nil, ErrConfirmationRequired
	}
	if !appt.Status.Assignable() {
		return nil, ErrNotAssignable
	}
	if !q.locks.acquire(appt.ID) {
		return nil, ErrBusy
	}
	updated, err := q.repo.ApproveAppointment(ctx, token, appt.ID, backend.AssignRequest{})
	q.locks.release(appt.ID)
	if err != nil {
		q.logger.Warn().Err(err).Int64("appointment_id", appt.ID).Msg("quick approve failed")
		return nil, fmt.Errorf("quick approve %d: %w", appt.ID, err)
	}

	rec := appt
	if updated != nil {
		rec = newRecord(*updated)
	}
	q.logger.Info().Int64("appointment_id", appt.ID).Msg("appointment quick-approved")
	if q.refresh != nil {
		q.refresh(ctx, rec)
	}
	return &rec, nil
}
