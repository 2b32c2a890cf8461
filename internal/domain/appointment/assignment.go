package appointment

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/backend"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/apperr"
)

// State is the coarse state of an assignment dialog.
type State int

const (
	StateIdle State = iota
	StateDoctorsLoading
	StateDoctorsReady
	StateSlotsLoading
	StateSlotsReady
	StateSubmitting
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDoctorsLoading:
		return "doctors_loading"
	case StateDoctorsReady:
		return "doctors_ready"
	case StateSlotsLoading:
		return "slots_loading"
	case StateSlotsReady:
		return "slots_ready"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	for st := StateIdle; st <= StateFailed; st++ {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown assignment state %q", b)
}

var (
	ErrBusy = &apperr.BusinessError{Status: http.StatusConflict,
		Message: "Yêu cầu trước đó đang được xử lý, vui lòng đợi"}
	ErrInvalidTransition = &apperr.BusinessError{Status: http.StatusConflict,
		Message: "Thao tác không hợp lệ ở bước hiện tại"}
	ErrDialogOpen = &apperr.BusinessError{Status: http.StatusConflict,
		Message: "Đang duyệt một lịch hẹn khác, vui lòng đóng hộp thoại trước"}
	ErrNotAssignable = &apperr.BusinessError{Status: http.StatusConflict,
		Message: "Lịch hẹn không còn ở trạng thái chờ duyệt"}
	ErrIncompleteSelection = &apperr.ValidationError{Field: "timeSlot",
		Message: "Vui lòng chọn bác sĩ và khung giờ"}
	ErrUnknownDoctor = &apperr.ValidationError{Field: "doctorId",
		Message: "Bác sĩ không thuộc khoa của lịch hẹn"}
	ErrUnknownSlot = &apperr.ValidationError{Field: "timeSlot",
		Message: "Khung giờ không có trong danh sách còn trống"}
)

// SlotAssignment is the draft selection. DoctorID nil and TimeSlot empty
// mean not chosen.
type SlotAssignment struct {
	DoctorID        *int64 `json:"doctorId"`
	AppointmentDate string `json:"appointmentDate"`
	TimeSlot        string `json:"timeSlot"`
}

// RefreshFunc is called after an approval succeeds so list views re-fetch.
type RefreshFunc func(ctx context.Context, approved Record)

// Flow is one admin's assignment dialog. Methods are safe for concurrent
// use; while a backend request is in flight every other transition fails
// with ErrBusy, so at most one request per dialog is outstanding.
type Flow struct {
	repo    AssignmentRepository
	token   string
	locks   *inflight
	refresh RefreshFunc
	logger  zerolog.Logger

	mu      sync.Mutex
	state   State
	busy    bool
	appt    *Record
	doctors []backend.Doctor
	slots   []backend.Slot
	draft   SlotAssignment
	lastErr error
}

func newFlow(repo AssignmentRepository, token string, locks *inflight, refresh RefreshFunc, logger zerolog.Logger) *Flow {
	return &Flow{repo: repo, token: token, locks: locks, refresh: refresh, logger: logger}
}

// View is a snapshot of the dialog for rendering.
type View struct {
	State       State            `json:"state"`
	Appointment *Record          `json:"appointment,omitempty"`
	Doctors     []backend.Doctor `json:"doctors"`
	Slots       []backend.Slot   `json:"slots"`
	NoSlots     bool             `json:"noSlots"`
	Draft       SlotAssignment   `json:"draft"`
	CanConfirm  bool             `json:"canConfirm"`
	Error       string           `json:"error,omitempty"`
}

func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := View{
		State:      f.state,
		Doctors:    append([]backend.Doctor(nil), f.doctors...),
		Slots:      append([]backend.Slot(nil), f.slots...),
		NoSlots:    f.state == StateSlotsReady && len(f.slots) == 0,
		Draft:      f.draft,
		CanConfirm: f.canConfirmLocked(),
	}
	if f.appt != nil {
		a := *f.appt
		v.Appointment = &a
	}
	if f.lastErr != nil {
		_, v.Error = apperr.UserMessage(f.lastErr)
	}
	return v
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Draft returns the current selection.
func (f *Flow) Draft() SlotAssignment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// NoSlots reports the distinct "doctor has no free slots" display state.
func (f *Flow) NoSlots() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == StateSlotsReady && len(f.slots) == 0
}

func (f *Flow) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

func (f *Flow) setState(to State) {
	f.logger.Debug().
		Stringer("from", f.state).
		Stringer("to", to).
		Msg("assignment transition")
	f.state = to
}

// Open starts the dialog for appt and loads the doctors of its department.
// On failure the dialog falls back to Idle with the appointment kept, and
// calling Open again retries.
func (f *Flow) Open(ctx context.Context, appt Record) error {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return ErrBusy
	}
	if f.open() && f.appt.ID != appt.ID {
		f.mu.Unlock()
		return ErrDialogOpen
	}
	if !appt.Status.Assignable() {
		f.mu.Unlock()
		return ErrNotAssignable
	}
	f.appt = &appt
	f.doctors, f.slots = nil, nil
	f.draft = SlotAssignment{AppointmentDate: appt.AppointmentDate}
	f.lastErr = nil
	f.busy = true
	f.setState(StateDoctorsLoading)
	f.mu.Unlock()

	doctors, err := f.repo.DoctorsByDepartment(ctx, f.token, appt.Department)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	if err != nil {
		f.lastErr = err
		f.setState(StateIdle)
		return fmt.Errorf("load doctors: %w", err)
	}
	f.doctors = doctors
	f.setState(StateDoctorsReady)
	return nil
}

// open reports whether a dialog is showing. Idle with an appointment kept
// after a failed load does not count.
func (f *Flow) open() bool {
	switch f.state {
	case StateIdle, StateSuccess:
		return false
	}
	return f.appt != nil
}

// SelectDoctor picks a doctor and loads their open slots on the
// appointment's date. Any previously chosen slot and slot list are cleared
// first, so slots of another doctor are never shown.
func (f *Flow) SelectDoctor(ctx context.Context, doctorID int64) error {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return ErrBusy
	}
	if f.state != StateDoctorsReady && f.state != StateSlotsReady {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	if !f.hasDoctor(doctorID) {
		f.mu.Unlock()
		return ErrUnknownDoctor
	}
	id := doctorID
	f.draft.DoctorID = &id
	f.draft.TimeSlot = ""
	f.slots = nil
	f.lastErr = nil
	f.busy = true
	date := f.draft.AppointmentDate
	f.setState(StateSlotsLoading)
	f.mu.Unlock()

	slots, err := f.repo.AvailableSlots(ctx, f.token, doctorID, date)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	if err != nil {
		f.lastErr = err
		f.setState(StateDoctorsReady)
		return fmt.Errorf("load slots: %w", err)
	}
	f.slots = slots
	f.setState(StateSlotsReady)
	return nil
}

func (f *Flow) hasDoctor(id int64) bool {
	for _, d := range f.doctors {
		if d.ID == id {
			return true
		}
	}
	return false
}

// SelectSlot records the time slot. The coarse state does not change.
func (f *Flow) SelectSlot(timeSlot string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return ErrBusy
	}
	if f.state != StateSlotsReady {
		return ErrInvalidTransition
	}
	for _, s := range f.slots {
		if s.TimeSlot == timeSlot {
			f.draft.TimeSlot = timeSlot
			return nil
		}
	}
	return ErrUnknownSlot
}

// CanConfirm is true only when both a doctor and a slot are chosen.
func (f *Flow) CanConfirm() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canConfirmLocked()
}

func (f *Flow) canConfirmLocked() bool {
	return !f.busy && f.state == StateSlotsReady && f.draft.DoctorID != nil && f.draft.TimeSlot != ""
}

// Confirm submits the draft. On success the dialog closes, the draft is
// cleared and the refresh callback runs. On failure the error is reported
// and the dialog returns to SlotsReady with the draft intact.
func (f *Flow) Confirm(ctx context.Context) (*Record, error) {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return nil, ErrBusy
	}
	if !f.canConfirmLocked() {
		st := f.state
		f.mu.Unlock()
		if st == StateDoctorsReady || st == StateSlotsReady {
			return nil, ErrIncompleteSelection
		}
		return nil, ErrInvalidTransition
	}
	apptID := f.appt.ID
	if !f.locks.acquire(apptID) {
		f.mu.Unlock()
		return nil, ErrBusy
	}
	draft := f.draft
	f.busy = true
	f.lastErr = nil
	f.setState(StateSubmitting)
	f.mu.Unlock()

	updated, err := f.repo.ApproveAppointment(ctx, f.token, apptID, backend.AssignRequest{
		DoctorID:        draft.DoctorID,
		AppointmentDate: &draft.AppointmentDate,
		TimeSlot:        &draft.TimeSlot,
	})
	f.locks.release(apptID)

	f.mu.Lock()
	f.busy = false
	if err != nil {
		f.lastErr = err
		f.setState(StateFailed)
		f.setState(StateSlotsReady)
		f.mu.Unlock()
		f.logger.Warn().Err(err).Int64("appointment_id", apptID).Msg("assignment failed")
		return nil, fmt.Errorf("approve appointment %d: %w", apptID, err)
	}
	rec := *f.appt
	if updated != nil {
		rec = newRecord(*updated)
	}
	f.reset()
	f.setState(StateSuccess)
	f.mu.Unlock()

	f.logger.Info().Int64("appointment_id", apptID).Int64("doctor_id", *draft.DoctorID).
		Str("time_slot", draft.TimeSlot).Msg("appointment assigned")
	if f.refresh != nil {
		f.refresh(ctx, rec)
	}
	return &rec, nil
}

// Cancel closes the dialog and discards the draft.
func (f *Flow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return ErrBusy
	}
	f.reset()
	f.setState(StateIdle)
	return nil
}

func (f *Flow) reset() {
	f.appt = nil
	f.doctors, f.slots = nil, nil
	f.draft = SlotAssignment{}
	f.lastErr = nil
}

// inflight tracks appointments with an approval request outstanding across
// every dialog and quick approval.
type inflight struct {
	mu  sync.Mutex
	ids map[int64]struct{}
}

func newInflight() *inflight {
	return &inflight{ids: make(map[int64]struct{})}
}

func (l *inflight) acquire(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.ids[id]; ok {
		return false
	}
	l.ids[id] = struct{}{}
	return true
}

func (l *inflight) release(id int64) {
	l.mu.Lock()
	delete(l.ids, id)
	l.mu.Unlock()
}

func (l *inflight) held(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.ids[id]
	return ok
}
