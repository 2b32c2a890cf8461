package appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/backend"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/apperr"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/auth"
)

const cardiology = "Tim mạch"

func seededRepo() *mockRepo {
	repo := newMockRepo()
	repo.appointments[1] = backend.Appointment{
		ID: 1, PatientID: 5, FullName: "Nguyễn Văn An", Phone: "0901234567",
		Department: cardiology, AppointmentDate: "2024-05-10",
		Status: "PENDING", PaymentStatus: "UNPAID",
	}
	repo.appointments[2] = backend.Appointment{
		ID: 2, PatientID: 6, FullName: "Trần Thị Bình", Phone: "0912345678",
		Department: cardiology, AppointmentDate: "2024-05-11",
		Status: "APPROVED", PaymentStatus: "PAID", Fee: 150000, DoctorID: i64(10),
	}
	repo.doctors[cardiology] = []backend.Doctor{
		{ID: 10, FullName: "BS. Lê Minh", Department: cardiology},
		{ID: 11, FullName: "BS. Phạm Hòa", Department: cardiology},
		{ID: 12, FullName: "BS. Võ Tâm", Department: cardiology},
	}
	repo.slots[10] = []backend.Slot{
		{ID: 1, DoctorID: 10, Date: "2024-05-10", TimeSlot: "08:00-08:30", MaxPatients: 5, Available: true},
		{ID: 2, DoctorID: 10, Date: "2024-05-10", TimeSlot: "08:30-09:00", MaxPatients: 5, Available: true},
	}
	repo.slots[11] = []backend.Slot{
		{ID: 3, DoctorID: 11, Date: "2024-05-10", TimeSlot: "14:00-14:30", MaxPatients: 5, Available: true},
	}
	return repo
}

func pendingRecord(repo *mockRepo) Record {
	return newRecord(repo.appointments[1])
}

func newTestRegistry(repo *mockRepo, refresh RefreshFunc) *DialogRegistry {
	return NewDialogRegistry(repo, refresh, zerolog.Nop())
}

func adminSession() *auth.Session {
	return &auth.Session{ID: uuid.New(), Token: "tok", User: auth.User{ID: 1, Role: auth.RoleAdmin}}
}

func openFlow(t *testing.T, repo *mockRepo, refresh RefreshFunc) *Flow {
	t.Helper()
	f := newTestRegistry(repo, refresh).Flow(adminSession())
	if err := f.Open(context.Background(), pendingRecord(repo)); err != nil {
		t.Fatalf("open: %v", err)
	}
	return f
}

func TestFlow_OpenLoadsDepartmentDoctors(t *testing.T) {
	repo := seededRepo()
	f := openFlow(t, repo, nil)

	if f.State() != StateDoctorsReady {
		t.Fatalf("expected doctors_ready, got %s", f.State())
	}
	v := f.View()
	if len(v.Doctors) != 3 {
		t.Errorf("expected 3 doctors, got %d", len(v.Doctors))
	}
	if v.Draft.AppointmentDate != "2024-05-10" {
		t.Errorf("expected draft date from appointment, got %q", v.Draft.AppointmentDate)
	}
	if v.CanConfirm {
		t.Error("expected confirm unavailable before selection")
	}
}

func TestFlow_OpenFailureAllowsRetry(t *testing.T) {
	repo := seededRepo()
	repo.doctorsErr = apperr.ErrUnavailable
	f := newTestRegistry(repo, nil).Flow(adminSession())

	err := f.Open(context.Background(), pendingRecord(repo))
	if !errors.Is(err, apperr.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if f.State() != StateIdle {
		t.Errorf("expected idle after failed load, got %s", f.State())
	}
	if f.View().Error == "" {
		t.Error("expected error surfaced in view")
	}

	repo.doctorsErr = nil
	if err := f.Open(context.Background(), pendingRecord(repo)); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if f.State() != StateDoctorsReady {
		t.Errorf("expected doctors_ready after retry, got %s", f.State())
	}
}

func TestFlow_OpenRejectsSettledAppointment(t *testing.T) {
	repo := seededRepo()
	f := newTestRegistry(repo, nil).Flow(adminSession())

	err := f.Open(context.Background(), newRecord(repo.appointments[2]))
	if !errors.Is(err, ErrNotAssignable) {
		t.Errorf("expected ErrNotAssignable, got %v", err)
	}
}

func TestFlow_OpenSecondAppointmentWhileOpen(t *testing.T) {
	repo := seededRepo()
	repo.appointments[3] = backend.Appointment{ID: 3, Department: cardiology, Status: "NEEDS_MANUAL_REVIEW"}
	f := openFlow(t, repo, nil)

	err := f.Open(context.Background(), newRecord(repo.appointments[3]))
	if !errors.Is(err, ErrDialogOpen) {
		t.Errorf("expected ErrDialogOpen, got %v", err)
	}
}

func TestFlow_SelectDoctorFetchesSlotsForAppointmentDate(t *testing.T) {
	repo := seededRepo()
	f := openFlow(t, repo, nil)

	if err := f.SelectDoctor(context.Background(), 10); err != nil {
		t.Fatalf("select doctor: %v", err)
	}
	if f.State() != StateSlotsReady {
		t.Fatalf("expected slots_ready, got %s", f.State())
	}
	if len(repo.slotQueries) != 1 || repo.slotQueries[0] != (slotQuery{10, "2024-05-10"}) {
		t.Errorf("unexpected slot queries %+v", repo.slotQueries)
	}
	if len(f.View().Slots) != 2 {
		t.Errorf("expected 2 slots, got %d", len(f.View().Slots))
	}
}

func TestFlow_NewDoctorClearsSlot(t *testing.T) {
	repo := seededRepo()
	f := openFlow(t, repo, nil)
	ctx := context.Background()

	if err := f.SelectDoctor(ctx, 10); err != nil {
		t.Fatalf("select doctor: %v", err)
	}
	if err := f.SelectSlot("08:00-08:30"); err != nil {
		t.Fatalf("select slot: %v", err)
	}
	if !f.CanConfirm() {
		t.Fatal("expected confirm available with doctor and slot")
	}

	if err := f.SelectDoctor(ctx, 11); err != nil {
		t.Fatalf("select second doctor: %v", err)
	}
	d := f.Draft()
	if d.TimeSlot != "" {
		t.Errorf("expected time slot cleared, got %q", d.TimeSlot)
	}
	if d.DoctorID == nil || *d.DoctorID != 11 {
		t.Errorf("expected doctor 11, got %v", d.DoctorID)
	}
	slots := f.View().Slots
	if len(slots) != 1 || slots[0].DoctorID != 11 {
		t.Errorf("expected only doctor 11 slots, got %+v", slots)
	}
	if len(repo.slotQueries) != 2 {
		t.Errorf("expected slots re-fetched, got %d queries", len(repo.slotQueries))
	}
	if f.CanConfirm() {
		t.Error("expected confirm unavailable after doctor change")
	}
	if err := f.SelectSlot("08:00-08:30"); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("expected stale slot of previous doctor rejected, got %v", err)
	}
}

func TestFlow_NoSlotsIsNotAnError(t *testing.T) {
	repo := seededRepo()
	f := openFlow(t, repo, nil)

	if err := f.SelectDoctor(context.Background(), 12); err != nil {
		t.Fatalf("expected no error for empty slot list, got %v", err)
	}
	if f.State() != StateSlotsReady {
		t.Errorf("expected slots_ready, got %s", f.State())
	}
	if !f.NoSlots() || !f.View().NoSlots {
		t.Error("expected no-slots display state")
	}
}

func TestFlow_SelectDoctorFailureReturnsToDoctorsReady(t *testing.T) {
	repo := seededRepo()
	repo.slotsErr = apperr.ErrUnavailable
	f := openFlow(t, repo, nil)

	if err := f.SelectDoctor(context.Background(), 10); err == nil {
		t.Fatal("expected error")
	}
	if f.State() != StateDoctorsReady {
		t.Errorf("expected doctors_ready, got %s", f.State())
	}
}

func TestFlow_SelectUnknownDoctor(t *testing.T) {
	repo := seededRepo()
	f := openFlow(t, repo, nil)

	if err := f.SelectDoctor(context.Background(), 99); !errors.Is(err, ErrUnknownDoctor) {
		t.Errorf("expected ErrUnknownDoctor, got %v", err)
	}
	if len(repo.slotQueries) != 0 {
		t.Error("expected no slot request for unknown doctor")
	}
}

func TestFlow_ConfirmRequiresFullSelection(t *testing.T) {
	repo := seededRepo()
	f := openFlow(t, repo, nil)
	ctx := context.Background()

	if _, err := f.Confirm(ctx); !errors.Is(err, ErrIncompleteSelection) {
		t.Errorf("expected ErrIncompleteSelection without doctor, got %v", err)
	}
	if err := f.SelectDoctor(ctx, 10); err != nil {
		t.Fatalf("select doctor: %v", err)
	}
	if f.CanConfirm() {
		t.Error("expected confirm unavailable without slot")
	}
	if _, err := f.Confirm(ctx); !errors.Is(err, ErrIncompleteSelection) {
		t.Errorf("expected ErrIncompleteSelection without slot, got %v", err)
	}
	if repo.approvalCount() != 0 {
		t.Errorf("expected no submit with partial selection, got %d", repo.approvalCount())
	}
}

func TestFlow_ConfirmSuccess(t *testing.T) {
	repo := seededRepo()
	var refreshed []Record
	f := openFlow(t, repo, func(_ context.Context, r Record) { refreshed = append(refreshed, r) })
	ctx := context.Background()

	if err := f.SelectDoctor(ctx, 10); err != nil {
		t.Fatalf("select doctor: %v", err)
	}
	if err := f.SelectSlot("08:30-09:00"); err != nil {
		t.Fatalf("select slot: %v", err)
	}
	rec, err := f.Confirm(ctx)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if rec.Status != StatusApproved || rec.TimeSlot != "08:30-09:00" {
		t.Errorf("unexpected record %+v", rec)
	}

	req := repo.approvals[0]
	if req.DoctorID == nil || *req.DoctorID != 10 || *req.TimeSlot != "08:30-09:00" || *req.AppointmentDate != "2024-05-10" {
		t.Errorf("unexpected assign request %+v", req)
	}

	if f.State() != StateSuccess {
		t.Errorf("expected success, got %s", f.State())
	}
	v := f.View()
	if v.Appointment != nil || v.Draft.DoctorID != nil || v.Draft.TimeSlot != "" || len(v.Doctors) != 0 {
		t.Errorf("expected dialog closed and draft cleared, got %+v", v)
	}
	if len(refreshed) != 1 || refreshed[0].ID != 1 {
		t.Errorf("expected one refresh for appointment 1, got %+v", refreshed)
	}
}

func TestFlow_ConfirmFailureKeepsSelection(t *testing.T) {
	repo := seededRepo()
	repo.approveErr = &apperr.BusinessError{Status: 409, Message: "Khung giờ đã đầy"}
	refreshed := 0
	f := openFlow(t, repo, func(context.Context, Record) { refreshed++ })
	ctx := context.Background()

	if err := f.SelectDoctor(ctx, 10); err != nil {
		t.Fatalf("select doctor: %v", err)
	}
	if err := f.SelectSlot("08:00-08:30"); err != nil {
		t.Fatalf("select slot: %v", err)
	}
	_, err := f.Confirm(ctx)
	var berr *apperr.BusinessError
	if !errors.As(err, &berr) || berr.Message != "Khung giờ đã đầy" {
		t.Fatalf("expected business error passed through, got %v", err)
	}

	if f.State() != StateSlotsReady {
		t.Errorf("expected slots_ready after failure, got %s", f.State())
	}
	d := f.Draft()
	if d.DoctorID == nil || *d.DoctorID != 10 || d.TimeSlot != "08:00-08:30" {
		t.Errorf("expected selection intact, got %+v", d)
	}
	if !f.CanConfirm() {
		t.Error("expected retry possible without re-selecting")
	}
	if f.View().Error != "Khung giờ đã đầy" {
		t.Errorf("expected error reported in view, got %q", f.View().Error)
	}
	if refreshed != 0 {
		t.Error("expected no refresh on failure")
	}

	repo.approveErr = nil
	if _, err := f.Confirm(ctx); err != nil {
		t.Errorf("expected retry to succeed, got %v", err)
	}
}

func TestFlow_Cancel(t *testing.T) {
	repo := seededRepo()
	f := openFlow(t, repo, nil)
	if err := f.SelectDoctor(context.Background(), 10); err != nil {
		t.Fatalf("select doctor: %v", err)
	}

	if err := f.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if f.State() != StateIdle {
		t.Errorf("expected idle, got %s", f.State())
	}
	if d := f.Draft(); d.DoctorID != nil || d.TimeSlot != "" || d.AppointmentDate != "" {
		t.Errorf("expected empty draft, got %+v", d)
	}
	if err := f.SelectSlot("08:00-08:30"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition after cancel, got %v", err)
	}
}

func TestFlow_BusyWhileSubmitting(t *testing.T) {
	repo := seededRepo()
	f := openFlow(t, repo, nil)
	ctx := context.Background()
	if err := f.SelectDoctor(ctx, 10); err != nil {
		t.Fatalf("select doctor: %v", err)
	}
	if err := f.SelectSlot("08:00-08:30"); err != nil {
		t.Fatalf("select slot: %v", err)
	}

	repo.approveGate = make(chan struct{})
	repo.approving = make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := f.Confirm(ctx); err != nil {
			t.Errorf("confirm: %v", err)
		}
	}()

	select {
	case <-repo.approving:
	case <-time.After(2 * time.Second):
		t.Fatal("approval never started")
	}

	if f.State() != StateSubmitting {
		t.Errorf("expected submitting, got %s", f.State())
	}
	if f.CanConfirm() {
		t.Error("expected confirm unavailable while submitting")
	}
	if _, err := f.Confirm(ctx); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy for second confirm, got %v", err)
	}
	if err := f.SelectDoctor(ctx, 11); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy for doctor change, got %v", err)
	}
	if err := f.Cancel(); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy for cancel, got %v", err)
	}

	close(repo.approveGate)
	wg.Wait()
	if repo.approvalCount() != 1 {
		t.Errorf("expected exactly one approval request, got %d", repo.approvalCount())
	}
}

func TestStateString(t *testing.T) {
	if StateSlotsReady.String() != "slots_ready" {
		t.Errorf("unexpected %q", StateSlotsReady.String())
	}
	if State(42).String() != "state(42)" {
		t.Errorf("unexpected %q", State(42).String())
	}
}
