package appointment

import (
	"context"
	"net/http"
	"sync"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/backend"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/apperr"
)

var errNotFound = &apperr.BusinessError{Status: http.StatusNotFound, Message: "Không tìm thấy lịch hẹn"}

type slotQuery struct {
	doctorID int64
	date     string
}

type mockRepo struct {
	mu sync.Mutex

	appointments map[int64]backend.Appointment
	doctors      map[string][]backend.Doctor
	slots        map[int64][]backend.Slot

	doctorsErr error
	slotsErr   error
	approveErr error
	err        error

	slotQueries []slotQuery
	approvals   []backend.AssignRequest
	created     []backend.BookingRequest
	rejected    map[int64]string
	completed   []int64
	cancelled   []int64

	// approveGate, when set, blocks ApproveAppointment until closed.
	approveGate chan struct{}
	approving   chan struct{}
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		appointments: make(map[int64]backend.Appointment),
		doctors:      make(map[string][]backend.Doctor),
		slots:        make(map[int64][]backend.Slot),
		rejected:     make(map[int64]string),
	}
}

func (m *mockRepo) ListAppointments(_ context.Context, _ string) ([]backend.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]backend.Appointment, 0, len(m.appointments))
	for id := int64(1); len(out) < len(m.appointments); id++ {
		if a, ok := m.appointments[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockRepo) ListPatientAppointments(ctx context.Context, token string, patientID int64) ([]backend.Appointment, error) {
	all, err := m.ListAppointments(ctx, token)
	if err != nil {
		return nil, err
	}
	var out []backend.Appointment
	for _, a := range all {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockRepo) ListDoctorAppointments(ctx context.Context, token string, doctorID int64) ([]backend.Appointment, error) {
	all, err := m.ListAppointments(ctx, token)
	if err != nil {
		return nil, err
	}
	var out []backend.Appointment
	for _, a := range all {
		if a.DoctorID != nil && *a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockRepo) GetAppointment(_ context.Context, _ string, id int64) (*backend.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.appointments[id]
	if !ok {
		return nil, errNotFound
	}
	return &a, nil
}

func (m *mockRepo) CreateAppointment(_ context.Context, _ string, req backend.BookingRequest) (*backend.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.created = append(m.created, req)
	a := backend.Appointment{
		ID:              int64(100 + len(m.created)),
		PatientID:       req.PatientID,
		FullName:        req.FullName,
		Phone:           req.Phone,
		Department:      req.Department,
		AppointmentDate: req.AppointmentDate,
		Symptoms:        req.Symptoms,
		Status:          "PENDING",
		PaymentStatus:   "UNPAID",
	}
	m.appointments[a.ID] = a
	return &a, nil
}

func (m *mockRepo) RejectAppointment(_ context.Context, _ string, id int64, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.rejected[id] = reason
	return nil
}

func (m *mockRepo) CompleteAppointment(_ context.Context, _ string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = append(m.completed, id)
	return m.err
}

func (m *mockRepo) CancelAppointment(_ context.Context, _ string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, id)
	return m.err
}

func (m *mockRepo) DoctorsByDepartment(_ context.Context, _ string, department string) ([]backend.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doctorsErr != nil {
		return nil, m.doctorsErr
	}
	return m.doctors[department], nil
}

func (m *mockRepo) AvailableSlots(_ context.Context, _ string, doctorID int64, date string) ([]backend.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slotQueries = append(m.slotQueries, slotQuery{doctorID, date})
	if m.slotsErr != nil {
		return nil, m.slotsErr
	}
	return m.slots[doctorID], nil
}

func (m *mockRepo) ApproveAppointment(_ context.Context, _ string, id int64, req backend.AssignRequest) (*backend.Appointment, error) {
	if m.approveGate != nil {
		if m.approving != nil {
			m.approving <- struct{}{}
		}
		<-m.approveGate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approvals = append(m.approvals, req)
	if m.approveErr != nil {
		return nil, m.approveErr
	}
	a := m.appointments[id]
	a.Status = "APPROVED"
	a.DoctorID = req.DoctorID
	if req.TimeSlot != nil {
		a.TimeSlot = *req.TimeSlot
	}
	m.appointments[id] = a
	return &a, nil
}

func (m *mockRepo) approvalCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.approvals)
}

func i64(v int64) *int64 { return &v }
