package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/domain/appointment"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/domain/healthtrack"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/apperr"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/auth"
)

type stubAppointments struct {
	all        []appointment.Record
	doctorDate string
	err        error
}

func (s *stubAppointments) ListAll(_ context.Context, _ string, f appointment.Filter) ([]appointment.Record, error) {
	return f.Apply(s.all), s.err
}

func (s *stubAppointments) ListForPatient(_ context.Context, _ string, patientID int64) ([]appointment.Record, error) {
	var out []appointment.Record
	for _, r := range s.all {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, s.err
}

func (s *stubAppointments) ListForDoctor(_ context.Context, _ string, doctorID int64, f appointment.Filter) ([]appointment.Record, error) {
	s.doctorDate = f.Date
	var out []appointment.Record
	for _, r := range f.Apply(s.all) {
		if r.DoctorID != nil && *r.DoctorID == doctorID {
			out = append(out, r)
		}
	}
	return out, s.err
}

type stubHealth struct {
	chart *healthtrack.Chart
	err   error
}

func (s stubHealth) Chart(context.Context, string, int64) (*healthtrack.Chart, error) {
	return s.chart, s.err
}

func doc(id int64) *int64 { return &id }

func sampleAppointments() []appointment.Record {
	return []appointment.Record{
		{ID: 1, PatientID: 5, AppointmentDate: "2024-05-03", Status: appointment.StatusApproved, PaymentStatus: appointment.PaymentUnpaid, DoctorID: doc(10), TimeSlot: "09:00-09:30"},
		{ID: 2, PatientID: 5, AppointmentDate: "2024-04-20", Status: appointment.StatusCompleted, PaymentStatus: appointment.PaymentPaid},
		{ID: 3, PatientID: 5, AppointmentDate: "2024-05-02", Status: appointment.StatusPending, PaymentStatus: appointment.PaymentUnpaid},
		{ID: 4, PatientID: 5, AppointmentDate: "2024-05-10", Status: appointment.StatusCancelled, PaymentStatus: appointment.PaymentUnpaid},
		{ID: 5, PatientID: 6, AppointmentDate: "2024-05-01", Status: appointment.StatusWaiting, DoctorID: doc(10), TimeSlot: "08:30-09:00", RawStatus: "WAITING"},
		{ID: 6, PatientID: 7, AppointmentDate: "2024-05-01", Status: appointment.StatusCompleted, DoctorID: doc(10), TimeSlot: "08:00-08:30", RawStatus: "COMPLETED"},
		{ID: 7, PatientID: 8, AppointmentDate: "2024-05-01", Status: appointment.StatusApproved, DoctorID: doc(11), RawStatus: "APPROVED"},
	}
}

func newTestService(appts *stubAppointments, health stubHealth) *Service {
	svc := NewService(appts, health)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.Local) }
	return svc
}

func session(role auth.Role, id int64) *auth.Session {
	return &auth.Session{Token: "tok", User: auth.User{ID: id, FullName: "Nguyễn Văn An", Role: role}}
}

func TestBuild_Patient(t *testing.T) {
	bmi := 22.5
	health := stubHealth{chart: &healthtrack.Chart{Summary: healthtrack.Summary{Readings: 3, BMI: &healthtrack.Stat{Count: 3, Latest: bmi}}}}
	svc := newTestService(&stubAppointments{all: sampleAppointments()}, health)

	v, err := svc.Build(context.Background(), session(auth.RolePatient, 5))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if v.Patient == nil || v.Doctor != nil || v.Admin != nil {
		t.Fatalf("expected only the patient view, got %+v", v)
	}
	up := v.Patient.Upcoming
	if len(up) != 2 || up[0].ID != 3 || up[1].ID != 1 {
		t.Errorf("expected upcoming [3 1], got %+v", up)
	}
	if v.Patient.Unpaid != 2 {
		t.Errorf("expected 2 unpaid, got %d", v.Patient.Unpaid)
	}
	if v.Patient.Health.BMI == nil || v.Patient.Health.BMI.Latest != bmi {
		t.Errorf("expected health summary, got %+v", v.Patient.Health)
	}
	if v.Greeting != "Chào buổi sáng, Nguyễn Văn An" {
		t.Errorf("unexpected greeting %q", v.Greeting)
	}
}

func TestBuild_PatientHealthFailure(t *testing.T) {
	svc := newTestService(&stubAppointments{all: sampleAppointments()}, stubHealth{err: apperr.ErrUnavailable})
	if _, err := svc.Build(context.Background(), session(auth.RolePatient, 5)); !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestBuild_Doctor(t *testing.T) {
	appts := &stubAppointments{all: sampleAppointments()}
	svc := newTestService(appts, stubHealth{})

	v, err := svc.Build(context.Background(), session(auth.RoleDoctor, 10))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if appts.doctorDate != "2024-05-01" {
		t.Errorf("expected today's filter, got %q", appts.doctorDate)
	}
	today := v.Doctor.Today
	if len(today) != 2 || today[0].ID != 6 || today[1].ID != 5 {
		t.Errorf("expected today [6 5] by slot, got %+v", today)
	}
	if v.Doctor.Completed != 1 || v.Doctor.Remaining != 1 {
		t.Errorf("expected 1 completed and 1 remaining, got %+v", v.Doctor)
	}
}

func TestBuild_Admin(t *testing.T) {
	svc := newTestService(&stubAppointments{all: sampleAppointments()}, stubHealth{})

	v, err := svc.Build(context.Background(), session(auth.RoleAdmin, 1))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if v.Admin.Stats.Total != 7 {
		t.Errorf("expected 7 total, got %d", v.Admin.Stats.Total)
	}
	if len(v.Admin.Pending) != 1 || v.Admin.Pending[0].ID != 3 {
		t.Errorf("expected pending [3], got %+v", v.Admin.Pending)
	}
}

func TestBuild_UnknownRole(t *testing.T) {
	svc := newTestService(&stubAppointments{}, stubHealth{})
	if _, err := svc.Build(context.Background(), session("NURSE", 1)); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestHandler_GetDashboard(t *testing.T) {
	h := NewHandler(newTestService(&stubAppointments{all: sampleAppointments()}, stubHealth{}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	req = req.WithContext(auth.WithSession(req.Context(), session(auth.RoleAdmin, 1)))
	rec := httptest.NewRecorder()

	if err := h.GetDashboard(echo.New().NewContext(req, rec)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	var v map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v["role"] != "ADMIN" {
		t.Errorf("expected ADMIN, got %v", v["role"])
	}
	if _, ok := v["patient"]; ok {
		t.Error("expected no patient section for admin")
	}
}
