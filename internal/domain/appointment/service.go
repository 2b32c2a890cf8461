package appointment

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/backend"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/apperr"
)

var (
	ErrNotCancellable = &apperr.BusinessError{Status: http.StatusConflict,
		Message: "Lịch hẹn này không thể hủy"}
	ErrNotCompletable = &apperr.BusinessError{Status: http.StatusConflict,
		Message: "Lịch hẹn chưa được duyệt nên chưa thể hoàn thành"}
	ErrNotOwner = &apperr.BusinessError{Status: http.StatusForbidden,
		Message: apperr.MsgForbidden}
)

var phonePattern = regexp.MustCompile(`^(\+84|0)\d{9,10}$`)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ListAll returns every appointment matching f. Admin only.
func (s *Service) ListAll(ctx context.Context, token string, f Filter) ([]Record, error) {
	as, err := s.repo.ListAppointments(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return f.Apply(newRecords(as)), nil
}

func (s *Service) ListForPatient(ctx context.Context, token string, patientID int64) ([]Record, error) {
	as, err := s.repo.ListPatientAppointments(ctx, token, patientID)
	if err != nil {
		return nil, fmt.Errorf("list patient appointments: %w", err)
	}
	return newRecords(as), nil
}

func (s *Service) ListForDoctor(ctx context.Context, token string, doctorID int64, f Filter) ([]Record, error) {
	as, err := s.repo.ListDoctorAppointments(ctx, token, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list doctor appointments: %w", err)
	}
	return f.Apply(newRecords(as)), nil
}

func (s *Service) Get(ctx context.Context, token string, id int64) (*Record, error) {
	a, err := s.repo.GetAppointment(ctx, token, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment %d: %w", id, err)
	}
	rec := newRecord(*a)
	return &rec, nil
}

// BookingInput is the patient booking form.
type BookingInput struct {
	FullName        string `json:"fullName"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Department      string `json:"department"`
	AppointmentDate string `json:"appointmentDate"`
	Symptoms        string `json:"symptoms"`
}

// Book validates the form before any network call, then registers it.
func (s *Service) Book(ctx context.Context, token string, patientID int64, in BookingInput) (*Record, error) {
	req, err := s.validateBooking(patientID, in)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.CreateAppointment(ctx, token, req)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	rec := newRecord(*a)
	return &rec, nil
}

func (s *Service) validateBooking(patientID int64, in BookingInput) (backend.BookingRequest, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.ReplaceAll(strings.TrimSpace(in.Phone), " ", "")
	in.Email = strings.TrimSpace(in.Email)
	in.Department = strings.TrimSpace(in.Department)
	in.Symptoms = strings.TrimSpace(in.Symptoms)

	switch {
	case in.FullName == "":
		return backend.BookingRequest{}, apperr.Validation("fullName", "Vui lòng nhập họ tên")
	case in.Phone == "":
		return backend.BookingRequest{}, apperr.Validation("phone", "Vui lòng nhập số điện thoại")
	case !phonePattern.MatchString(in.Phone):
		return backend.BookingRequest{}, apperr.Validation("phone", "Số điện thoại không hợp lệ")
	case in.Email != "" && !strings.Contains(in.Email, "@"):
		return backend.BookingRequest{}, apperr.Validation("email", "Email không hợp lệ")
	case in.Department == "":
		return backend.BookingRequest{}, apperr.Validation("department", "Vui lòng chọn khoa khám")
	case in.AppointmentDate == "":
		return backend.BookingRequest{}, apperr.Validation("appointmentDate", "Vui lòng chọn ngày khám")
	case in.Symptoms == "":
		return backend.BookingRequest{}, apperr.Validation("symptoms", "Vui lòng mô tả triệu chứng")
	}

	date, err := time.ParseInLocation("2006-01-02", in.AppointmentDate, time.Local)
	if err != nil {
		return backend.BookingRequest{}, apperr.Validation("appointmentDate", "Ngày khám không hợp lệ")
	}
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if date.Before(today) {
		return backend.BookingRequest{}, apperr.Validation("appointmentDate", "Ngày khám không được ở trong quá khứ")
	}

	return backend.BookingRequest{
		PatientID:       patientID,
		FullName:        in.FullName,
		Phone:           in.Phone,
		Email:           in.Email,
		Department:      in.Department,
		AppointmentDate: in.AppointmentDate,
		Symptoms:        in.Symptoms,
	}, nil
}

// Reject requires a reason; the backend forwards it to the patient.
func (s *Service) Reject(ctx context.Context, token string, id int64, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperr.Validation("reason", "Vui lòng nhập lý do từ chối")
	}
	if err := s.repo.RejectAppointment(ctx, token, id, reason); err != nil {
		return fmt.Errorf("reject appointment %d: %w", id, err)
	}
	return nil
}

// Complete closes a visit. The doctor must be the assigned one.
func (s *Service) Complete(ctx context.Context, token string, doctorID, id int64) error {
	rec, err := s.Get(ctx, token, id)
	if err != nil {
		return err
	}
	if rec.DoctorID == nil || *rec.DoctorID != doctorID {
		return ErrNotOwner
	}
	if !rec.Status.Completable() {
		return ErrNotCompletable
	}
	if err := s.repo.CompleteAppointment(ctx, token, id); err != nil {
		return fmt.Errorf("complete appointment %d: %w", id, err)
	}
	return nil
}

// Cancel cancels the patient's own appointment while it is still open.
func (s *Service) Cancel(ctx context.Context, token string, patientID, id int64) error {
	rec, err := s.Get(ctx, token, id)
	if err != nil {
		return err
	}
	if rec.PatientID != patientID {
		return ErrNotOwner
	}
	if !rec.Status.Cancellable() || rec.PaymentStatus == PaymentPaid {
		return ErrNotCancellable
	}
	if err := s.repo.CancelAppointment(ctx, token, id); err != nil {
		return fmt.Errorf("cancel appointment %d: %w", id, err)
	}
	return nil
}

// Stats counts all appointments by status.
func (s *Service) Stats(ctx context.Context, token string) (Stats, error) {
	recs, err := s.ListAll(ctx, token, Filter{})
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(recs), nil
}
