package appointment

import (
	"context"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/backend"
)

// Repository is the appointment surface of the clinic backend.
// *backend.Client satisfies it.
type Repository interface {
	ListAppointments(ctx context.Context, token string) ([]backend.Appointment, error)
	ListPatientAppointments(ctx context.Context, token string, patientID int64) ([]backend.Appointment, error)
	ListDoctorAppointments(ctx context.Context, token string, doctorID int64) ([]backend.Appointment, error)
	GetAppointment(ctx context.Context, token string, id int64) (*backend.Appointment, error)
	CreateAppointment(ctx context.Context, token string, req backend.BookingRequest) (*backend.Appointment, error)
	RejectAppointment(ctx context.Context, token string, id int64, reason string) error
	CompleteAppointment(ctx context.Context, token string, id int64) error
	CancelAppointment(ctx context.Context, token string, id int64) error
}

// AssignmentRepository is what the assignment dialog and quick approve need.
type AssignmentRepository interface {
	DoctorsByDepartment(ctx context.Context, token, department string) ([]backend.Doctor, error)
	AvailableSlots(ctx context.Context, token string, doctorID int64, date string) ([]backend.Slot, error)
	ApproveAppointment(ctx context.Context, token string, id int64, req backend.AssignRequest) (*backend.Appointment, error)
}
