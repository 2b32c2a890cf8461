package backend

import (
	"context"
	"net/http"
	"strconv"
)

// ListAppointments returns every registration (admin view).
func (c *Client) ListAppointments(ctx context.Context, token string) ([]Appointment, error) {
	var out []Appointment
	if err := c.do(c.request(ctx, token), http.MethodGet, "/api/appointments", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPatientAppointments returns one patient's registrations.
func (c *Client) ListPatientAppointments(ctx context.Context, token string, patientID int64) ([]Appointment, error) {
	var out []Appointment
	if err := c.do(c.request(ctx, token), http.MethodGet, idPath("/api/appointments/patient/%d", patientID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDoctorAppointments returns the registrations assigned to a doctor.
func (c *Client) ListDoctorAppointments(ctx context.Context, token string, doctorID int64) ([]Appointment, error) {
	var out []Appointment
	if err := c.do(c.request(ctx, token), http.MethodGet, idPath("/api/appointments/doctor/%d", doctorID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAppointment fetches a single registration.
func (c *Client) GetAppointment(ctx context.Context, token string, id int64) (*Appointment, error) {
	var out Appointment
	if err := c.do(c.request(ctx, token), http.MethodGet, idPath("/api/appointments/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAppointment books a visit.
func (c *Client) CreateAppointment(ctx context.Context, token string, req BookingRequest) (*Appointment, error) {
	var out Appointment
	if err := c.do(c.request(ctx, token).SetBody(req), http.MethodPost, "/api/appointments", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApproveAppointment assigns a doctor and slot. A request with every field nil
// delegates the choice to the backend.
func (c *Client) ApproveAppointment(ctx context.Context, token string, id int64, req AssignRequest) (*Appointment, error) {
	var out Appointment
	if err := c.do(c.request(ctx, token).SetBody(req), http.MethodPut, idPath("/api/appointments/%d/approve", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RejectAppointment rejects a registration with a reason.
func (c *Client) RejectAppointment(ctx context.Context, token string, id int64, reason string) error {
	req := c.request(ctx, token).SetBody(map[string]string{"reason": reason})
	return c.do(req, http.MethodPut, idPath("/api/appointments/%d/reject", id), nil)
}

// CompleteAppointment marks a visit as done.
func (c *Client) CompleteAppointment(ctx context.Context, token string, id int64) error {
	return c.do(c.request(ctx, token), http.MethodPut, idPath("/api/appointments/%d/complete", id), nil)
}

// CancelAppointment cancels a registration on the patient's behalf.
func (c *Client) CancelAppointment(ctx context.Context, token string, id int64) error {
	return c.do(c.request(ctx, token), http.MethodPut, idPath("/api/appointments/%d/cancel", id), nil)
}

// DoctorsByDepartment lists doctors eligible for a department.
func (c *Client) DoctorsByDepartment(ctx context.Context, token, department string) ([]Doctor, error) {
	var out []Doctor
	req := c.request(ctx, token).SetQueryParam("department", department)
	if err := c.do(req, http.MethodGet, "/api/doctors/by-department", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AvailableSlots lists a doctor's open slots on date (YYYY-MM-DD).
func (c *Client) AvailableSlots(ctx context.Context, token string, doctorID int64, date string) ([]Slot, error) {
	var out []Slot
	req := c.request(ctx, token).SetQueryParams(map[string]string{
		"doctorId": strconv.FormatInt(doctorID, 10),
		"date":     date,
	})
	if err := c.do(req, http.MethodGet, "/api/doctor-slots/available", &out); err != nil {
		return nil, err
	}
	return out, nil
}
