package backend

import (
	"context"
	"net/http"
	"strconv"
)

// ListSlots lists slots, optionally narrowed to a doctor and date.
func (c *Client) ListSlots(ctx context.Context, token string, doctorID int64, date string) ([]Slot, error) {
	var out []Slot
	req := c.request(ctx, token)
	if doctorID > 0 {
		req.SetQueryParam("doctorId", strconv.FormatInt(doctorID, 10))
	}
	if date != "" {
		req.SetQueryParam("date", date)
	}
	if err := c.do(req, http.MethodGet, "/api/doctor-slots", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSlot adds a slot.
func (c *Client) CreateSlot(ctx context.Context, token string, s Slot) (*Slot, error) {
	var out Slot
	if err := c.do(c.request(ctx, token).SetBody(s), http.MethodPost, "/api/doctor-slots", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSlot removes a slot. The backend refuses when patients are booked.
func (c *Client) DeleteSlot(ctx context.Context, token string, id int64) error {
	return c.do(c.request(ctx, token), http.MethodDelete, idPath("/api/doctor-slots/%d", id), nil)
}

// HealthRecords lists a patient's recorded vitals.
func (c *Client) HealthRecords(ctx context.Context, token string, patientID int64) ([]HealthRecord, error) {
	var out []HealthRecord
	if err := c.do(c.request(ctx, token), http.MethodGet, idPath("/api/health-records/patient/%d", patientID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateHealthRecord stores a new set of vitals.
func (c *Client) CreateHealthRecord(ctx context.Context, token string, rec HealthRecord) (*HealthRecord, error) {
	var out HealthRecord
	if err := c.do(c.request(ctx, token).SetBody(rec), http.MethodPost, "/api/health-records", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HealthChart returns the patient's time series as parallel arrays.
func (c *Client) HealthChart(ctx context.Context, token string, patientID int64) (*HealthChart, error) {
	var out HealthChart
	if err := c.do(c.request(ctx, token), http.MethodGet, idPath("/api/health-records/patient/%d/chart", patientID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMedicines returns the catalogue.
func (c *Client) ListMedicines(ctx context.Context, token string) ([]Medicine, error) {
	var out []Medicine
	if err := c.do(c.request(ctx, token), http.MethodGet, "/api/medicines", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateMedicine adds a catalogue entry.
func (c *Client) CreateMedicine(ctx context.Context, token string, m Medicine) (*Medicine, error) {
	var out Medicine
	if err := c.do(c.request(ctx, token).SetBody(m), http.MethodPost, "/api/medicines", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMedicine replaces a catalogue entry.
func (c *Client) UpdateMedicine(ctx context.Context, token string, m Medicine) (*Medicine, error) {
	var out Medicine
	if err := c.do(c.request(ctx, token).SetBody(m), http.MethodPut, idPath("/api/medicines/%d", m.ID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMedicine removes a catalogue entry.
func (c *Client) DeleteMedicine(ctx context.Context, token string, id int64) error {
	return c.do(c.request(ctx, token), http.MethodDelete, idPath("/api/medicines/%d", id), nil)
}

// CreatePayment asks the backend for an e-wallet payment URL.
func (c *Client) CreatePayment(ctx context.Context, token string, appointmentID int64) (*PaymentLink, error) {
	var out PaymentLink
	req := c.request(ctx, token).SetBody(map[string]int64{"appointmentId": appointmentID})
	if err := c.do(req, http.MethodPost, "/api/payments/vnpay/create", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
