package appointment

import (
	"strconv"
	"strings"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/backend"
)

// Status is the registration lifecycle as reported by the backend.
type Status string

const (
	StatusUnknown           Status = ""
	StatusPending           Status = "PENDING"
	StatusNeedsManualReview Status = "NEEDS_MANUAL_REVIEW"
	StatusApproved          Status = "APPROVED"
	StatusRejected          Status = "REJECTED"
	StatusCompleted         Status = "COMPLETED"
	StatusCancelled         Status = "CANCELLED"
	StatusInProgress        Status = "IN_PROGRESS"
	StatusWaiting           Status = "WAITING"
)

// AllStatuses lists the known statuses in display order.
var AllStatuses = []Status{
	StatusPending, StatusNeedsManualReview, StatusApproved, StatusWaiting,
	StatusInProgress, StatusCompleted, StatusRejected, StatusCancelled,
}

// ParseStatus maps a backend string onto the known set. Anything else is
// StatusUnknown; callers keep the raw string for display.
func ParseStatus(s string) Status {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusNeedsManualReview, StatusApproved, StatusRejected,
		StatusCompleted, StatusCancelled, StatusInProgress, StatusWaiting:
		return st
	}
	return StatusUnknown
}

func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Chờ duyệt"
	case StatusNeedsManualReview:
		return "Cần xếp lịch thủ công"
	case StatusApproved:
		return "Đã duyệt"
	case StatusRejected:
		return "Đã từ chối"
	case StatusCompleted:
		return "Đã khám xong"
	case StatusCancelled:
		return "Đã hủy"
	case StatusInProgress:
		return "Đang khám"
	case StatusWaiting:
		return "Đang chờ khám"
	case StatusUnknown:
	}
	return ""
}

func (s Status) Color() string {
	switch s {
	case StatusPending:
		return "orange"
	case StatusNeedsManualReview:
		return "purple"
	case StatusApproved:
		return "green"
	case StatusRejected:
		return "red"
	case StatusCompleted:
		return "blue"
	case StatusCancelled:
		return "gray"
	case StatusInProgress:
		return "cyan"
	case StatusWaiting:
		return "gold"
	case StatusUnknown:
	}
	return "gray"
}

// Assignable reports whether an admin may still pick a doctor and slot.
func (s Status) Assignable() bool {
	switch s {
	case StatusPending, StatusNeedsManualReview:
		return true
	}
	return false
}

// Cancellable reports whether the patient may still cancel.
func (s Status) Cancellable() bool {
	switch s {
	case StatusPending, StatusNeedsManualReview, StatusApproved:
		return true
	}
	return false
}

// Completable reports whether the doctor may close the visit.
func (s Status) Completable() bool {
	switch s {
	case StatusApproved, StatusWaiting, StatusInProgress:
		return true
	}
	return false
}

// PaymentStatus is independent of Status.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "PAID"
	PaymentPending PaymentStatus = "PENDING"
	PaymentUnpaid  PaymentStatus = "UNPAID"
)

// ParsePaymentStatus treats anything other than PAID or PENDING as unpaid.
func ParsePaymentStatus(s string) PaymentStatus {
	switch p := PaymentStatus(strings.ToUpper(strings.TrimSpace(s))); p {
	case PaymentPaid, PaymentPending:
		return p
	}
	return PaymentUnpaid
}

func (p PaymentStatus) Label() string {
	switch p {
	case PaymentPaid:
		return "Đã thanh toán"
	case PaymentPending:
		return "Chờ thanh toán"
	case PaymentUnpaid:
	}
	return "Chưa thanh toán"
}

// Record is one appointment as the portal shows it.
type Record struct {
	ID              int64         `json:"id"`
	PatientID       int64         `json:"patientId"`
	PatientName     string        `json:"patientName"`
	Phone           string        `json:"phone"`
	Email           string        `json:"email"`
	Department      string        `json:"department"`
	AppointmentDate string        `json:"appointmentDate"`
	TimeSlot        string        `json:"timeSlot,omitempty"`
	DoctorID        *int64        `json:"doctorId,omitempty"`
	DoctorName      string        `json:"doctorName,omitempty"`
	Symptoms        string        `json:"symptoms,omitempty"`
	Status          Status        `json:"status"`
	RawStatus       string        `json:"rawStatus"`
	StatusLabel     string        `json:"statusLabel"`
	StatusColor     string        `json:"statusColor"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	PaymentLabel    string        `json:"paymentLabel"`
	Fee             float64       `json:"fee"`
	QueueNumber     *int          `json:"queueNumber,omitempty"`
}

func newRecord(a backend.Appointment) Record {
	st := ParseStatus(a.Status)
	label := st.Label()
	if st == StatusUnknown {
		label = a.Status
	}
	pay := ParsePaymentStatus(a.PaymentStatus)
	return Record{
		ID:              a.ID,
		PatientID:       a.PatientID,
		PatientName:     a.FullName,
		Phone:           a.Phone,
		Email:           a.Email,
		Department:      a.Department,
		AppointmentDate: a.AppointmentDate,
		TimeSlot:        a.TimeSlot,
		DoctorID:        a.DoctorID,
		DoctorName:      a.DoctorName,
		Symptoms:        a.Symptoms,
		Status:          st,
		RawStatus:       a.Status,
		StatusLabel:     label,
		StatusColor:     st.Color(),
		PaymentStatus:   pay,
		PaymentLabel:    pay.Label(),
		Fee:             a.Fee,
		QueueNumber:     a.QueueNumber,
	}
}

func newRecords(as []backend.Appointment) []Record {
	out := make([]Record, len(as))
	for i, a := range as {
		out[i] = newRecord(a)
	}
	return out
}

// Filter narrows a list client-side. Empty fields match everything.
type Filter struct {
	Status        string `query:"status"`
	PaymentStatus string `query:"payment_status"`
	Department    string `query:"department"`
	Date          string `query:"date"`
	Search        string `query:"q"`
}

// Apply returns the records matching every set field, in input order.
// Status compares against the raw backend string so unknown statuses can
// still be filtered on.
func (f Filter) Apply(records []Record) []Record {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Status != "" && !strings.EqualFold(r.RawStatus, f.Status) {
			continue
		}
		if f.PaymentStatus != "" && r.PaymentStatus != ParsePaymentStatus(f.PaymentStatus) {
			continue
		}
		if f.Department != "" && !strings.EqualFold(r.Department, f.Department) {
			continue
		}
		if f.Date != "" && r.AppointmentDate != f.Date {
			continue
		}
		if search != "" && !r.matches(search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (r Record) matches(q string) bool {
	return strings.Contains(strings.ToLower(r.PatientName), q) ||
		strings.Contains(r.Phone, q) ||
		strings.Contains(strings.ToLower(r.Email), q) ||
		strconv.FormatInt(r.ID, 10) == q
}

// Stats counts records by status for the admin dashboard.
type Stats struct {
	Total     int            `json:"total"`
	ByStatus  map[Status]int `json:"byStatus"`
	Unknown   int            `json:"unknown"`
	Paid      int            `json:"paid"`
	Revenue   float64        `json:"revenue"`
	NeedsWork int            `json:"needsAssignment"`
}

// ComputeStats tallies records. Revenue sums fees of paid records.
func ComputeStats(records []Record) Stats {
	st := Stats{Total: len(records), ByStatus: make(map[Status]int, len(AllStatuses))}
	for _, s := range AllStatuses {
		st.ByStatus[s] = 0
	}
	for _, r := range records {
		if r.Status == StatusUnknown {
			st.Unknown++
		} else {
			st.ByStatus[r.Status]++
		}
		if r.PaymentStatus == PaymentPaid {
			st.Paid++
			st.Revenue += r.Fee
		}
		if r.Status.Assignable() {
			st.NeedsWork++
		}
	}
	return st
}
