package backend

// User is the profile blob the backend returns at login and the portal keeps
// as the session's "user".
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	FullName string `json:"fullName,omitempty"`
}

// LoginResult is returned by the login endpoints.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Appointment is a patient registration as the backend serialises it.
type Appointment struct {
	ID              int64   `json:"id"`
	PatientID       int64   `json:"patientId"`
	FullName        string  `json:"fullName"`
	Phone           string  `json:"phone"`
	Email           string  `json:"email"`
	Department      string  `json:"department"`
	AppointmentDate string  `json:"appointmentDate"`
	TimeSlot        string  `json:"timeSlot,omitempty"`
	DoctorID        *int64  `json:"doctorId,omitempty"`
	DoctorName      string  `json:"doctorName,omitempty"`
	Symptoms        string  `json:"symptoms,omitempty"`
	Status          string  `json:"status"`
	PaymentStatus   string  `json:"paymentStatus"`
	Fee             float64 `json:"examinationFee"`
	QueueNumber     *int    `json:"queueNumber,omitempty"`
	CreatedAt       string  `json:"createdAt,omitempty"`
}

// BookingRequest is the body of a patient booking.
type BookingRequest struct {
	PatientID       int64  `json:"patientId"`
	FullName        string `json:"fullName"`
	Phone           string `json:"phone"`
	Email           string `json:"email,omitempty"`
	Department      string `json:"department"`
	AppointmentDate string `json:"appointmentDate"`
	Symptoms        string `json:"symptoms"`
}

// AssignRequest approves an appointment. All fields nil asks the backend to
// pick a doctor and slot itself.
type AssignRequest struct {
	DoctorID        *int64  `json:"doctorId"`
	AppointmentDate *string `json:"appointmentDate"`
	TimeSlot        *string `json:"timeSlot"`
}

// Doctor is a doctor eligible for a department.
type Doctor struct {
	ID         int64  `json:"id"`
	FullName   string `json:"fullName"`
	Department string `json:"departmentName"`
	Degree     string `json:"degree,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Slot is a doctor-date-time bucket with a patient capacity.
type Slot struct {
	ID              int64  `json:"id,omitempty"`
	DoctorID        int64  `json:"doctorId"`
	DoctorName      string `json:"doctorName,omitempty"`
	Date            string `json:"date"`
	TimeSlot        string `json:"timeSlot"`
	MaxPatients     int    `json:"maxPatients"`
	CurrentPatients int    `json:"currentPatients"`
	Available       bool   `json:"isActive"`
}

// HealthRecord is one recorded set of vitals with server-computed categories.
type HealthRecord struct {
	ID                    int64    `json:"id,omitempty"`
	PatientID             int64    `json:"patientId"`
	RecordDate            string   `json:"recordDate"`
	Weight                *float64 `json:"weight"`
	Height                *float64 `json:"height"`
	BMI                   *float64 `json:"bmi"`
	Systolic              *float64 `json:"systolic"`
	Diastolic             *float64 `json:"diastolic"`
	BloodSugar            *float64 `json:"bloodSugar"`
	SpO2                  *float64 `json:"spo2"`
	BMICategory           string   `json:"bmiCategory,omitempty"`
	BloodPressureCategory string   `json:"bloodPressureCategory,omitempty"`
	BloodSugarCategory    string   `json:"bloodSugarCategory,omitempty"`
	SpO2Category          string   `json:"spo2Category,omitempty"`
	Note                  string   `json:"note,omitempty"`
}

// HealthChart is the time-series payload: parallel arrays indexed by date.
type HealthChart struct {
	Dates      []string   `json:"dates"`
	BMI        []*float64 `json:"bmi"`
	Systolic   []*float64 `json:"systolic"`
	Diastolic  []*float64 `json:"diastolic"`
	BloodSugar []*float64 `json:"bloodSugar"`
	SpO2       []*float64 `json:"spo2"`
	Weight     []*float64 `json:"weight"`
}

// Medicine is a catalogue entry managed by admins.
type Medicine struct {
	ID           int64   `json:"id,omitempty"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Unit         string  `json:"unit"`
	Price        float64 `json:"price"`
	Stock        int     `json:"stockQuantity"`
	Manufacturer string  `json:"manufacturer,omitempty"`
	Description  string  `json:"description,omitempty"`
	ExpiryDate   string  `json:"expiryDate,omitempty"`
}

// PaymentLink is the e-wallet redirect the backend creates for an appointment.
type PaymentLink struct {
	PaymentURL string `json:"paymentUrl"`
	TxnRef     string `json:"txnRef,omitempty"`
	Amount     int64  `json:"amount,omitempty"`
}
