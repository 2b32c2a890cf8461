// Package payment starts VNPay e-wallet payments for appointments and reads
// the wallet's return redirect.
package payment

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/backend"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/apperr"
)

const (
	// linkTTL matches the wallet's own payment URL expiry.
	linkTTL = 15 * time.Minute
)

var (
	ErrAlreadyPaid = &apperr.BusinessError{Status: http.StatusConflict,
		Message: "Lịch hẹn này đã được thanh toán."}
	ErrNotPayable = &apperr.BusinessError{Status: http.StatusConflict,
		Message: "Lịch hẹn đã hủy hoặc bị từ chối nên không thể thanh toán."}
	ErrNotOwner = &apperr.BusinessError{Status: http.StatusForbidden,
		Message: apperr.MsgForbidden}
	ErrNoLink = &apperr.BusinessError{Status: http.StatusNotFound,
		Message: "Chưa có yêu cầu thanh toán cho lịch hẹn này."}
)

type Repository interface {
	GetAppointment(ctx context.Context, token string, id int64) (*backend.Appointment, error)
	CreatePayment(ctx context.Context, token string, appointmentID int64) (*backend.PaymentLink, error)
}

// Link is a live payment URL for one appointment.
type Link struct {
	AppointmentID int64     `json:"appointmentId"`
	PaymentURL    string    `json:"paymentUrl"`
	TxnRef        string    `json:"txnRef,omitempty"`
	Amount        int64     `json:"amount"`
	ExpiresAt     time.Time `json:"expiresAt"`

	patientID int64
}

type Service struct {
	repo   Repository
	now    func() time.Time
	logger zerolog.Logger

	mu    sync.Mutex
	links map[int64]Link
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		now:    time.Now,
		logger: logger.With().Str("component", "payment").Logger(),
		links:  make(map[int64]Link),
	}
}

// Initiate asks the backend for a payment URL for the patient's appointment.
func (s *Service) Initiate(ctx context.Context, token string, patientID, appointmentID int64) (*Link, error) {
	appt, err := s.repo.GetAppointment(ctx, token, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("get appointment %d: %w", appointmentID, err)
	}
	if appt.PatientID != patientID {
		return nil, ErrNotOwner
	}
	if strings.EqualFold(appt.PaymentStatus, "PAID") {
		return nil, ErrAlreadyPaid
	}
	switch strings.ToUpper(appt.Status) {
	case "CANCELLED", "REJECTED":
		return nil, ErrNotPayable
	}

	pl, err := s.repo.CreatePayment(ctx, token, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	if _, err := url.ParseRequestURI(pl.PaymentURL); err != nil {
		return nil, &apperr.BusinessError{Status: http.StatusBadGateway, Message: apperr.MsgInternal}
	}

	link := Link{
		AppointmentID: appointmentID,
		PaymentURL:    pl.PaymentURL,
		TxnRef:        pl.TxnRef,
		Amount:        pl.Amount,
		ExpiresAt:     s.now().Add(linkTTL),
		patientID:     patientID,
	}
	if link.Amount == 0 {
		link.Amount = int64(appt.Fee)
	}
	s.mu.Lock()
	s.links[appointmentID] = link
	s.mu.Unlock()

	s.logger.Info().Int64("appointment_id", appointmentID).Str("txn_ref", link.TxnRef).Msg("payment initiated")
	return &link, nil
}

// Link returns the last unexpired link the patient created for an
// appointment.
func (s *Service) Link(patientID, appointmentID int64) (*Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[appointmentID]
	if !ok {
		return nil, ErrNoLink
	}
	if link.patientID != patientID {
		return nil, ErrNotOwner
	}
	if !s.now().Before(link.ExpiresAt) {
		delete(s.links, appointmentID)
		return nil, ErrNoLink
	}
	return &link, nil
}

// Result is what the wallet reported on its return redirect.
type Result struct {
	TxnRef   string `json:"txnRef"`
	Paid     bool   `json:"paid"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Amount   int64  `json:"amount"`
	BankCode string `json:"bankCode,omitempty"`
}

var returnMessages = map[string]string{
	"00": "Thanh toán thành công.",
	"07": "Giao dịch bị nghi ngờ gian lận.",
	"09": "Thẻ hoặc tài khoản chưa đăng ký Internet Banking.",
	"11": "Đã hết thời gian chờ thanh toán.",
	"12": "Thẻ hoặc tài khoản bị khóa.",
	"24": "Bạn đã hủy giao dịch.",
	"51": "Tài khoản không đủ số dư.",
	"65": "Tài khoản đã vượt hạn mức giao dịch trong ngày.",
	"75": "Ngân hàng thanh toán đang bảo trì.",
}

// ReturnStatus reads the VNPay return query. Only response code "00" is a
// successful payment; the backend's IPN callback remains the record of truth.
func ReturnStatus(q url.Values) Result {
	code := q.Get("vnp_ResponseCode")
	r := Result{
		TxnRef:   q.Get("vnp_TxnRef"),
		Code:     code,
		Paid:     code == "00",
		BankCode: q.Get("vnp_BankCode"),
	}
	if amt, err := strconv.ParseInt(q.Get("vnp_Amount"), 10, 64); err == nil {
		r.Amount = amt / 100
	}
	msg, ok := returnMessages[code]
	if !ok {
		msg = "Thanh toán không thành công."
	}
	r.Message = msg
	return r
}
