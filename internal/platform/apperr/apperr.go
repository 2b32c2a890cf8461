// Package apperr holds the portal's error taxonomy and its mapping to the
// messages users see. Every call site that talks to the clinic backend
// returns one of these kinds so handlers can decide the response locally.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// User-facing messages.
const (
	MsgUnauthorized = "Phiên đăng nhập đã hết hạn hoặc không hợp lệ. Vui lòng đăng nhập lại."
	MsgForbidden    = "Bạn không có quyền thực hiện thao tác này."
	MsgUnavailable  = "Không thể kết nối tới máy chủ. Vui lòng kiểm tra mạng và thử lại."
	MsgInternal     = "Đã xảy ra lỗi. Vui lòng thử lại."
)

var (
	// ErrUnauthorized means the backend token is missing, expired or rejected.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the token is valid but the role may not do this.
	ErrForbidden = errors.New("forbidden")
	// ErrUnavailable covers transport failures and timeouts.
	ErrUnavailable = errors.New("backend unavailable")
)

// ValidationError is raised before any network call when a required form
// field is missing or malformed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation returns a *ValidationError for field.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// BusinessError carries a rule violation reported by the backend, such as
// "cannot delete a slot with active patients". Message is shown verbatim.
type BusinessError struct {
	Status  int
	Message string
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Unavailable wraps a transport error as ErrUnavailable.
func Unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// UserMessage returns the status code and message a user should see for err.
func UserMessage(err error) (int, string) {
	var verr *ValidationError
	var berr *BusinessError

	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, MsgUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, MsgForbidden
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, MsgUnavailable
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.As(err, &berr):
		status := berr.Status
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		msg := berr.Message
		if msg == "" {
			msg = MsgInternal
		}
		return status, msg
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

// HTTPError converts err into an *echo.HTTPError carrying the user message.
func HTTPError(err error) *echo.HTTPError {
	status, msg := UserMessage(err)
	return echo.NewHTTPError(status, msg).SetInternal(err)
}
