package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/apperr"
)

func timeoutContext(path string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

// slowBackend waits like a backend call bound to the request context.
func slowBackend(c echo.Context) error {
	select {
	case <-time.After(5 * time.Second):
		return c.String(http.StatusOK, "ok")
	case <-c.Request().Context().Done():
		return apperr.ErrUnavailable
	}
}

func TestRequestTimeout_WithinDeadline(t *testing.T) {
	c, rec := timeoutContext("/api/v1/appointments")

	h := RequestTimeout(5 * time.Second)(func(c echo.Context) error {
		if _, ok := c.Request().Context().Deadline(); !ok {
			t.Error("expected a deadline on the request context")
		}
		return c.String(http.StatusOK, "ok")
	})

	if err := h(c); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequestTimeout_ExpiryBecomes504(t *testing.T) {
	c, _ := timeoutContext("/api/v1/appointments")

	start := time.Now()
	err := RequestTimeout(50 * time.Millisecond)(slowBackend)(c)
	if time.Since(start) > 2*time.Second {
		t.Fatal("expected the handler to stop at the deadline")
	}

	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusGatewayTimeout {
		t.Errorf("expected 504, got %d", httpErr.Code)
	}
	if httpErr.Message != apperr.MsgUnavailable {
		t.Errorf("expected retry message, got %v", httpErr.Message)
	}
	if httpErr.Internal != context.DeadlineExceeded {
		t.Errorf("expected deadline as internal error, got %v", httpErr.Internal)
	}
}

func TestRequestTimeout_CommittedResponseKept(t *testing.T) {
	c, rec := timeoutContext("/api/v1/appointments/export.xlsx")

	h := RequestTimeout(20 * time.Millisecond)(func(c echo.Context) error {
		c.Response().WriteHeader(http.StatusOK)
		<-c.Request().Context().Done()
		return nil
	})

	if err := h(c); err != nil {
		t.Fatalf("expected no error once the response is written, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequestTimeout_SkipsWebSocketPath(t *testing.T) {
	c, _ := timeoutContext("/api/v1/ws")

	h := RequestTimeout(50 * time.Millisecond)(func(c echo.Context) error {
		if _, ok := c.Request().Context().Deadline(); ok {
			t.Error("expected no deadline on the websocket path")
		}
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestRequestTimeout_Disabled(t *testing.T) {
	c, _ := timeoutContext("/api/v1/appointments")

	h := RequestTimeout(0)(func(c echo.Context) error {
		if _, ok := c.Request().Context().Deadline(); ok {
			t.Error("expected no deadline when the timeout is zero")
		}
		return nil
	})
	h(c)
}

func TestRequestTimeout_PropagatesHandlerError(t *testing.T) {
	c, _ := timeoutContext("/api/v1/appointments/123")

	err := RequestTimeout(5 * time.Second)(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	})(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", httpErr.Code)
	}
}
