package appointment

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/apperr"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/auth"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/export"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/pkg/pagination"
)

type Handler struct {
	svc     *Service
	dialogs *DialogRegistry
}

func NewHandler(svc *Service, dialogs *DialogRegistry) *Handler {
	return &Handler{svc: svc, dialogs: dialogs}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Admin: full list, review and assignment
	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.GET("/appointments", h.ListAppointments)
	admin.GET("/appointments/stats", h.GetStats)
	admin.GET("/appointments/export.xlsx", h.ExportAppointments)
	admin.POST("/appointments/:id/reject", h.RejectAppointment)
	admin.POST("/appointments/:id/quick-approve", h.QuickApprove)
	admin.POST("/appointments/:id/assignment", h.OpenAssignment)
	admin.GET("/assignment", h.GetAssignment)
	admin.PUT("/assignment/doctor", h.SelectDoctor)
	admin.PUT("/assignment/slot", h.SelectSlot)
	admin.POST("/assignment/confirm", h.ConfirmAssignment)
	admin.DELETE("/assignment", h.CancelAssignment)

	patient := api.Group("", auth.RequireRole(auth.RolePatient))
	patient.GET("/appointments/mine", h.ListMine)
	patient.POST("/appointments", h.BookAppointment)
	patient.POST("/appointments/:id/cancel", h.CancelAppointment)

	doctor := api.Group("", auth.RequireRole(auth.RoleDoctor))
	doctor.GET("/appointments/doctor", h.ListForDoctor)
	doctor.POST("/appointments/:id/complete", h.CompleteAppointment)
}

func session(c echo.Context) *auth.Session {
	return auth.SessionFromContext(c.Request().Context())
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// -- Lists --

func (h *Handler) ListAppointments(c echo.Context) error {
	var f Filter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid filter")
	}
	recs, err := h.svc.ListAll(c.Request().Context(), session(c).Token, f)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.Page(recs, pagination.FromContext(c)))
}

func (h *Handler) GetStats(c echo.Context) error {
	st, err := h.svc.Stats(c.Request().Context(), session(c).Token)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) ExportAppointments(c echo.Context) error {
	var f Filter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid filter")
	}
	recs, err := h.svc.ListAll(c.Request().Context(), session(c).Token, f)
	if err != nil {
		return apperr.HTTPError(err)
	}
	var buf bytes.Buffer
	if err := Export(&buf, recs); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, apperr.MsgInternal).SetInternal(err)
	}
	name := fmt.Sprintf("lich-hen-%s.xlsx", time.Now().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, export.ContentType, buf.Bytes())
}

func (h *Handler) ListMine(c echo.Context) error {
	sess := session(c)
	recs, err := h.svc.ListForPatient(c.Request().Context(), sess.Token, sess.User.ID)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, recs)
}

func (h *Handler) ListForDoctor(c echo.Context) error {
	var f Filter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid filter")
	}
	sess := session(c)
	recs, err := h.svc.ListForDoctor(c.Request().Context(), sess.Token, sess.User.ID, f)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, recs)
}

// -- Patient and doctor actions --

func (h *Handler) BookAppointment(c echo.Context) error {
	var in BookingInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	sess := session(c)
	rec, err := h.svc.Book(c.Request().Context(), sess.Token, sess.User.ID, in)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) CancelAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sess := session(c)
	if err := h.svc.Cancel(c.Request().Context(), sess.Token, sess.User.ID, id); err != nil {
		return apperr.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CompleteAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sess := session(c)
	if err := h.svc.Complete(c.Request().Context(), sess.Token, sess.User.ID, id); err != nil {
		return apperr.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RejectAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.Reject(c.Request().Context(), session(c).Token, id, body.Reason); err != nil {
		return apperr.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Assignment dialog --

func (h *Handler) QuickApprove(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		Confirmed bool `json:"confirmed"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if !body.Confirmed {
		return apperr.HTTPError(ErrConfirmationRequired)
	}
	ctx := c.Request().Context()
	sess := session(c)
	appt, err := h.svc.Get(ctx, sess.Token, id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	rec, err := h.dialogs.QuickApprove(ctx, sess.Token, *appt, body.Confirmed)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) OpenAssignment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	sess := session(c)
	appt, err := h.svc.Get(ctx, sess.Token, id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	flow := h.dialogs.Flow(sess)
	if err := flow.Open(ctx, *appt); err != nil {
		return h.dialogError(c, flow, err)
	}
	return c.JSON(http.StatusOK, flow.View())
}

func (h *Handler) GetAssignment(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dialogs.Flow(session(c)).View())
}

func (h *Handler) SelectDoctor(c echo.Context) error {
	var body struct {
		DoctorID int64 `json:"doctorId"`
	}
	if err := c.Bind(&body); err != nil || body.DoctorID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctorId")
	}
	flow := h.dialogs.Flow(session(c))
	if err := flow.SelectDoctor(c.Request().Context(), body.DoctorID); err != nil {
		return h.dialogError(c, flow, err)
	}
	return c.JSON(http.StatusOK, flow.View())
}

func (h *Handler) SelectSlot(c echo.Context) error {
	var body struct {
		TimeSlot string `json:"timeSlot"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	flow := h.dialogs.Flow(session(c))
	if err := flow.SelectSlot(body.TimeSlot); err != nil {
		return h.dialogError(c, flow, err)
	}
	return c.JSON(http.StatusOK, flow.View())
}

func (h *Handler) ConfirmAssignment(c echo.Context) error {
	flow := h.dialogs.Flow(session(c))
	rec, err := flow.Confirm(c.Request().Context())
	if err != nil {
		return h.dialogError(c, flow, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) CancelAssignment(c echo.Context) error {
	flow := h.dialogs.Flow(session(c))
	if err := flow.Cancel(); err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, flow.View())
}

// dialogError reports a failed dialog step together with the view, so the
// client can keep showing the dialog in its recovered state.
func (h *Handler) dialogError(c echo.Context, flow *Flow, err error) error {
	status, msg := apperr.UserMessage(err)
	return c.JSON(status, map[string]interface{}{
		"message": msg,
		"dialog":  flow.View(),
	})
}
