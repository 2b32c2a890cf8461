package healthtrack

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/apperr"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/health")

	// The calculator is pure and available to every signed-in role.
	g.POST("/bmi", h.Calculate, auth.RequireSession)

	// Patients read their own records; doctors pass ?patient_id=.
	readGroup := g.Group("", auth.RequireRole(auth.RolePatient, auth.RoleDoctor))
	readGroup.GET("/records", h.ListRecords)
	readGroup.GET("/chart", h.GetChart)
	readGroup.GET("/chart.html", h.GetChartHTML)

	writeGroup := g.Group("", auth.RequireRole(auth.RolePatient))
	writeGroup.POST("/records", h.CreateRecord)
}

func (h *Handler) Calculate(c echo.Context) error {
	var in CalculatorInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := Evaluate(in)
	if errors.Is(err, ErrMissingInput) {
		// Nothing entered yet: no feedback rather than an error.
		return c.JSON(http.StatusOK, CalculatorResult{})
	}
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ListRecords(c echo.Context) error {
	sess := auth.SessionFromContext(c.Request().Context())
	patientID, err := targetPatient(c, sess)
	if err != nil {
		return err
	}
	recs, err := h.svc.Records(c.Request().Context(), sess.Token, patientID)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, recs)
}

func (h *Handler) CreateRecord(c echo.Context) error {
	sess := auth.SessionFromContext(c.Request().Context())
	var in NewRecordInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	rec, err := h.svc.AddRecord(c.Request().Context(), sess.Token, sess.User.ID, in)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) GetChart(c echo.Context) error {
	sess := auth.SessionFromContext(c.Request().Context())
	patientID, err := targetPatient(c, sess)
	if err != nil {
		return err
	}
	chart, err := h.svc.Chart(c.Request().Context(), sess.Token, patientID)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, chart)
}

func (h *Handler) GetChartHTML(c echo.Context) error {
	sess := auth.SessionFromContext(c.Request().Context())
	patientID, err := targetPatient(c, sess)
	if err != nil {
		return err
	}
	metric, err := ParseChartMetric(c.QueryParam("metric"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	chart, err := h.svc.Chart(c.Request().Context(), sess.Token, patientID)
	if err != nil {
		return apperr.HTTPError(err)
	}
	var buf bytes.Buffer
	if err := RenderChart(&buf, chart.Points, metric); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, apperr.MsgInternal).SetInternal(err)
	}
	hdr := c.Response().Header()
	hdr.Set("Content-Security-Policy", chartCSP)
	hdr.Set("X-Frame-Options", "SAMEORIGIN")
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// chartCSP lets the rendered page load the echarts bundle and run its
// inline init script, and be framed by the portal itself.
const chartCSP = "default-src 'none'; script-src 'unsafe-inline' https://go-echarts.github.io; " +
	"style-src 'unsafe-inline'; frame-ancestors 'self'"

func targetPatient(c echo.Context, sess *auth.Session) (int64, error) {
	if sess.User.Role == auth.RolePatient {
		return sess.User.ID, nil
	}
	id, err := strconv.ParseInt(c.QueryParam("patient_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	return id, nil
}
