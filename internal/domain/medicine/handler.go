package medicine

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
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/medicines", auth.RequireRole(auth.RoleAdmin))
	g.GET("", h.ListMedicines)
	g.POST("", h.CreateMedicine)
	g.GET("/export.xlsx", h.ExportMedicines)
	g.PUT("/:id", h.UpdateMedicine)
	g.DELETE("/:id", h.DeleteMedicine)
}

func token(c echo.Context) string {
	return auth.TokenFromContext(c.Request().Context())
}

func bindFilter(c echo.Context) (Filter, error) {
	var f Filter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &f); err != nil {
		return f, echo.NewHTTPError(http.StatusBadRequest, "invalid filter")
	}
	return f, nil
}

func (h *Handler) ListMedicines(c echo.Context) error {
	f, err := bindFilter(c)
	if err != nil {
		return err
	}
	items, sum, err := h.svc.List(c.Request().Context(), token(c), f)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"page":    pagination.Page(items, pagination.FromContext(c)),
		"summary": sum,
	})
}

func (h *Handler) CreateMedicine(c echo.Context) error {
	var m Medicine
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	it, err := h.svc.Create(c.Request().Context(), token(c), m)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, it)
}

func (h *Handler) UpdateMedicine(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var m Medicine
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	it, err := h.svc.Update(c.Request().Context(), token(c), id, m)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, it)
}

func (h *Handler) DeleteMedicine(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), token(c), id); err != nil {
		return apperr.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ExportMedicines(c echo.Context) error {
	f, err := bindFilter(c)
	if err != nil {
		return err
	}
	items, _, err := h.svc.List(c.Request().Context(), token(c), f)
	if err != nil {
		return apperr.HTTPError(err)
	}
	var buf bytes.Buffer
	if err := Export(&buf, items); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, apperr.MsgInternal).SetInternal(err)
	}
	name := fmt.Sprintf("thuoc-%s.xlsx", time.Now().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, export.ContentType, buf.Bytes())
}
