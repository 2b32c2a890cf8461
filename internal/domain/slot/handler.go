package slot

import (
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
	g := api.Group("/slots", auth.RequireRole(auth.RoleAdmin))
	g.GET("", h.ListSlots)
	g.POST("", h.CreateSlot)
	g.POST("/generate", h.GenerateSlots)
	g.DELETE("/:id", h.DeleteSlot)
}

func token(c echo.Context) string {
	return auth.TokenFromContext(c.Request().Context())
}

func (h *Handler) ListSlots(c echo.Context) error {
	var doctorID int64
	if v := c.QueryParam("doctor_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		doctorID = id
	}
	views, err := h.svc.List(c.Request().Context(), token(c), doctorID, c.QueryParam("date"))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) CreateSlot(c echo.Context) error {
	var in Slot
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	v, err := h.svc.Create(c.Request().Context(), token(c), in)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) GenerateSlots(c echo.Context) error {
	var in GenerateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := h.svc.Generate(c.Request().Context(), token(c), in)
	if err != nil {
		return apperr.HTTPError(err)
	}
	status := http.StatusOK
	if in.Commit && len(res.Created) > 0 {
		status = http.StatusCreated
	}
	return c.JSON(status, res)
}

func (h *Handler) DeleteSlot(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), token(c), id); err != nil {
		return apperr.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
