package dashboard

import (
	"net/http"

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
	api.GET("/dashboard", h.GetDashboard, auth.RequireSession)
}

func (h *Handler) GetDashboard(c echo.Context) error {
	sess := auth.SessionFromContext(c.Request().Context())
	v, err := h.svc.Build(c.Request().Context(), sess)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, v)
}
