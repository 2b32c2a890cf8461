package payment

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
	g := api.Group("/payments")
	// The wallet redirects the browser here; the patient may have lost the
	// portal session in between.
	g.GET("/vnpay-return", h.VNPayReturn)

	patient := g.Group("", auth.RequireRole(auth.RolePatient))
	patient.POST("/:appointmentId", h.InitiatePayment)
	patient.GET("/:appointmentId/qr.png", h.GetQRCode)
}

func appointmentID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("appointmentId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	return id, nil
}

func (h *Handler) InitiatePayment(c echo.Context) error {
	id, err := appointmentID(c)
	if err != nil {
		return err
	}
	sess := auth.SessionFromContext(c.Request().Context())
	link, err := h.svc.Initiate(c.Request().Context(), sess.Token, sess.User.ID, id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, link)
}

func (h *Handler) GetQRCode(c echo.Context) error {
	id, err := appointmentID(c)
	if err != nil {
		return err
	}
	link, err := h.svc.Link(auth.UserIDFromContext(c.Request().Context()), id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	size := DefaultQRSize
	if v := c.QueryParam("size"); v != "" {
		if size, err = strconv.Atoi(v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid size")
		}
	}
	png, err := QRCode(link.PaymentURL, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, apperr.MsgInternal).SetInternal(err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.Blob(http.StatusOK, "image/png", png)
}

func (h *Handler) VNPayReturn(c echo.Context) error {
	return c.JSON(http.StatusOK, ReturnStatus(c.QueryParams()))
}
