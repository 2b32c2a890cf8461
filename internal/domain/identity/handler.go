package identity

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/apperr"
	"github.com/LePhamHungHa/TLTN-Clinic-sub000/internal/platform/auth"
)

type Handler struct {
	svc          *Service
	cookieSecure bool
}

func NewHandler(svc *Service, cookieSecure bool) *Handler {
	return &Handler{svc: svc, cookieSecure: cookieSecure}
}

// RegisterPublicRoutes mounts the login endpoints, which run before any
// session exists.
func (h *Handler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/login", h.Login)
	g.POST("/social", h.SocialLogin)
	g.POST("/logout", h.Logout)
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireSession)
	g.GET("/me", h.Me)
	g.GET("/navigation", h.GetNavigation)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type socialRequest struct {
	Provider string `json:"provider"`
	Token    string `json:"token"`
}

type sessionResponse struct {
	SessionID  string    `json:"sessionId"`
	User       auth.User `json:"user"`
	RoleLabel  string    `json:"roleLabel"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Navigation []NavLink `json:"navigation"`
}

func newSessionResponse(s *auth.Session) sessionResponse {
	return sessionResponse{
		SessionID:  s.ID.String(),
		User:       s.User,
		RoleLabel:  s.User.Role.Label(),
		ExpiresAt:  s.ExpiresAt,
		Navigation: Navigation(s.User.Role),
	}
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	sess, err := h.svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return apperr.HTTPError(err)
	}
	h.setCookie(c, sess)
	return c.JSON(http.StatusOK, newSessionResponse(sess))
}

func (h *Handler) SocialLogin(c echo.Context) error {
	var req socialRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	sess, err := h.svc.SocialLogin(c.Request().Context(), req.Provider, req.Token)
	if err != nil {
		return apperr.HTTPError(err)
	}
	h.setCookie(c, sess)
	return c.JSON(http.StatusOK, newSessionResponse(sess))
}

// Logout always clears the cookie, even when the session is already gone.
func (h *Handler) Logout(c echo.Context) error {
	if id, ok := auth.SessionIDFromRequest(c.Request()); ok {
		if err := h.svc.Logout(c.Request().Context(), id); err != nil {
			return apperr.HTTPError(err)
		}
	}
	h.clearCookie(c)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Me(c echo.Context) error {
	sess := auth.SessionFromContext(c.Request().Context())
	return c.JSON(http.StatusOK, newSessionResponse(sess))
}

func (h *Handler) GetNavigation(c echo.Context) error {
	return c.JSON(http.StatusOK, Navigation(auth.RoleFromContext(c.Request().Context())))
}

func (h *Handler) setCookie(c echo.Context, s *auth.Session) {
	c.SetCookie(&http.Cookie{
		Name:     auth.CookieName,
		Value:    s.ID.String(),
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
