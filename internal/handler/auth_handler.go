package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"paygate/internal/errors"
	"paygate/internal/session"
)

// AuthHandler handles the login and logout entry points.
type AuthHandler struct {
	registry   *session.Registry
	cookieName string
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(registry *session.Registry, cookieName string) *AuthHandler {
	return &AuthHandler{registry: registry, cookieName: cookieName}
}

// LoginRequest represents a portal login request.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginPageResponse is the login entry point's state payload.
type LoginPageResponse struct {
	Authenticated bool   `json:"authenticated"`
	Error         string `json:"error,omitempty"`
}

// LoginPage godoc
// @Summary Login entry point
// @Description Returns login page state. forceLogin=true discards any persisted session first.
// @Tags auth
// @Produce json
// @Param forceLogin query bool false "Discard any persisted session"
// @Success 200 {object} LoginPageResponse
// @Router /login [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	sid := SessionIDFromContext(c)
	mgr := ManagerFromContext(c)

	// The force-fresh flag is honored only here, on the login entry point.
	if c.QueryParam("forceLogin") == "true" {
		mgr = h.registry.Resolve(c.Request().Context(), sid, true)
	}

	return c.JSON(http.StatusOK, LoginPageResponse{
		Authenticated: mgr.State() == session.StateAuthenticated,
		Error:         mgr.LastError(),
	})
}

// Login godoc
// @Summary Authenticate against the upstream payroll API
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 303
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	mgr := ManagerFromContext(c)
	res := mgr.Login(c.Request().Context(), req.Email, req.Password)
	if !res.OK {
		return c.JSON(http.StatusUnauthorized, errors.ErrorResponse{
			Error: res.Message,
			Code:  "LOGIN_FAILED",
		})
	}

	return c.Redirect(http.StatusSeeOther, "/portal/dashboard")
}

// Logout godoc
// @Summary End the session
// @Tags auth
// @Success 303
// @Router /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	mgr := ManagerFromContext(c)
	mgr.Logout(c.Request().Context())

	// Drop the session cookie so "back" cannot resurrect the session ID.
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	return c.Redirect(http.StatusSeeOther, "/login")
}

// Unauthorized godoc
// @Summary Unauthorized landing page
// @Tags auth
// @Produce json
// @Success 403 {object} errors.ErrorResponse
// @Router /unauthorized [get]
func (h *AuthHandler) Unauthorized(c echo.Context) error {
	return c.JSON(http.StatusForbidden, errors.ErrorResponse{
		Error: "your role does not have access to the requested page",
		Code:  "FORBIDDEN",
	})
}
