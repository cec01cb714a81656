package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kp9community/portal/internal/api/middleware"
	"github.com/kp9community/portal/internal/core/domain"
	"github.com/kp9community/portal/internal/core/ports"
)

// SessionResolver turns a session identity into the caller's effective
// identity under the configured role source.
type SessionResolver interface {
	RequireAuthenticated(ctx context.Context, caller *domain.Identity) (domain.Identity, error)
}

// CookieOptions controls the session cookie issued on login.
type CookieOptions struct {
	Secure bool
	TTL    time.Duration
}

type AuthHandler struct {
	authService ports.AuthService
	sessions    SessionResolver
	cookie      CookieOptions
}

func NewAuthHandler(authService ports.AuthService, sessions SessionResolver, cookie CookieOptions) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, cookie: cookie}
}

// Login authenticates a member, sets the session cookie and returns the
// session token for API clients.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(h.sessionCookie(token, int(h.cookie.TTL.Seconds())))
	return c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		ExpiresIn: int64(h.cookie.TTL.Seconds()),
		User:      toUserResponse(*user),
	})
}

// Logout clears the session cookie. Bearer tokens stay valid until they
// expire.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.sessionCookie("", -1))
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's effective identity. With a live role source the
// role comes from the directory, not from the token.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  identityResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := h.sessions.RequireAuthenticated(c.Request().Context(), callerFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identityResponse{
		Username:   id.Username,
		Role:       id.Role,
		Privileged: id.Privileged(),
	})
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
