package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kp9community/portal/internal/core/domain"
)

// PrivilegeChecker is the access guard's privileged check.
type PrivilegeChecker interface {
	RequirePrivileged(ctx context.Context, caller *domain.Identity) (domain.Identity, error)
}

// RequirePrivileged lets the request through only for administrative roles.
// The decision is delegated to the guard so it honours the configured role
// source.
func RequirePrivileged(guard PrivilegeChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			_, err := guard.RequirePrivileged(c.Request().Context(), Identity(c))
			switch {
			case errors.Is(err, domain.ErrUnauthenticated):
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			case err != nil:
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
