package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/kp9community/portal/internal/api/middleware"
	"github.com/kp9community/portal/internal/core/domain"
)

// callerFrom returns the identity resolved by the Session middleware. A nil
// result means the request is anonymous; the service layer decides whether
// that is acceptable.
func callerFrom(c echo.Context) *domain.Identity {
	return middleware.Identity(c)
}
