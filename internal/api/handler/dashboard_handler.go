package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kp9community/portal/internal/core/ports"
)

type DashboardHandler struct {
	service ports.CommunityService
}

func NewDashboardHandler(service ports.CommunityService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Get handles GET /v1/dashboard.
//
// @Summary      Dashboard
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/dashboard [get]
func (h *DashboardHandler) Get(c echo.Context) error {
	d, err := h.service.Dashboard(c.Request().Context(), callerFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDashboardResponse(d))
}
