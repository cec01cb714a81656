package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kp9community/portal/internal/core/domain"
	"github.com/kp9community/portal/internal/core/ports"
)

// LogHandler serves the audit log, newest entry first.
type LogHandler struct {
	service ports.CommunityService
}

func NewLogHandler(service ports.CommunityService) *LogHandler {
	return &LogHandler{service: service}
}

// List handles GET /v1/logs. Without limit the whole log is returned.
//
// @Summary      Audit log
// @Tags         logs
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Most recent N entries"
// @Success      200    {array}   logEntryResponse
// @Failure      400    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /v1/logs [get]
func (h *LogHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		entries []domain.LogEntry
		err     error
	)
	if raw := c.QueryParam("limit"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
		entries, err = h.service.RecentLogs(ctx, callerFrom(c), n)
	} else {
		entries, err = h.service.AllLogs(ctx, callerFrom(c))
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLogEntryResponses(entries))
}
