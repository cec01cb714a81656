package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kp9community/portal/internal/core/domain"
	"github.com/kp9community/portal/internal/core/ports"
)

// AnnouncementHandler serves the announcement board.
type AnnouncementHandler struct {
	service ports.CommunityService
}

func NewAnnouncementHandler(service ports.CommunityService) *AnnouncementHandler {
	return &AnnouncementHandler{service: service}
}

// List handles GET /v1/announcements.
//
// @Summary      List announcements
// @Tags         announcements
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   announcementResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/announcements [get]
func (h *AnnouncementHandler) List(c echo.Context) error {
	posts, err := h.service.ListAnnouncements(c.Request().Context(), callerFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAnnouncementResponses(posts))
}

// Create handles POST /v1/announcements.
//
// @Summary      Post an announcement
// @Tags         announcements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      announcementRequest  true  "Announcement"
// @Success      201   {object}  announcementResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/announcements [post]
func (h *AnnouncementHandler) Create(c echo.Context) error {
	var req announcementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.service.AddAnnouncement(c.Request().Context(), callerFrom(c), req.Title, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, announcementResponse(*post))
}

// Delete handles DELETE /v1/announcements?title=. Every announcement with
// that exact title is removed.
//
// @Summary      Delete announcements by title
// @Tags         announcements
// @Produce      json
// @Security     BearerAuth
// @Param        title  query     string  true  "Exact title"
// @Success      200    {object}  deletedResponse
// @Failure      400    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /v1/announcements [delete]
func (h *AnnouncementHandler) Delete(c echo.Context) error {
	title := c.QueryParam("title")
	if strings.TrimSpace(title) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	removed, err := h.service.DeleteAnnouncement(c.Request().Context(), callerFrom(c), title)
	if err != nil {
		return err
	}
	if removed == 0 {
		return domain.ErrAnnouncementNotFound
	}
	return c.JSON(http.StatusOK, deletedResponse{Deleted: removed})
}
