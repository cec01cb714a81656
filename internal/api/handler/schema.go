package handler

import (
	"github.com/kp9community/portal/internal/core/domain"
	"github.com/kp9community/portal/internal/core/ports"
)

type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type addUserRequest struct {
	Username string `json:"username" validate:"required,max=64,excludesall=/"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"     validate:"max=128"`
	Role     string `json:"role"     validate:"required,role"`
}

type editUserRequest struct {
	Name     string `json:"name"     validate:"max=128"`
	Role     string `json:"role"     validate:"required,role"`
	Password string `json:"password"`
}

type announcementRequest struct {
	Title   string `json:"title"   validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

// userResponse is the public view of a user; the stored secret never leaves
// the service.
type userResponse struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type identityResponse struct {
	Username   string `json:"username"`
	Role       string `json:"role"`
	Privileged bool   `json:"privileged"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expires_in"`
	User      userResponse `json:"user"`
}

type announcementResponse struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
	Time    string `json:"time"`
}

type logEntryResponse struct {
	Time   string `json:"time"`
	Actor  string `json:"actor"`
	Action string `json:"action"`
	Target string `json:"target"`
}

type deletedResponse struct {
	Deleted int `json:"deleted"`
}

type dashboardResponse struct {
	User               *userResponse          `json:"user,omitempty"`
	Users              []userResponse         `json:"users"`
	Announcements      []announcementResponse `json:"announcements"`
	TotalUsers         int                    `json:"total_users"`
	TotalAnnouncements int                    `json:"total_announcements"`
	RecentLogs         []logEntryResponse     `json:"recent_logs"`
}

type rolesResponse struct {
	Roles      []string `json:"roles"`
	Privileged []string `json:"privileged"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{Username: u.Username, Name: u.Name, Role: u.Role}
}

func toUserResponses(users []domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toAnnouncementResponses(posts []domain.Announcement) []announcementResponse {
	out := make([]announcementResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, announcementResponse(p))
	}
	return out
}

func toLogEntryResponses(entries []domain.LogEntry) []logEntryResponse {
	out := make([]logEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, logEntryResponse(e))
	}
	return out
}

func toDashboardResponse(d *ports.Dashboard) dashboardResponse {
	resp := dashboardResponse{
		Users:              toUserResponses(d.Users),
		Announcements:      toAnnouncementResponses(d.Announcements),
		TotalUsers:         d.TotalUsers,
		TotalAnnouncements: d.TotalAnnouncements,
		RecentLogs:         toLogEntryResponses(d.RecentLogs),
	}
	if d.User != nil {
		u := toUserResponse(*d.User)
		resp.User = &u
	}
	return resp
}
