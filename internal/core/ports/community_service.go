package ports

import (
	"context"

	"github.com/kp9community/portal/internal/core/domain"
)

// AddUserInput is the data needed to register a user.
type AddUserInput struct {
	Username string
	Password string
	Name     string
	Role     string
}

// EditUserInput carries a user's new profile. Empty Password keeps the old one.
type EditUserInput struct {
	Name     string
	Role     string
	Password string
}

// Dashboard is the landing view for an authenticated user.
type Dashboard struct {
	User               *domain.User
	Users              []domain.User
	Announcements      []domain.Announcement
	TotalUsers         int
	TotalAnnouncements int
	RecentLogs         []domain.LogEntry
}

// CommunityService authorizes, performs and audits every portal operation.
// The identity argument is the caller resolved from the session; nil means
// no session.
type CommunityService interface {
	Dashboard(ctx context.Context, caller *domain.Identity) (*Dashboard, error)
	GetUser(ctx context.Context, caller *domain.Identity, username string) (*domain.User, error)
	ListUsers(ctx context.Context, caller *domain.Identity) ([]domain.User, error)
	AddUser(ctx context.Context, caller *domain.Identity, in AddUserInput) (*domain.User, error)
	EditUser(ctx context.Context, caller *domain.Identity, username string, in EditUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, caller *domain.Identity, username string) error
	ListAnnouncements(ctx context.Context, caller *domain.Identity) ([]domain.Announcement, error)
	AddAnnouncement(ctx context.Context, caller *domain.Identity, title, content string) (*domain.Announcement, error)
	DeleteAnnouncement(ctx context.Context, caller *domain.Identity, title string) (int, error)
	RecentLogs(ctx context.Context, caller *domain.Identity, n int) ([]domain.LogEntry, error)
	AllLogs(ctx context.Context, caller *domain.Identity) ([]domain.LogEntry, error)
}
