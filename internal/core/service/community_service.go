package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kp9community/portal/internal/core/domain"
	"github.com/kp9community/portal/internal/core/ports"
)

const dashboardRecentLogs = 5

// CommunityService authorizes each operation, applies it, and records it in
// the audit log.
//
// A mutation and its audit entry are two separate writes. If the audit
// append fails the mutation stays applied and the error is returned.
type CommunityService struct {
	guard *Guard
	users *UserDirectory
	board *AnnouncementBoard
	audit *AuditLog
	log   zerolog.Logger
}

var _ ports.CommunityService = (*CommunityService)(nil)

func NewCommunityService(guard *Guard, users *UserDirectory, board *AnnouncementBoard, audit *AuditLog, log zerolog.Logger) *CommunityService {
	return &CommunityService{guard: guard, users: users, board: board, audit: audit, log: log}
}

func (s *CommunityService) record(ctx context.Context, actor, action, target string) error {
	if _, err := s.audit.Append(ctx, actor, action, target); err != nil {
		s.log.Error().Err(err).
			Str("actor", actor).
			Str("action", action).
			Str("target", target).
			Msg("mutation applied but not audited")
		return fmt.Errorf("record %s: %w", action, err)
	}
	return nil
}

// Dashboard returns the landing view for any authenticated caller.
func (s *CommunityService) Dashboard(ctx context.Context, caller *domain.Identity) (*ports.Dashboard, error) {
	id, err := s.guard.RequireAuthenticated(ctx, caller)
	if err != nil {
		return nil, err
	}

	users := s.users.List(ctx)
	announcements := s.board.List(ctx)

	var current *domain.User
	for i := range users {
		if users[i].Username == id.Username {
			u := users[i]
			current = &u
			break
		}
	}

	return &ports.Dashboard{
		User:               current,
		Users:              users,
		Announcements:      announcements,
		TotalUsers:         len(users),
		TotalAnnouncements: len(announcements),
		RecentLogs:         s.audit.Recent(ctx, dashboardRecentLogs),
	}, nil
}

// GetUser returns a profile. Any authenticated caller may view any profile.
func (s *CommunityService) GetUser(ctx context.Context, caller *domain.Identity, username string) (*domain.User, error) {
	if _, err := s.guard.RequireAuthenticated(ctx, caller); err != nil {
		return nil, err
	}
	return s.users.FindByUsername(ctx, username)
}

func (s *CommunityService) ListUsers(ctx context.Context, caller *domain.Identity) ([]domain.User, error) {
	if _, err := s.guard.RequirePrivileged(ctx, caller); err != nil {
		return nil, err
	}
	return s.users.List(ctx), nil
}

func (s *CommunityService) AddUser(ctx context.Context, caller *domain.Identity, in ports.AddUserInput) (*domain.User, error) {
	id, err := s.guard.RequirePrivileged(ctx, caller)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Add(ctx, domain.User{
		Username: in.Username,
		Password: in.Password,
		Name:     in.Name,
		Role:     in.Role,
	})
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, id.Username, domain.ActionAddUser, u.Username); err != nil {
		return u, err
	}
	return u, nil
}

func (s *CommunityService) EditUser(ctx context.Context, caller *domain.Identity, username string, in ports.EditUserInput) (*domain.User, error) {
	id, err := s.guard.RequirePrivileged(ctx, caller)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Edit(ctx, username, domain.UserUpdate{Name: in.Name, Role: in.Role, Password: in.Password})
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, id.Username, domain.ActionEditUser, username); err != nil {
		return u, err
	}
	return u, nil
}

func (s *CommunityService) DeleteUser(ctx context.Context, caller *domain.Identity, username string) error {
	id, err := s.guard.RequirePrivileged(ctx, caller)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, username); err != nil {
		return err
	}
	return s.record(ctx, id.Username, domain.ActionDeleteUser, username)
}

func (s *CommunityService) ListAnnouncements(ctx context.Context, caller *domain.Identity) ([]domain.Announcement, error) {
	if _, err := s.guard.RequireAuthenticated(ctx, caller); err != nil {
		return nil, err
	}
	return s.board.List(ctx), nil
}

// AddAnnouncement posts an announcement authored by the caller.
func (s *CommunityService) AddAnnouncement(ctx context.Context, caller *domain.Identity, title, content string) (*domain.Announcement, error) {
	id, err := s.guard.RequirePrivileged(ctx, caller)
	if err != nil {
		return nil, err
	}

	a, err := s.board.Add(ctx, title, content, id.Username)
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, id.Username, domain.ActionAddAnnouncement, title); err != nil {
		return a, err
	}
	return a, nil
}

// DeleteAnnouncement removes every announcement titled title. Nothing is
// audited when no announcement matched.
func (s *CommunityService) DeleteAnnouncement(ctx context.Context, caller *domain.Identity, title string) (int, error) {
	id, err := s.guard.RequirePrivileged(ctx, caller)
	if err != nil {
		return 0, err
	}

	n, err := s.board.DeleteByTitle(ctx, title)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	return n, s.record(ctx, id.Username, domain.ActionDeleteAnnouncement, title)
}

func (s *CommunityService) RecentLogs(ctx context.Context, caller *domain.Identity, n int) ([]domain.LogEntry, error) {
	if _, err := s.guard.RequirePrivileged(ctx, caller); err != nil {
		return nil, err
	}
	return s.audit.Recent(ctx, n), nil
}

func (s *CommunityService) AllLogs(ctx context.Context, caller *domain.Identity) ([]domain.LogEntry, error) {
	if _, err := s.guard.RequirePrivileged(ctx, caller); err != nil {
		return nil, err
	}
	return s.audit.All(ctx), nil
}

// Bootstrap creates an SO account when the directory is empty, so a fresh
// deployment has someone who can log in. It reports whether a user was created.
// An unreadable users resource is never overwritten.
func (s *CommunityService) Bootstrap(ctx context.Context, in ports.AddUserInput) (bool, error) {
	if in.Username == "" {
		return false, nil
	}
	if len(s.users.List(ctx)) > 0 {
		return false, nil
	}
	if err := s.users.Check(ctx); err != nil {
		s.log.Error().Err(err).Msg("users resource is unreadable; refusing to bootstrap over it")
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	if in.Password == "" {
		return false, fmt.Errorf("bootstrap admin: %w: password is required", domain.ErrInvalidInput)
	}

	in.Role = domain.RoleSO
	if in.Name == "" {
		in.Name = in.Username
	}
	u, err := s.users.Add(ctx, domain.User{Username: in.Username, Password: in.Password, Name: in.Name, Role: in.Role})
	if err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	if err := s.record(ctx, domain.SystemActor, domain.ActionAddUser, u.Username); err != nil {
		return true, err
	}

	s.log.Info().Str("username", u.Username).Msg("bootstrap admin created")
	return true, nil
}
