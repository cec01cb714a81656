package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kp9community/portal/internal/core/domain"
	"github.com/kp9community/portal/internal/pkg/metrics"
)

const (
	// RoleSourceSession trusts the role captured at login. A role change
	// takes effect on the user's next login.
	RoleSourceSession = "session"
	// RoleSourceLive re-reads the role from the directory on every check and
	// rejects sessions whose user no longer exists.
	RoleSourceLive = "live"
)

// UserFinder looks up the current directory record for a username.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Guard decides whether a caller may proceed.
type Guard struct {
	users UserFinder // nil unless roles are read live
	log   zerolog.Logger
}

// NewGuard returns a Guard for roleSource. users is only consulted when
// roleSource is RoleSourceLive.
func NewGuard(roleSource string, users UserFinder, log zerolog.Logger) *Guard {
	g := &Guard{log: log}
	if strings.EqualFold(roleSource, RoleSourceLive) {
		g.users = users
	}
	return g
}

// RequireAuthenticated returns the caller's effective identity, or
// ErrUnauthenticated when there is no session.
func (g *Guard) RequireAuthenticated(ctx context.Context, caller *domain.Identity) (domain.Identity, error) {
	if caller == nil || caller.Username == "" {
		metrics.AccessDeniedTotal.WithLabelValues("unauthenticated").Inc()
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	id := *caller
	if g.users == nil {
		return id, nil
	}

	u, err := g.users.FindByUsername(ctx, id.Username)
	if err != nil {
		metrics.AccessDeniedTotal.WithLabelValues("unauthenticated").Inc()
		g.log.Info().Str("username", id.Username).Msg("session refers to a user that no longer exists")
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	id.Role = u.Role
	return id, nil
}

// RequirePrivileged is RequireAuthenticated plus an administrative role check.
func (g *Guard) RequirePrivileged(ctx context.Context, caller *domain.Identity) (domain.Identity, error) {
	id, err := g.RequireAuthenticated(ctx, caller)
	if err != nil {
		return domain.Identity{}, err
	}
	if !id.Privileged() {
		metrics.AccessDeniedTotal.WithLabelValues("forbidden").Inc()
		g.log.Debug().Str("username", id.Username).Str("role", id.Role).Msg("privileged operation denied")
		return domain.Identity{}, domain.ErrForbidden
	}
	return id, nil
}
