package ports

import (
	"context"

	"github.com/kp9community/portal/internal/core/domain"
)

// AuthService authenticates users and encodes sessions.
type AuthService interface {
	// Login verifies the credentials and returns a signed session token.
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	// ParseSession decodes a session token back into the identity it was
	// issued for.
	ParseSession(token string) (domain.Identity, error)
}
