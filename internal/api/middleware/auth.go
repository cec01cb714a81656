package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kp9community/portal/internal/core/domain"
)

const (
	// SessionCookie carries the session token for browser clients.
	SessionCookie = "kp9_session"
	// IdentityKey is the echo context key holding the caller's domain.Identity.
	IdentityKey = "identity"
)

// SessionParser decodes a session token into an identity.
type SessionParser interface {
	ParseSession(token string) (domain.Identity, error)
}

// Session resolves the caller from an "Authorization: Bearer" header or the
// session cookie and stores it under IdentityKey. Requests without a usable
// session continue anonymously, so a stale cookie never blocks /auth/login.
func Session(parser SessionParser, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := sessionToken(c)
			if token == "" {
				return next(c)
			}

			id, err := parser.ParseSession(token)
			if err != nil {
				log.Debug().Err(err).Str("path", c.Path()).Msg("ignoring invalid session")
				return next(c)
			}

			c.Set(IdentityKey, id)
			return next(c)
		}
	}
}

// RequireSession rejects anonymous requests with 401.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if Identity(c) == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
			}
			return next(c)
		}
	}
}

// Identity returns the caller stored by Session, or nil.
func Identity(c echo.Context) *domain.Identity {
	id, ok := c.Get(IdentityKey).(domain.Identity)
	if !ok {
		return nil
	}
	return &id
}

func sessionToken(c echo.Context) string {
	if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}
