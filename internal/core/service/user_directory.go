package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kp9community/portal/internal/core/domain"
	"github.com/kp9community/portal/internal/core/ports"
)

// UserDirectory owns the users resource. Usernames are unique.
type UserDirectory struct {
	store       ports.RecordStore[domain.User]
	hasher      ports.CredentialHasher
	strictRoles bool
	log         zerolog.Logger
}

// NewUserDirectory returns a directory backed by store. With strictRoles set,
// Add and Edit reject roles outside the closed role set.
func NewUserDirectory(store ports.RecordStore[domain.User], hasher ports.CredentialHasher, strictRoles bool, log zerolog.Logger) *UserDirectory {
	if hasher == nil {
		hasher = PlaintextHasher{}
	}
	return &UserDirectory{store: store, hasher: hasher, strictRoles: strictRoles, log: log}
}

// Authenticate returns the user whose username matches and whose stored
// secret verifies against password.
//
// There is no rate limiting or lockout.
func (d *UserDirectory) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	for _, u := range d.store.Load(ctx) {
		if u.Username == username && d.hasher.Verify(u.Password, password) {
			return &u, nil
		}
	}
	return nil, domain.ErrInvalidCredentials
}

func (d *UserDirectory) checkRole(role string) error {
	if d.strictRoles && !domain.IsKnownRole(role) {
		return fmt.Errorf("%w: %q", domain.ErrUnknownRole, role)
	}
	return nil
}

// Add registers user. The username is trimmed; a duplicate leaves the
// directory untouched and returns ErrUserExists.
func (d *UserDirectory) Add(ctx context.Context, user domain.User) (*domain.User, error) {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	if err := d.checkRole(user.Role); err != nil {
		return nil, err
	}

	secret, err := d.hasher.Hash(user.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.Password = secret

	err = d.store.Update(ctx, func(users []domain.User) ([]domain.User, error) {
		for _, u := range users {
			if u.Username == user.Username {
				return nil, domain.ErrUserExists
			}
		}
		return append(users, user), nil
	})
	if err != nil {
		return nil, err
	}

	d.log.Info().Str("username", user.Username).Str("role", user.Role).Msg("user added")
	return &user, nil
}

// Edit replaces name and role of username, and its password when
// update.Password is non-empty.
func (d *UserDirectory) Edit(ctx context.Context, username string, update domain.UserUpdate) (*domain.User, error) {
	if err := d.checkRole(update.Role); err != nil {
		return nil, err
	}

	secret := ""
	if update.Password != "" {
		var err error
		if secret, err = d.hasher.Hash(update.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	var edited *domain.User
	err := d.store.Update(ctx, func(users []domain.User) ([]domain.User, error) {
		edited = nil
		for i := range users {
			if users[i].Username != username {
				continue
			}
			users[i].Name = update.Name
			users[i].Role = update.Role
			if secret != "" {
				users[i].Password = secret
			}
			if edited == nil {
				u := users[i]
				edited = &u
			}
		}
		if edited == nil {
			return nil, domain.ErrUserNotFound
		}
		return users, nil
	})
	if err != nil {
		return nil, err
	}

	d.log.Info().Str("username", username).Str("role", update.Role).Bool("password_changed", secret != "").Msg("user edited")
	return edited, nil
}

// Delete removes every record with username.
func (d *UserDirectory) Delete(ctx context.Context, username string) error {
	err := d.store.Update(ctx, func(users []domain.User) ([]domain.User, error) {
		kept := users[:0]
		for _, u := range users {
			if u.Username != username {
				kept = append(kept, u)
			}
		}
		if len(kept) == len(users) {
			return nil, domain.ErrUserNotFound
		}
		return kept, nil
	})
	if err != nil {
		return err
	}

	d.log.Info().Str("username", username).Msg("user deleted")
	return nil
}

// FindByUsername returns the user with username or ErrUserNotFound.
func (d *UserDirectory) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range d.store.Load(ctx) {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// List returns all users in insertion order.
func (d *UserDirectory) List(ctx context.Context) []domain.User {
	return d.store.Load(ctx)
}

// Check reports whether the users resource is readable. Stores that cannot
// tell corrupt from empty always pass.
func (d *UserDirectory) Check(ctx context.Context) error {
	if c, ok := d.store.(ports.RecordChecker); ok {
		return c.Check(ctx)
	}
	return nil
}
