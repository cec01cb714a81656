package domain

import "errors"

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
	ErrUnknownRole          = errors.New("unknown role")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrUnauthenticated      = errors.New("authentication required")
	ErrForbidden            = errors.New("access forbidden")
	ErrInvalidInput         = errors.New("invalid input")
	ErrStorageCorrupt       = errors.New("stored records are unreadable")
)
