package service

import "errors"

// Typed outcomes checked at the write boundary. Handlers translate these into
// flash messages or 404 pages; raw storage errors never reach the user.
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already taken")
	ErrDuplicateFollow    = errors.New("already following this user")
	ErrNotOwner           = errors.New("not the owner of this message")
	ErrSelfLike           = errors.New("cannot like your own message")
	ErrEmptyText          = errors.New("message text must not be empty")
	ErrTextTooLong        = errors.New("message text exceeds maximum length")
)
