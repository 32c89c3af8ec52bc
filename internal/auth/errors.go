package auth

import "errors"

// Errors returned by Service. Handlers map them to HTTP statuses.
var (
	ErrInvalid      = errors.New("invalid request")
	ErrConflict     = errors.New("username or email already exists")
	ErrNotFound     = errors.New("user not found")
	ErrUnauthorized = errors.New("invalid password")
	ErrForbidden    = errors.New("email not verified")
)
