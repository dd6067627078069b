package services

import "errors"

// Errors returned by the auth and task services. Handlers map these onto
// HTTP status codes and user-facing messages.
var (
	ErrMissingFields    = errors.New("all fields are required")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrEmailTaken       = errors.New("email already registered")

	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password, so login failures never reveal which usernames exist.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrEmptyTitle   = errors.New("task title cannot be empty")
	ErrTaskNotFound = errors.New("task not found")
	ErrAccessDenied = errors.New("access denied")
)
