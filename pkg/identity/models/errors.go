package models

import "errors"

// Common errors for identity operations.
var (
	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateLogin     = errors.New("login name already exists")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email format")

	// Role errors
	ErrRoleNotFound  = errors.New("role not found")
	ErrDuplicateRole = errors.New("role already exists")
	ErrUnknownRole   = errors.New("there is no role with that name")

	// Identity linking errors
	ErrMissingEmail     = errors.New("identity assertion is missing email")
	ErrIdentityConflict = errors.New("email belongs to a password account")
)
