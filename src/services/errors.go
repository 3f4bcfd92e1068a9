package services

import "errors"

// Sentinel errors for explicit error handling. Handlers map these onto HTTP
// statuses with errors.Is instead of string matching.

var (
	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey indicates a unique key already exists
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrValidation indicates the request payload failed validation
	ErrValidation = errors.New("validation failed")

	// ErrBulkFailed indicates at least one item of a bulk mutation failed and
	// the whole batch was rolled back
	ErrBulkFailed = errors.New("bulk update failed")

	// ErrInvalidCredentials indicates authentication failed
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidTransition indicates a disallowed status change
	ErrInvalidTransition = errors.New("invalid status transition")
)
