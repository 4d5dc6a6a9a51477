package shared

import "errors"

var (
	// ErrValidation indicates malformed input such as an empty role name.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates an attempt to mutate a protected record or a
	// caller lacking a required permission.
	ErrForbidden = errors.New("forbidden")
	// ErrUnknownPermission indicates a permission id absent from the catalog.
	ErrUnknownPermission = errors.New("unknown permission")
	// ErrDuplicate indicates a unique constraint conflict.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrUnauthorized indicates a missing or expired session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
