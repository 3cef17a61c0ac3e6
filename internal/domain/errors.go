// Package domain holds the error taxonomy shared by every storefront
// component. Services wrap these sentinels with fmt.Errorf("%w: ...") and the
// HTTP layer maps them to status codes exactly once, with errors.Is.
package domain

import "errors"

var (
	// ErrUnauthenticated means no caller identity could be resolved.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidArgument means a required field is missing or malformed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPermissionDenied means the resource exists but the caller does not
	// own it (or lacks the admin role).
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound means the resource is absent for this owner.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a store uniqueness constraint was violated.
	ErrConflict = errors.New("conflict")
)
