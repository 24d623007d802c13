// Package services implements the business workflows behind the HTTP API:
// registration, login, logout, and organization management. Services own the
// transactional and uniqueness semantics; handlers translate the sentinel
// errors below into response envelopes.
package services

import "errors"

var (
	// ErrDuplicateEmail indicates a registration against an email that is
	// already registered.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials covers every login failure. Missing user and
	// wrong password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateOrganizationName indicates an organization create or rename
	// against a name that is already taken.
	ErrDuplicateOrganizationName = errors.New("organization name already exists")

	// ErrOrganizationNotFound indicates a lookup or mutation against an
	// organization id with no matching row.
	ErrOrganizationNotFound = errors.New("organization not found")
)
