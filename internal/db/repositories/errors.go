// Package repositories implements the data access layer (repository pattern)
// for orgboard. Each repository type encapsulates all database queries for a
// domain entity. Handlers never issue SQL directly — all database access goes
// through this layer, which makes query logic testable in isolation.
//
// Not-found lookups return (nil, nil); sentinel errors below cover uniqueness
// conflicts surfaced by the database constraints. Application-level existence
// checks are advisory only: under concurrent writes the unique indexes on
// users.email, organizations.name, and sessions.token are the source of truth,
// and the resulting unique_violation is translated to the matching sentinel so
// check-then-create races still produce the correct domain error.
package repositories

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrDuplicateEmail is returned when a user insert collides with the
	// unique index on users.email.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrDuplicateOrganizationName is returned when an organization insert or
	// rename collides with the unique index on organizations.name.
	ErrDuplicateOrganizationName = errors.New("organization name already exists")

	// ErrNotFound is returned by mutations that target a row that does not
	// exist (update/delete by id).
	ErrNotFound = errors.New("record not found")
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
