// Package models - session.go defines the server-persisted Session record
// binding an issued token to a user and the request provenance captured at
// login time.
package models

import "time"

// Session is created at successful login and removed at logout or by the
// background sweeper once expired. ExpiresAt equals the signed token's expiry.
type Session struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Token     string    `db:"token"`
	IP        string    `db:"ip"`
	Device    string    `db:"device"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// Expired reports whether the session's expiry has passed at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
