// Package models - user.go defines the User model for orgboard accounts with a
// unique email, display name, and salted password hash.
package models

import "time"

// User represents a registered account. PasswordHash is never serialized; the
// API returns the PublicUser projection instead.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the client-facing projection of a User. It is the only user
// shape that crosses the API boundary.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Public returns the client-facing projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name}
}
