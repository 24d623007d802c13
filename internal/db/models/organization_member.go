// Package models - organization_member.go defines the user-to-organization
// membership relation persisted when a default organization is provisioned.
package models

import "time"

// RoleOwner is the membership role registration assigns the new user on
// their default organization.
const RoleOwner = "owner"

// OrganizationMember links a user to an organization with a role.
type OrganizationMember struct {
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}
