// Package models - organization.go defines the Organization model representing
// a tenant in the dashboard with a globally unique name and optional domain.
package models

import "time"

// Organization represents an organization/tenant. Name is unique across all
// organizations (case-sensitive exact match); Domain is nullable.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    *string   `json:"domain"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
