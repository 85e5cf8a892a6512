package models

import "time"

// AuditEntry represents one audit log row.
type AuditEntry struct {
	ID           int       `json:"id"`
	UserID       int       `json:"userId"`
	Action       string    `json:"action"`       // create, update, delete, publish
	ResourceType string    `json:"resourceType"` // article, category, tag, comment
	ResourceID   int       `json:"resourceId"`
	Details      string    `json:"details,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
