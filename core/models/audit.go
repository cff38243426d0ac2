package models

import "time"

// AuditRecord captures a before/after snapshot of a board mutation.
// Audit writes are fire-and-forget: a failed audit never rolls back the
// scheduling write it describes.
type AuditRecord struct {
	ID         string
	EntityType string // currently always "job"
	EntityID   string
	Before     map[string]interface{}
	After      map[string]interface{}
	CreatedAt  time.Time
}
