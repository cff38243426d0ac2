package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// AuditRepository appends before/after snapshots of board mutations to
// the CRM audit log.
type AuditRepository struct {
	db *DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// RecordJobChange writes one audit row for a job mutation. Snapshots are
// stored as JSONB.
func (r *AuditRepository) RecordJobChange(ctx context.Context, jobID string, before, after map[string]interface{}) error {
	beforeJSON, err := json.Marshal(before)
	if err != nil {
		return err
	}
	afterJSON, err := json.Marshal(after)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO audit_log (id, entity_type, entity_id, before_json, after_json)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.db.ExecContext(ctx, query, uuid.New(), "job", jobID, beforeJSON, afterJSON)
	return err
}
