package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/splitlease/message-curation/internal/model"
)

// AuditRepo appends audit records. The table is write-only from the
// application's point of view: nothing in the workflow engine reads it
// back. Inserts key on the event UUID so the queue consumer can replay a
// delivery without duplicating rows.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo returns a new AuditRepo bound to the given database.
func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

// Insert appends one audit row. Re-inserting an event_id that already
// exists is a no-op (INSERT IGNORE on the unique key).
func (r *AuditRepo) Insert(ctx context.Context, rec model.AuditLog) error {
	meta := rec.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT IGNORE INTO audit_logs (event_id, user_id, action, entity_type, entity_id, metadata)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.EventID, rec.UserID, rec.Action, rec.EntityType, rec.EntityID, metaJSON)
	return err
}

// CountByEvent reports whether an event id has already been recorded. Used
// by tests and operational tooling; the hot path relies on INSERT IGNORE.
func (r *AuditRepo) CountByEvent(ctx context.Context, eventID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM audit_logs WHERE event_id=?", eventID).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return n, err
}
