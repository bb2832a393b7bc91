package model

import "time"

// Audit actions recorded by the console.  The enumeration is closed;
// consumers switch on these values.
const (
	ActionMessageCreated       = "MESSAGE_CREATED"
	ActionMessageDeleted       = "MESSAGE_DELETED"
	ActionMessageForwarded     = "MESSAGE_FORWARDED"
	ActionThreadDeleted        = "THREAD_DELETED"
	ActionLeaseDocumentsSigned = "LEASE_DOCUMENTS_SIGNED"
)

// AuditLog is an append-only record of a moderation action.  Rows are
// written once and never read back by the workflow engine.  EventID is a
// client-generated UUID so that the queue consumer can insert the same
// event twice without duplicating rows.
//
// Fields:
//
//	ID         – primary key identifier.
//	EventID    – unique UUID assigned when the event is emitted.
//	UserID     – the admin or support operator who acted.
//	Action     – one of the Action* constants.
//	EntityType – kind of row affected ("Message", "Thread", "Proposal").
//	EntityID   – identifier of the affected row.
//	Metadata   – operation-specific context, stored as JSON.
//	CreatedAt  – timestamp of creation.
type AuditLog struct {
	ID         uint64            // audit_logs.id
	EventID    string            // audit_logs.event_id
	UserID     uint64            // audit_logs.user_id
	Action     string            // audit_logs.action
	EntityType string            // audit_logs.entity_type
	EntityID   uint64            // audit_logs.entity_id
	Metadata   map[string]string // audit_logs.metadata (JSON column)
	CreatedAt  time.Time         // audit_logs.created_at
}
