// Package queue defines the audit payload exchanged over the message broker
// plus the publisher and background consumer that move it. Every curation
// mutation emits one AuditRecordedEvent; the consumer persists it and keeps
// a flat log file for operators who do not want to query the database.
package queue

// AuditRecordedEvent is published after a curation mutation committed. It
// carries enough for the consumer to write the audit row without querying
// the primary database. EventID is a UUID and the idempotency key: a
// redelivered event inserts at most one row.
type AuditRecordedEvent struct {
	EventID    string            `json:"event_id"`
	UserID     uint64            `json:"user_id"`
	Action     string            `json:"action"`
	EntityType string            `json:"entity_type"`
	EntityID   uint64            `json:"entity_id"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	RecordedAt string            `json:"recorded_at"`
}
