package queue

import (
	"context"
	"log"
	"time"

	"github.com/splitlease/message-curation/internal/model"
	"github.com/splitlease/message-curation/internal/repository"
)

// Recorder is the audit sink the workflow engine writes to. Records go to
// the broker first so a database stall never blocks a request; when the
// broker is unreachable the record is inserted directly instead. Either
// path is keyed on the event UUID, so a record that travels both (publish
// succeeded but the caller retried) lands exactly once.
type Recorder struct {
	Audits *repository.AuditRepo

	// Disabled skips the broker entirely and writes straight to the
	// database. Set when the deployment runs without RabbitMQ.
	Disabled bool
}

// NewRecorder returns a Recorder backed by the given audit store.
func NewRecorder(audits *repository.AuditRepo) *Recorder {
	return &Recorder{Audits: audits}
}

// Record enqueues one audit record, falling back to a direct insert when
// publishing fails.
func (r *Recorder) Record(ctx context.Context, rec model.AuditLog) error {
	if !r.Disabled {
		ev := AuditRecordedEvent{
			EventID:    rec.EventID,
			UserID:     rec.UserID,
			Action:     rec.Action,
			EntityType: rec.EntityType,
			EntityID:   rec.EntityID,
			Metadata:   rec.Metadata,
			RecordedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := PublishAuditRecorded(ctx, ev); err == nil {
			return nil
		}
		log.Printf("audit: publish failed for %s, writing directly", rec.EventID)
	}
	return r.Audits.Insert(ctx, rec)
}
