package model

import "time"

// Proposal is a lease proposal attached to a thread.  The console flips
// LeaseDocumentsSigned exactly once per signing; re-triggering the
// operation is a data-level no-op but still re-sends notifications (see
// the moderation service).
//
// Fields:
//
//	ID                   – primary key identifier.
//	ThreadID             – thread the proposal belongs to.
//	LeaseDocumentsSigned – whether the lease paperwork is complete.
//	CreatedAt            – timestamp of creation.
//	UpdatedAt            – timestamp of last update.
type Proposal struct {
	ID                   uint64    // proposals.id
	ThreadID             uint64    // proposals.thread_id
	LeaseDocumentsSigned bool      // proposals.lease_documents_signed
	CreatedAt            time.Time // proposals.created_at
	UpdatedAt            time.Time // proposals.updated_at
}
