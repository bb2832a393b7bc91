package model

import "time"

// Thread is a guest–host conversation scoped to one listing.  The thread
// row does not store the participants directly: the guest and host are
// derived from the thread's first non-deleted message, and every message in
// a thread carries the same guest/host pair.
//
// Fields:
//
//	ID        – primary key identifier.
//	ListingID – listing the conversation is about.
//	DeletedAt – soft-delete marker (null while the thread is active).
//	CreatedAt – timestamp of creation.
//	UpdatedAt – timestamp of last update.
type Thread struct {
	ID        uint64     // threads.id
	ListingID uint64     // threads.listing_id
	DeletedAt *time.Time // threads.deleted_at (nullable)
	CreatedAt time.Time  // threads.created_at
	UpdatedAt time.Time  // threads.updated_at
}
