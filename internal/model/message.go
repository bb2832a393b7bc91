package model

import "time"

// Message belongs to exactly one thread.  GuestUserID and HostUserID name
// the two conversation participants and are identical across all messages
// of a thread; OriginatorUserID records who actually sent the message:
// the guest, the host, or the Split Bot system user.
//
// Rows are never hard-deleted: DeletedAt is the tombstone and every
// "active" query must filter on it.
//
// Fields:
//
//	ID               – primary key identifier.
//	ThreadID         – owning thread.
//	GuestUserID      – guest participant.
//	HostUserID       – host participant.
//	OriginatorUserID – actual sender.
//	MessageBody      – message text.
//	SplitBotWarning  – set when automated moderation redacted content;
//	                   produced upstream, only displayed here.
//	Forwarded        – whether the message was exported to support.
//	ForwardedAt      – when the export happened (null until forwarded).
//	DeletedAt        – soft-delete marker.
//	CreatedAt        – timestamp of creation.
//	UpdatedAt        – timestamp of last update.
type Message struct {
	ID               uint64     // messages.id
	ThreadID         uint64     // messages.thread_id
	GuestUserID      uint64     // messages.guest_user_id
	HostUserID       uint64     // messages.host_user_id
	OriginatorUserID uint64     // messages.originator_user_id
	MessageBody      string     // messages.message_body
	SplitBotWarning  *string    // messages.split_bot_warning (nullable)
	Forwarded        bool       // messages.forwarded
	ForwardedAt      *time.Time // messages.forwarded_at (nullable)
	DeletedAt        *time.Time // messages.deleted_at (nullable)
	CreatedAt        time.Time  // messages.created_at
	UpdatedAt        time.Time  // messages.updated_at
}
