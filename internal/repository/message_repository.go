package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/splitlease/message-curation/internal/model"
)

// MessageRepo provides CRUD operations for messages. Messages are never
// hard-deleted; deletion sets the deleted_at tombstone and active read
// paths filter on it. Forwarding and Split Bot sends both create or mutate
// rows here. All timestamp fields are stored in UTC.
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo returns a new MessageRepo bound to the given database.
func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions that
// span repositories.
func (r *MessageRepo) DB() *sql.DB { return r.db }

const userJoinCols = `g.id, g.first_name, g.last_name, g.email, g.role, g.is_split_bot, g.profile_photo_url,
	              h.id, h.first_name, h.last_name, h.email, h.role, h.is_split_bot, h.profile_photo_url,
	              o.id, o.first_name, o.last_name, o.email, o.role, o.is_split_bot, o.profile_photo_url`

// scanParticipants reads three user summaries produced by userJoinCols.
func scanParticipantCols(dest *MessageDetail) ([]any, func()) {
	var gPhoto, hPhoto, oPhoto sql.NullString
	g := &UserSummary{}
	h := &UserSummary{}
	o := &UserSummary{}
	cols := []any{
		&g.ID, &g.FirstName, &g.LastName, &g.Email, &g.Role, &g.IsSplitBot, &gPhoto,
		&h.ID, &h.FirstName, &h.LastName, &h.Email, &h.Role, &h.IsSplitBot, &hPhoto,
		&o.ID, &o.FirstName, &o.LastName, &o.Email, &o.Role, &o.IsSplitBot, &oPhoto,
	}
	assign := func() {
		if gPhoto.Valid {
			p := gPhoto.String
			g.ProfilePhotoURL = &p
		}
		if hPhoto.Valid {
			p := hPhoto.String
			h.ProfilePhotoURL = &p
		}
		if oPhoto.Valid {
			p := oPhoto.String
			o.ProfilePhotoURL = &p
		}
		dest.GuestUser = g
		dest.HostUser = h
		dest.OriginatorUser = o
	}
	return cols, assign
}

// GetDetail loads a message with its guest, host, originator, thread and
// listing. No active-only filter is applied: deleted messages remain
// visible to the console and stay forwardable (forwarding is an
// administrative export action). Returns ErrMessageNotFound when the row
// does not exist.
func (r *MessageRepo) GetDetail(ctx context.Context, id uint64) (*MessageDetail, error) {
	const q = `SELECT m.id, m.thread_id, m.guest_user_id, m.host_user_id, m.originator_user_id,
	                  m.message_body, m.split_bot_warning, m.forwarded, m.forwarded_at,
	                  m.deleted_at, m.created_at, m.updated_at,
	                  ` + userJoinCols + `,
	                  t.id, t.listing_id, t.deleted_at, t.created_at, t.updated_at,
	                  l.id, l.name, l.host_user_id
	           FROM messages m
	           JOIN users g ON g.id = m.guest_user_id
	           JOIN users h ON h.id = m.host_user_id
	           JOIN users o ON o.id = m.originator_user_id
	           JOIN threads t ON t.id = m.thread_id
	           JOIN listings l ON l.id = t.listing_id
	           WHERE m.id = ?`
	var det MessageDetail
	var warning sql.NullString
	var forwardedAt, deletedAt sql.NullTime
	var createdAt, updatedAt time.Time
	userDest, assignUsers := scanParticipantCols(&det)
	var thr ThreadSummary
	var thrDeleted sql.NullTime
	var thrCreated, thrUpdated time.Time
	var lst ListingSummary
	dest := []any{
		&det.ID, &det.ThreadID, &det.GuestUserID, &det.HostUserID, &det.OriginatorUserID,
		&det.MessageBody, &warning, &det.Forwarded, &forwardedAt,
		&deletedAt, &createdAt, &updatedAt,
	}
	dest = append(dest, userDest...)
	dest = append(dest,
		&thr.ID, &thr.ListingID, &thrDeleted, &thrCreated, &thrUpdated,
		&lst.ID, &lst.Name, &lst.HostUserID,
	)
	if err := r.db.QueryRowContext(ctx, q, id).Scan(dest...); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	assignUsers()
	if warning.Valid {
		w := warning.String
		det.SplitBotWarning = &w
	}
	if forwardedAt.Valid {
		t := forwardedAt.Time
		det.ForwardedAt = isoTimePtr(&t)
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		det.DeletedAt = isoTimePtr(&t)
	}
	det.CreatedAt = isoTime(createdAt)
	det.UpdatedAt = isoTime(updatedAt)
	thr.CreatedAt = isoTime(thrCreated)
	thr.UpdatedAt = isoTime(thrUpdated)
	if thrDeleted.Valid {
		t := thrDeleted.Time
		thr.DeletedAt = isoTimePtr(&t)
	}
	thr.Listing = &lst
	det.Thread = &thr
	return &det, nil
}

// FirstActiveParticipants resolves the guest and host of a thread from its
// first non-deleted message. The thread's participants are not stored on
// the thread row; every message of a thread carries the same pair, so the
// earliest active message is authoritative. Returns ErrThreadNotFound when
// the thread is missing or holds no active message.
func (r *MessageRepo) FirstActiveParticipants(ctx context.Context, threadID uint64) (guest, host model.User, err error) {
	const q = `SELECT g.id, g.first_name, g.last_name, g.email, g.role, g.is_split_bot,
	                  h.id, h.first_name, h.last_name, h.email, h.role, h.is_split_bot
	           FROM messages m
	           JOIN users g ON g.id = m.guest_user_id
	           JOIN users h ON h.id = m.host_user_id
	           WHERE m.thread_id = ? AND m.deleted_at IS NULL
	           ORDER BY m.id ASC
	           LIMIT 1`
	err = r.db.QueryRowContext(ctx, q, threadID).Scan(
		&guest.ID, &guest.FirstName, &guest.LastName, &guest.Email, &guest.Role, &guest.IsSplitBot,
		&host.ID, &host.FirstName, &host.LastName, &host.Email, &host.Role, &host.IsSplitBot,
	)
	if err == sql.ErrNoRows {
		err = ErrThreadNotFound
	}
	return guest, host, err
}

// Create inserts a new message row and populates the generated ID and
// timestamps on the provided record.
func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	const q = `INSERT INTO messages (thread_id, guest_user_id, host_user_id, originator_user_id, message_body)
	           VALUES (?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		m.ThreadID, m.GuestUserID, m.HostUserID, m.OriginatorUserID, m.MessageBody)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	// Query back the row to populate timestamps and defaults
	const sel = `SELECT forwarded, created_at, updated_at FROM messages WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, m.ID).Scan(&m.Forwarded, &m.CreatedAt, &m.UpdatedAt)
}

// SoftDelete marks a message deleted. The operation is unconditional: a
// message that is already tombstoned is re-stamped, which is idempotent at
// the data level. Returns ErrMessageNotFound when the row does not exist.
func (r *MessageRepo) SoftDelete(ctx context.Context, id uint64) error {
	var exists uint64
	err := r.db.QueryRowContext(ctx, "SELECT id FROM messages WHERE id=? LIMIT 1", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrMessageNotFound
	}
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, "UPDATE messages SET deleted_at=NOW() WHERE id=?", id)
	return err
}

// MarkForwarded records a successful export to the support mailbox. It is
// only called after the forward email was accepted, so forwarded=true
// always implies a non-null forwarded_at.
func (r *MessageRepo) MarkForwarded(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE messages SET forwarded=1, forwarded_at=? WHERE id=?", at.UTC(), id)
	return err
}

// ListActiveByThread returns the non-deleted messages of a thread in
// chronological order, each with its guest, host and originator users.
func (r *MessageRepo) ListActiveByThread(ctx context.Context, threadID uint64) ([]MessageDetail, error) {
	const q = `SELECT m.id, m.thread_id, m.guest_user_id, m.host_user_id, m.originator_user_id,
	                  m.message_body, m.split_bot_warning, m.forwarded, m.forwarded_at,
	                  m.created_at, m.updated_at,
	                  ` + userJoinCols + `
	           FROM messages m
	           JOIN users g ON g.id = m.guest_user_id
	           JOIN users h ON h.id = m.host_user_id
	           JOIN users o ON o.id = m.originator_user_id
	           WHERE m.thread_id = ? AND m.deleted_at IS NULL
	           ORDER BY m.created_at ASC, m.id ASC`
	rows, err := r.db.QueryContext(ctx, q, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]MessageDetail, 0)
	for rows.Next() {
		var det MessageDetail
		var warning sql.NullString
		var forwardedAt sql.NullTime
		var createdAt, updatedAt time.Time
		userDest, assignUsers := scanParticipantCols(&det)
		dest := []any{
			&det.ID, &det.ThreadID, &det.GuestUserID, &det.HostUserID, &det.OriginatorUserID,
			&det.MessageBody, &warning, &det.Forwarded, &forwardedAt,
			&createdAt, &updatedAt,
		}
		dest = append(dest, userDest...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		assignUsers()
		if warning.Valid {
			w := warning.String
			det.SplitBotWarning = &w
		}
		if forwardedAt.Valid {
			t := forwardedAt.Time
			det.ForwardedAt = isoTimePtr(&t)
		}
		det.CreatedAt = isoTime(createdAt)
		det.UpdatedAt = isoTime(updatedAt)
		out = append(out, det)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
