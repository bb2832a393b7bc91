package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// ThreadRepo provides queries over conversation threads. Deleting a thread
// is the only multi-row mutation in the system and runs inside a single
// repo-owned transaction so the thread and its messages tombstone together.
type ThreadRepo struct {
	db *sql.DB
}

// NewThreadRepo returns a new ThreadRepo bound to the given database.
func NewThreadRepo(db *sql.DB) *ThreadRepo { return &ThreadRepo{db: db} }

// DB exposes the underlying handle.
func (r *ThreadRepo) DB() *sql.DB { return r.db }

// ThreadSearchQuery defines the filter & pagination for the thread listing.
type ThreadSearchQuery struct {
	Search string
	Limit  int
	Offset int
}

// threadSearchWhere builds the WHERE clause for the thread listing. Active
// threads only; when a search term is present it must appear (case
// insensitively) in the listing name, a participant email or any message
// body of the thread. The message sub-filter intentionally scans deleted
// messages too: an operator hunting for redacted content still needs the
// thread to surface.
func threadSearchWhere(search string) (string, []any) {
	cond := "t.deleted_at IS NULL"
	args := []any{}
	if s := strings.TrimSpace(search); s != "" {
		needle := "%" + strings.ToLower(s) + "%"
		cond += ` AND (LOWER(l.name) LIKE ?
		           OR EXISTS (SELECT 1 FROM messages m
		                      JOIN users g ON g.id = m.guest_user_id
		                      JOIN users h ON h.id = m.host_user_id
		                      WHERE m.thread_id = t.id
		                        AND (LOWER(m.message_body) LIKE ?
		                             OR LOWER(g.email) LIKE ?
		                             OR LOWER(h.email) LIKE ?)))`
		args = append(args, needle, needle, needle, needle)
	}
	return cond, args
}

// Search returns one page of threads matching the query together with the
// total match count. Results are ordered by last update, newest first, and
// each item carries its listing and at most one latest active message.
func (r *ThreadRepo) Search(ctx context.Context, q ThreadSearchQuery) ([]ThreadListItem, int64, error) {
	cond, args := threadSearchWhere(q.Search)

	var total int64
	countSQL := `SELECT COUNT(*)
	             FROM threads t
	             JOIN listings l ON l.id = t.listing_id
	             WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := `SELECT t.id, t.listing_id, t.created_at, t.updated_at,
	                   l.id, l.name, l.host_user_id
	            FROM threads t
	            JOIN listings l ON l.id = t.listing_id
	            WHERE ` + cond + `
	            ORDER BY t.updated_at DESC, t.id DESC
	            LIMIT ? OFFSET ?`
	dataArgs := append(append([]any{}, args...), q.Limit, q.Offset)
	rows, err := r.db.QueryContext(ctx, dataSQL, dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]ThreadListItem, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var it ThreadListItem
		var createdAt, updatedAt time.Time
		var lst ListingSummary
		if err := rows.Scan(&it.ID, &it.ListingID, &createdAt, &updatedAt,
			&lst.ID, &lst.Name, &lst.HostUserID); err != nil {
			return nil, 0, err
		}
		it.CreatedAt = isoTime(createdAt)
		it.UpdatedAt = isoTime(updatedAt)
		it.Listing = &lst
		it.Messages = []MessagePreview{}
		index[it.ID] = len(items)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(items) == 0 {
		return items, total, nil
	}

	// Populate the latest active message for all page threads in one query
	ids := make([]any, 0, len(items))
	placeholders := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
		placeholders = append(placeholders, "?")
	}
	msgSQL := `SELECT m.thread_id, m.id, m.originator_user_id, m.message_body, m.split_bot_warning, m.created_at
	           FROM messages m
	           WHERE m.thread_id IN (` + strings.Join(placeholders, ",") + `)
	             AND m.deleted_at IS NULL
	             AND m.id = (SELECT MAX(m2.id) FROM messages m2
	                         WHERE m2.thread_id = m.thread_id AND m2.deleted_at IS NULL)`
	mrows, err := r.db.QueryContext(ctx, msgSQL, ids...)
	if err != nil {
		return nil, 0, err
	}
	defer mrows.Close()
	for mrows.Next() {
		var threadID uint64
		var p MessagePreview
		var warning sql.NullString
		var createdAt time.Time
		if err := mrows.Scan(&threadID, &p.ID, &p.OriginatorUserID, &p.MessageBody, &warning, &createdAt); err != nil {
			return nil, 0, err
		}
		if warning.Valid {
			w := warning.String
			p.SplitBotWarning = &w
		}
		p.CreatedAt = isoTime(createdAt)
		idx, ok := index[threadID]
		if !ok {
			continue
		}
		items[idx].Messages = append(items[idx].Messages, p)
	}
	if err := mrows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetWithListing loads a thread and its listing regardless of deletion
// state; the console shows tombstoned threads when asked for them
// directly. Returns ErrThreadNotFound when the row does not exist.
func (r *ThreadRepo) GetWithListing(ctx context.Context, id uint64) (*ThreadSummary, error) {
	const q = `SELECT t.id, t.listing_id, t.deleted_at, t.created_at, t.updated_at,
	                  l.id, l.name, l.host_user_id
	           FROM threads t
	           JOIN listings l ON l.id = t.listing_id
	           WHERE t.id = ?`
	var thr ThreadSummary
	var deletedAt sql.NullTime
	var createdAt, updatedAt time.Time
	var lst ListingSummary
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&thr.ID, &thr.ListingID, &deletedAt, &createdAt, &updatedAt,
		&lst.ID, &lst.Name, &lst.HostUserID,
	)
	if err == sql.ErrNoRows {
		return nil, ErrThreadNotFound
	}
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		thr.DeletedAt = isoTimePtr(&t)
	}
	thr.CreatedAt = isoTime(createdAt)
	thr.UpdatedAt = isoTime(updatedAt)
	thr.Listing = &lst
	return &thr, nil
}

// SoftDelete tombstones a thread and every message in it atomically: both
// updates run in one transaction and either commit together or not at all.
// Notification and audit work never happens inside this boundary. Returns
// ErrThreadNotFound when the thread does not exist.
func (r *ThreadRepo) SoftDelete(ctx context.Context, threadID uint64) error {
	var exists uint64
	err := r.db.QueryRowContext(ctx, "SELECT id FROM threads WHERE id=? LIMIT 1", threadID).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrThreadNotFound
	}
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx,
		"UPDATE messages SET deleted_at=NOW() WHERE thread_id=?", threadID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE threads SET deleted_at=NOW() WHERE id=?", threadID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
