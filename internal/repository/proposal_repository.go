package repository

import (
	"context"
	"database/sql"

	"github.com/splitlease/message-curation/internal/model"
)

// ProposalRepo provides access to lease proposals.
type ProposalRepo struct {
	db *sql.DB
}

// NewProposalRepo returns a new ProposalRepo bound to the given database.
func NewProposalRepo(db *sql.DB) *ProposalRepo { return &ProposalRepo{db: db} }

// GetByID loads a proposal. Returns ErrProposalNotFound when absent.
func (r *ProposalRepo) GetByID(ctx context.Context, id uint64) (model.Proposal, error) {
	const q = `SELECT id, thread_id, lease_documents_signed, created_at, updated_at
	           FROM proposals WHERE id = ?`
	var p model.Proposal
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.ThreadID, &p.LeaseDocumentsSigned, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Proposal{}, ErrProposalNotFound
	}
	return p, err
}

// MarkDocumentsSigned sets lease_documents_signed. Setting it on an
// already-signed proposal re-stamps the same value; the flag only ever
// moves from false to true.
func (r *ProposalRepo) MarkDocumentsSigned(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE proposals SET lease_documents_signed=1 WHERE id=?", id)
	return err
}
