package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/splitlease/message-curation/internal/model"
)

// ErrTemplateNotFound is returned when a named template is not seeded.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateRepo reads the seeded Split Bot templates. The table is a
// read-only lookup; the console never writes to it.
type TemplateRepo struct {
	db *sql.DB
}

// NewTemplateRepo returns a new TemplateRepo bound to the given database.
func NewTemplateRepo(db *sql.DB) *TemplateRepo { return &TemplateRepo{db: db} }

const templateCols = "id, name, description, template, category, created_at"

// List returns all templates ordered by name.
func (r *TemplateRepo) List(ctx context.Context) ([]model.BotTemplate, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+templateCols+" FROM split_bot_templates ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BotTemplate, 0)
	for rows.Next() {
		var t model.BotTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Template, &t.Category, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByName returns the template with the given unique name.
func (r *TemplateRepo) GetByName(ctx context.Context, name string) (model.BotTemplate, error) {
	var t model.BotTemplate
	err := r.db.QueryRowContext(ctx,
		"SELECT "+templateCols+" FROM split_bot_templates WHERE name=? LIMIT 1",
		name).Scan(&t.ID, &t.Name, &t.Description, &t.Template, &t.Category, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return model.BotTemplate{}, ErrTemplateNotFound
	}
	return t, err
}
