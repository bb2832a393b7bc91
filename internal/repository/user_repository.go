package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/splitlease/message-curation/internal/model"
)

// UserRepo provides read access to the users table. Accounts are seeded or
// created by the booking platform; the console never creates users, it only
// authenticates operators and resolves message participants.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id, first_name, last_name, email, COALESCE(password_hash,''), role, is_split_bot, profile_photo_url, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	var photo sql.NullString
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&u.Role, &u.IsSplitBot, &photo, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if photo.Valid {
		p := photo.String
		u.ProfilePhotoURL = &p
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// GetSplitBot returns the single system user flagged is_split_bot. Exactly
// one such row is expected to exist; when it is absent the database was not
// seeded and ErrSplitBotMissing is returned.
func (r *UserRepo) GetSplitBot(ctx context.Context) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE is_split_bot=1 LIMIT 1"))
	if err == sql.ErrNoRows {
		return model.User{}, ErrSplitBotMissing
	}
	return u, err
}
