package model

import "time"

// Role names stored in the users.role column.  The set is closed; the
// console only grants access to ADMIN and SUPPORT_STAFF.
const (
	RoleAdmin        = "ADMIN"
	RoleSupportStaff = "SUPPORT_STAFF"
	RoleUser         = "USER"
)

// User represents an application user record as stored in the `users`
// table.  Guests and hosts are plain USER rows created by the booking
// platform; console operators carry ADMIN or SUPPORT_STAFF and a password
// hash.  Exactly one row has IsSplitBot set: the system identity used to
// attribute automated moderation messages.
//
// Fields:
//
//	ID              – primary key identifier of the user.
//	FirstName       – given name.
//	LastName        – family name.
//	Email           – unique email address.
//	PasswordHash    – bcrypt hash; empty for users without console access.
//	Role            – ADMIN, SUPPORT_STAFF or USER.
//	IsSplitBot      – true only for the Split Bot system user.
//	ProfilePhotoURL – optional avatar URL.
//	CreatedAt       – timestamp of creation.
//	UpdatedAt       – timestamp of last update.
type User struct {
	ID              uint64    // users.id
	FirstName       string    // users.first_name
	LastName        string    // users.last_name
	Email           string    // users.email
	PasswordHash    string    // users.password_hash (empty when NULL)
	Role            string    // users.role
	IsSplitBot      bool      // users.is_split_bot
	ProfilePhotoURL *string   // users.profile_photo_url (nullable)
	CreatedAt       time.Time // users.created_at
	UpdatedAt       time.Time // users.updated_at
}

// FullName joins first and last name the way outbound emails present
// participants.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA‑256 hash.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – owner of the token.
//	TokenHash – SHA‑256 hex digest of the token value.
//	ExpiresAt – expiration timestamp of the token.
//	RevokedAt – when the token was revoked (null if still active).
//	CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
