package repository

import (
	"time"

	"github.com/splitlease/message-curation/internal/model"
)

// This file defines the response-shaped records assembled by the message and
// thread repositories. The model package mirrors table columns; these types
// mirror what the admin console expects on the wire (camelCase keys, related
// rows embedded, timestamps as RFC3339 strings).

// UserSummary is the participant payload embedded in message and thread
// responses. Password hashes never leave the repository layer.
type UserSummary struct {
	ID              uint64  `json:"id"`
	FirstName       string  `json:"firstName"`
	LastName        string  `json:"lastName"`
	Email           string  `json:"email"`
	Role            string  `json:"role"`
	IsSplitBot      bool    `json:"isSplitBot"`
	ProfilePhotoURL *string `json:"profilePhotoUrl,omitempty"`
}

// ListingSummary labels a thread with its property.
type ListingSummary struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	HostUserID uint64 `json:"hostUserId"`
}

// ThreadSummary is a thread row plus its listing.
type ThreadSummary struct {
	ID        uint64          `json:"id"`
	ListingID uint64          `json:"listingId"`
	DeletedAt *string         `json:"deletedAt,omitempty"`
	CreatedAt string          `json:"createdAt"`
	UpdatedAt string          `json:"updatedAt"`
	Listing   *ListingSummary `json:"listing,omitempty"`
}

// MessagePreview is the trimmed message payload embedded in thread listings.
type MessagePreview struct {
	ID               uint64  `json:"id"`
	OriginatorUserID uint64  `json:"originatorUserId"`
	MessageBody      string  `json:"messageBody"`
	SplitBotWarning  *string `json:"splitBotWarning,omitempty"`
	CreatedAt        string  `json:"createdAt"`
}

// ThreadListItem is one row of the thread search listing: the thread, its
// listing and its most recent active message (at most one element, mirroring
// the console's expectation of a `messages` array).
type ThreadListItem struct {
	ID        uint64           `json:"id"`
	ListingID uint64           `json:"listingId"`
	CreatedAt string           `json:"createdAt"`
	UpdatedAt string           `json:"updatedAt"`
	Listing   *ListingSummary  `json:"listing"`
	Messages  []MessagePreview `json:"messages"`
}

// MessageDetail is a message together with its guest, host and originator
// users and, when loaded through GetDetail, its thread and listing.
type MessageDetail struct {
	ID               uint64         `json:"id"`
	ThreadID         uint64         `json:"threadId"`
	GuestUserID      uint64         `json:"guestUserId"`
	HostUserID       uint64         `json:"hostUserId"`
	OriginatorUserID uint64         `json:"originatorUserId"`
	MessageBody      string         `json:"messageBody"`
	SplitBotWarning  *string        `json:"splitBotWarning,omitempty"`
	Forwarded        bool           `json:"forwarded"`
	ForwardedAt      *string        `json:"forwardedAt,omitempty"`
	DeletedAt        *string        `json:"deletedAt,omitempty"`
	CreatedAt        string         `json:"createdAt"`
	UpdatedAt        string         `json:"updatedAt"`
	GuestUser        *UserSummary   `json:"guestUser,omitempty"`
	HostUser         *UserSummary   `json:"hostUser,omitempty"`
	OriginatorUser   *UserSummary   `json:"originatorUser,omitempty"`
	Thread           *ThreadSummary `json:"thread,omitempty"`
}

// ProposalDetail is the proposal payload returned by the mark-signed
// endpoint.
type ProposalDetail struct {
	ID                   uint64 `json:"id"`
	ThreadID             uint64 `json:"threadId"`
	LeaseDocumentsSigned bool   `json:"leaseDocumentsSigned"`
	CreatedAt            string `json:"createdAt"`
	UpdatedAt            string `json:"updatedAt"`
}

// SummarizeUser converts a model.User into its wire form.
func SummarizeUser(u model.User) *UserSummary {
	return &UserSummary{
		ID:              u.ID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		Role:            u.Role,
		IsSplitBot:      u.IsSplitBot,
		ProfilePhotoURL: u.ProfilePhotoURL,
	}
}

// isoTime formats a timestamp as RFC3339 in UTC.
func isoTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// isoTimePtr formats a nullable timestamp, preserving nil.
func isoTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := isoTime(*t)
	return &s
}
