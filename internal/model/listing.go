package model

import "time"

// Listing is a rentable property owned by a host.  Listings are created and
// managed by the property-management side of the platform; the console only
// reads them to label threads.
//
// Fields:
//
//	ID         – primary key identifier.
//	Name       – display name of the property.
//	HostUserID – owning host.
//	CreatedAt  – timestamp of creation.
//	UpdatedAt  – timestamp of last update.
type Listing struct {
	ID         uint64    // listings.id
	Name       string    // listings.name
	HostUserID uint64    // listings.host_user_id
	CreatedAt  time.Time // listings.created_at
	UpdatedAt  time.Time // listings.updated_at
}
