package model

import "time"

// Names of the seeded Split Bot templates.
const (
	TemplateRedactedContactInfo  = "redacted_contact_info"
	TemplateLimitMessages        = "limit_messages"
	TemplateLeaseDocumentsSigned = "lease_documents_signed"
)

// BotTemplate is a canned Split Bot message body keyed by a unique name.
// The table is seeded once and treated as read-only by the console.
//
// Fields:
//
//	ID          – primary key identifier.
//	Name        – unique template name.
//	Description – operator-facing summary of when to use the template.
//	Template    – the message body sent to participants.
//	Category    – upper-cased grouping used by the console UI.
//	CreatedAt   – timestamp of creation.
type BotTemplate struct {
	ID          uint64    `json:"id"`          // split_bot_templates.id
	Name        string    `json:"name"`        // split_bot_templates.name
	Description string    `json:"description"` // split_bot_templates.description
	Template    string    `json:"template"`    // split_bot_templates.template
	Category    string    `json:"category"`    // split_bot_templates.category
	CreatedAt   time.Time `json:"createdAt"`   // split_bot_templates.created_at
}
