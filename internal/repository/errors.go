// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// moderation service and handlers to distinguish between different failure
// scenarios without inspecting driver errors. Entity lookups that find no
// row return the entity-specific sentinel rather than sql.ErrNoRows so the
// HTTP layer can produce precise 404 messages.
package repository

import "errors"

// ErrThreadNotFound is returned when a thread does not exist or has no
// active message to derive participants from.
var ErrThreadNotFound = errors.New("thread not found")

// ErrMessageNotFound is returned when a message does not exist.
var ErrMessageNotFound = errors.New("message not found")

// ErrProposalNotFound is returned when a proposal does not exist.
var ErrProposalNotFound = errors.New("proposal not found")

// ErrSplitBotMissing is returned when no user row carries the is_split_bot
// flag. This is a seed/config defect, not a user-correctable condition;
// handlers translate it into a 500.
var ErrSplitBotMissing = errors.New("split bot user not found")
