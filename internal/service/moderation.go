// Package service implements the moderation workflow engine: the five
// curation operations an admin can trigger, each combining a database
// mutation, zero or more outbound notifications and an audit record.
//
// Storage, notification and audit dependencies are narrow interfaces so the
// engine can be exercised without MySQL or a live provider. The concrete
// implementations live in internal/repository, internal/notify and
// internal/queue.
package service

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/splitlease/message-curation/internal/model"
	"github.com/splitlease/message-curation/internal/notify"
	"github.com/splitlease/message-curation/internal/repository"
)

// ErrUnauthorized is returned when the caller lacks a curator role. It is
// checked before any side effect.
var ErrUnauthorized = errors.New("unauthorized")

// ErrNotificationFailed is returned by ForwardMessage when the outbound
// email could not be delivered. Forwarding treats delivery as load-bearing:
// the message row is left untouched.
var ErrNotificationFailed = errors.New("notification failed")

// leaseSignedBody is the fixed Split Bot message sent when lease documents
// are marked signed. The seeded template carries the same text; the
// constant is the fallback when the template table is unavailable.
const leaseSignedBody = "Great news! Your lease documents have been signed and processed. You can now proceed with your move-in arrangements."

// CanModerate reports whether a role may use the curation console. Pure
// predicate over the closed role enumeration.
func CanModerate(role string) bool {
	return role == model.RoleAdmin || role == model.RoleSupportStaff
}

// Actor identifies the authenticated operator performing an operation.
type Actor struct {
	ID   uint64
	Role string
}

// MessageStore is the message persistence surface the engine needs.
type MessageStore interface {
	GetDetail(ctx context.Context, id uint64) (*repository.MessageDetail, error)
	FirstActiveParticipants(ctx context.Context, threadID uint64) (guest, host model.User, err error)
	Create(ctx context.Context, m *model.Message) error
	SoftDelete(ctx context.Context, id uint64) error
	MarkForwarded(ctx context.Context, id uint64, at time.Time) error
	ListActiveByThread(ctx context.Context, threadID uint64) ([]repository.MessageDetail, error)
}

// ThreadStore is the thread persistence surface the engine needs.
// SoftDelete must be atomic across the thread and all of its messages.
type ThreadStore interface {
	Search(ctx context.Context, q repository.ThreadSearchQuery) ([]repository.ThreadListItem, int64, error)
	GetWithListing(ctx context.Context, id uint64) (*repository.ThreadSummary, error)
	SoftDelete(ctx context.Context, threadID uint64) error
}

// UserStore resolves the Split Bot system identity.
type UserStore interface {
	GetSplitBot(ctx context.Context) (model.User, error)
}

// ProposalStore is the proposal persistence surface the engine needs.
type ProposalStore interface {
	GetByID(ctx context.Context, id uint64) (model.Proposal, error)
	MarkDocumentsSigned(ctx context.Context, id uint64) error
}

// TemplateStore reads the seeded Split Bot templates.
type TemplateStore interface {
	List(ctx context.Context) ([]model.BotTemplate, error)
	GetByName(ctx context.Context, name string) (model.BotTemplate, error)
}

// EmailSender delivers one email and returns the provider message id.
type EmailSender interface {
	Send(ctx context.Context, to, subject, text, html string) (string, error)
}

// SMSSender delivers one SMS and returns the provider message id.
type SMSSender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// AuditRecorder appends one audit record. Implementations must treat the
// write as telemetry: queue or retry internally, but never block the
// caller's mutation on durability.
type AuditRecorder interface {
	Record(ctx context.Context, rec model.AuditLog) error
}

// Moderation is the workflow engine. All fields are required except
// Templates, which only backs the template listing and the lease-signed
// body lookup.
type Moderation struct {
	Messages  MessageStore
	Threads   ThreadStore
	Users     UserStore
	Proposals ProposalStore
	Templates TemplateStore
	Email     EmailSender
	SMS       SMSSender
	Audit     AuditRecorder

	SupportEmail  string        // default forward recipient
	NotifyTimeout time.Duration // per-call bound on outbound notifications
}

// SendAsBotInput carries the parameters of a Split Bot send.
type SendAsBotInput struct {
	ThreadID      uint64
	MessageBody   string
	RecipientType string // "guest" or "host"; anything else addresses the host
	TemplateName  string
}

// SendAsBot posts a Split Bot message into a thread and notifies the
// selected participant over email and SMS. Both channels are dispatched
// concurrently and best-effort: a channel failure is logged but does not
// roll back the created message or fail the operation.
func (s *Moderation) SendAsBot(ctx context.Context, actor Actor, in SendAsBotInput) (*repository.MessageDetail, error) {
	if !CanModerate(actor.Role) {
		return nil, ErrUnauthorized
	}
	guest, host, err := s.Messages.FirstActiveParticipants(ctx, in.ThreadID)
	if err != nil {
		return nil, err
	}
	bot, err := s.Users.GetSplitBot(ctx)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		ThreadID:         in.ThreadID,
		GuestUserID:      guest.ID,
		HostUserID:       host.ID,
		OriginatorUserID: bot.ID,
		MessageBody:      in.MessageBody,
	}
	if err := s.Messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	recipient := host
	if in.RecipientType == "guest" {
		recipient = guest
	}
	s.dispatchBestEffort([]model.User{recipient}, "New message from Split Lease", in.MessageBody)

	s.record(ctx, actor, model.AuditLog{
		Action:     model.ActionMessageCreated,
		EntityType: "Message",
		EntityID:   msg.ID,
		Metadata: map[string]string{
			"recipientType": in.RecipientType,
			"templateName":  in.TemplateName,
		},
	})

	return s.Messages.GetDetail(ctx, msg.ID)
}

// ForwardMessage exports a message to the support mailbox (or an explicit
// recipient). Delivery is load-bearing here: only after the email was
// accepted is the message flagged forwarded. Deleted messages remain
// forwardable on purpose; forwarding is an administrative export, not a
// conversation action.
func (s *Moderation) ForwardMessage(ctx context.Context, actor Actor, messageID uint64, recipientEmail string) error {
	if !CanModerate(actor.Role) {
		return ErrUnauthorized
	}
	det, err := s.Messages.GetDetail(ctx, messageID)
	if err != nil {
		return err
	}
	to := strings.TrimSpace(recipientEmail)
	if to == "" {
		to = s.SupportEmail
	}

	fwd := notify.ForwardedMessage{
		MessageID:   det.ID,
		MessageBody: det.MessageBody,
		GuestName:   det.GuestUser.FirstName + " " + det.GuestUser.LastName,
		GuestEmail:  det.GuestUser.Email,
		HostName:    det.HostUser.FirstName + " " + det.HostUser.LastName,
		HostEmail:   det.HostUser.Email,
		ListingName: det.Thread.Listing.Name,
	}
	subject, text, html := fwd.Email()
	sctx, cancel := context.WithTimeout(ctx, s.notifyTimeout())
	defer cancel()
	if _, err := s.Email.Send(sctx, to, subject, text, html); err != nil {
		log.Printf("moderation: forward email to %s failed: %v", to, err)
		return ErrNotificationFailed
	}

	if err := s.Messages.MarkForwarded(ctx, messageID, time.Now().UTC()); err != nil {
		return err
	}
	s.record(ctx, actor, model.AuditLog{
		Action:     model.ActionMessageForwarded,
		EntityType: "Message",
		EntityID:   messageID,
		Metadata:   map[string]string{"recipientEmail": to},
	})
	return nil
}

// DeleteMessage soft-deletes one message. Re-deleting an already-deleted
// message is idempotent at the data level and is not guarded against.
func (s *Moderation) DeleteMessage(ctx context.Context, actor Actor, messageID uint64) error {
	if !CanModerate(actor.Role) {
		return ErrUnauthorized
	}
	if err := s.Messages.SoftDelete(ctx, messageID); err != nil {
		return err
	}
	s.record(ctx, actor, model.AuditLog{
		Action:     model.ActionMessageDeleted,
		EntityType: "Message",
		EntityID:   messageID,
		Metadata:   map[string]string{"timestamp": time.Now().UTC().Format(time.RFC3339)},
	})
	return nil
}

// DeleteThread soft-deletes a thread and all of its messages in one
// transaction (all-or-nothing, enforced by the store). The audit record is
// appended only after the commit.
func (s *Moderation) DeleteThread(ctx context.Context, actor Actor, threadID uint64) error {
	if !CanModerate(actor.Role) {
		return ErrUnauthorized
	}
	if err := s.Threads.SoftDelete(ctx, threadID); err != nil {
		return err
	}
	s.record(ctx, actor, model.AuditLog{
		Action:     model.ActionThreadDeleted,
		EntityType: "Thread",
		EntityID:   threadID,
		Metadata:   map[string]string{"timestamp": time.Now().UTC().Format(time.RFC3339)},
	})
	return nil
}

// MarkSignedResult is the payload of MarkLeaseDocumentsSigned.
type MarkSignedResult struct {
	Proposal repository.ProposalDetail
	Message  *repository.MessageDetail
}

// MarkLeaseDocumentsSigned flips the proposal flag, posts the fixed Split
// Bot announcement into the thread and notifies both participants over
// both channels (four dispatches, concurrent, best-effort).
//
// The operation is deliberately not idempotent at the notification layer:
// a second call re-stamps the flag, creates another announcement message
// and re-sends all four notifications. The proposal is also updated before
// the Split Bot lookup, so a misconfigured system can mark a proposal
// signed and then fail. Both quirks reproduce the console's established
// behavior; adding a signed-already guard is a known option that has not
// been taken.
func (s *Moderation) MarkLeaseDocumentsSigned(ctx context.Context, actor Actor, proposalID uint64) (*MarkSignedResult, error) {
	if !CanModerate(actor.Role) {
		return nil, ErrUnauthorized
	}
	p, err := s.Proposals.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	guest, host, err := s.Messages.FirstActiveParticipants(ctx, p.ThreadID)
	if err != nil {
		return nil, err
	}
	if err := s.Proposals.MarkDocumentsSigned(ctx, proposalID); err != nil {
		return nil, err
	}
	bot, err := s.Users.GetSplitBot(ctx)
	if err != nil {
		return nil, err
	}

	body := leaseSignedBody
	if s.Templates != nil {
		if t, err := s.Templates.GetByName(ctx, model.TemplateLeaseDocumentsSigned); err == nil {
			body = t.Template
		}
	}

	msg := &model.Message{
		ThreadID:         p.ThreadID,
		GuestUserID:      guest.ID,
		HostUserID:       host.ID,
		OriginatorUserID: bot.ID,
		MessageBody:      body,
	}
	if err := s.Messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.dispatchBestEffort([]model.User{guest, host}, "Lease Documents Signed - Split Lease", body)

	s.record(ctx, actor, model.AuditLog{
		Action:     model.ActionLeaseDocumentsSigned,
		EntityType: "Proposal",
		EntityID:   proposalID,
		Metadata:   map[string]string{"messageId": formatID(msg.ID)},
	})
	s.record(ctx, actor, model.AuditLog{
		Action:     model.ActionMessageCreated,
		EntityType: "Message",
		EntityID:   msg.ID,
		Metadata:   map[string]string{"templateName": "lease-documents-signed"},
	})

	det, err := s.Messages.GetDetail(ctx, msg.ID)
	if err != nil {
		return nil, err
	}
	return &MarkSignedResult{
		Proposal: repository.ProposalDetail{
			ID:                   p.ID,
			ThreadID:             p.ThreadID,
			LeaseDocumentsSigned: true,
			CreatedAt:            p.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:            p.UpdatedAt.UTC().Format(time.RFC3339),
		},
		Message: det,
	}, nil
}

// GetMessage returns one message with its relations.
func (s *Moderation) GetMessage(ctx context.Context, actor Actor, messageID uint64) (*repository.MessageDetail, error) {
	if !CanModerate(actor.Role) {
		return nil, ErrUnauthorized
	}
	return s.Messages.GetDetail(ctx, messageID)
}

// ThreadPage is one page of the thread listing.
type ThreadPage struct {
	Items      []repository.ThreadListItem `json:"items"`
	TotalCount int64                       `json:"totalCount"`
	Limit      int                         `json:"limit"`
	Offset     int                         `json:"offset"`
}

// ListThreads searches active threads. The search term matches listing
// names, participant emails and message bodies, case-insensitively.
func (s *Moderation) ListThreads(ctx context.Context, actor Actor, search string, limit, offset int) (*ThreadPage, error) {
	if !CanModerate(actor.Role) {
		return nil, ErrUnauthorized
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	items, total, err := s.Threads.Search(ctx, repository.ThreadSearchQuery{
		Search: search, Limit: limit, Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	return &ThreadPage{Items: items, TotalCount: total, Limit: limit, Offset: offset}, nil
}

// ThreadMessages is the conversation view: active messages plus the thread
// header. Thread is nil when the thread row no longer exists; the messages
// listing is returned regardless.
type ThreadMessages struct {
	Messages []repository.MessageDetail `json:"messages"`
	Thread   *repository.ThreadSummary  `json:"thread"`
}

// ListThreadMessages returns the active messages of a thread in
// chronological order together with the thread and its listing.
func (s *Moderation) ListThreadMessages(ctx context.Context, actor Actor, threadID uint64) (*ThreadMessages, error) {
	if !CanModerate(actor.Role) {
		return nil, ErrUnauthorized
	}
	msgs, err := s.Messages.ListActiveByThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	thr, err := s.Threads.GetWithListing(ctx, threadID)
	if err != nil && !errors.Is(err, repository.ErrThreadNotFound) {
		return nil, err
	}
	return &ThreadMessages{Messages: msgs, Thread: thr}, nil
}

// ListTemplates returns the seeded Split Bot templates for the console's
// template picker.
func (s *Moderation) ListTemplates(ctx context.Context, actor Actor) ([]model.BotTemplate, error) {
	if !CanModerate(actor.Role) {
		return nil, ErrUnauthorized
	}
	return s.Templates.List(ctx)
}

// dispatchBestEffort fans a notification out to every recipient over both
// channels at once and waits for all dispatches to settle. Failures are
// logged and discarded: persistence has already committed by the time this
// runs, and the console reports success regardless of delivery.
//
// The calls are bounded by NotifyTimeout and detached from the request
// context so an impatient client cannot cancel in-flight sends.
func (s *Moderation) dispatchBestEffort(recipients []model.User, subject, body string) {
	var wg sync.WaitGroup
	for _, u := range recipients {
		// TODO: address SMS to a phone number column once user profiles
		// carry one; until then the SMS sink receives the email identifier.
		to := u.Email
		wg.Add(2)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout())
			defer cancel()
			if _, err := s.Email.Send(ctx, to, subject, body, "<p>"+body+"</p>"); err != nil {
				log.Printf("moderation: email to %s failed: %v", to, err)
			}
		}()
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout())
			defer cancel()
			if _, err := s.SMS.Send(ctx, to, body); err != nil {
				log.Printf("moderation: sms to %s failed: %v", to, err)
			}
		}()
	}
	wg.Wait()
}

// record assigns an event id and hands the record to the audit sink.
// Audit failures are telemetry failures: logged, never propagated.
func (s *Moderation) record(ctx context.Context, actor Actor, rec model.AuditLog) {
	rec.EventID = uuid.NewString()
	rec.UserID = actor.ID
	rec.CreatedAt = time.Now().UTC()
	if err := s.Audit.Record(ctx, rec); err != nil {
		log.Printf("moderation: audit %s on %s %d failed: %v", rec.Action, rec.EntityType, rec.EntityID, err)
	}
}

func (s *Moderation) notifyTimeout() time.Duration {
	if s.NotifyTimeout > 0 {
		return s.NotifyTimeout
	}
	return 10 * time.Second
}

// formatID renders an id for audit metadata.
func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
