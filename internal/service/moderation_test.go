package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitlease/message-curation/internal/model"
	"github.com/splitlease/message-curation/internal/repository"
)

// ---- fakes ----

type fakeMessages struct {
	mu           sync.Mutex
	guest, host  model.User
	partErr      error
	detail       repository.MessageDetail
	detailErr    error
	created      []model.Message
	createErr    error
	deleted      []uint64
	deleteErr    error
	forwarded    []uint64
	forwardedErr error
	nextID       uint64
}

func (f *fakeMessages) GetDetail(ctx context.Context, id uint64) (*repository.MessageDetail, error) {
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	d := f.detail
	d.ID = id
	return &d, nil
}

func (f *fakeMessages) FirstActiveParticipants(ctx context.Context, threadID uint64) (model.User, model.User, error) {
	return f.guest, f.host, f.partErr
}

func (f *fakeMessages) Create(ctx context.Context, m *model.Message) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m.ID = f.nextID
	m.CreatedAt = time.Now().UTC()
	f.created = append(f.created, *m)
	return nil
}

func (f *fakeMessages) SoftDelete(ctx context.Context, id uint64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeMessages) MarkForwarded(ctx context.Context, id uint64, at time.Time) error {
	if f.forwardedErr != nil {
		return f.forwardedErr
	}
	f.forwarded = append(f.forwarded, id)
	return nil
}

func (f *fakeMessages) ListActiveByThread(ctx context.Context, threadID uint64) ([]repository.MessageDetail, error) {
	return []repository.MessageDetail{f.detail}, nil
}

type fakeThreads struct {
	searchQ   repository.ThreadSearchQuery
	items     []repository.ThreadListItem
	total     int64
	summary   *repository.ThreadSummary
	deleted   []uint64
	deleteErr error
}

func (f *fakeThreads) Search(ctx context.Context, q repository.ThreadSearchQuery) ([]repository.ThreadListItem, int64, error) {
	f.searchQ = q
	return f.items, f.total, nil
}

func (f *fakeThreads) GetWithListing(ctx context.Context, id uint64) (*repository.ThreadSummary, error) {
	if f.summary == nil {
		return nil, repository.ErrThreadNotFound
	}
	return f.summary, nil
}

func (f *fakeThreads) SoftDelete(ctx context.Context, threadID uint64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, threadID)
	return nil
}

type fakeUsers struct {
	bot    model.User
	botErr error
}

func (f *fakeUsers) GetSplitBot(ctx context.Context) (model.User, error) {
	return f.bot, f.botErr
}

type fakeProposals struct {
	proposal model.Proposal
	getErr   error
	signed   []uint64
	signErr  error
}

func (f *fakeProposals) GetByID(ctx context.Context, id uint64) (model.Proposal, error) {
	return f.proposal, f.getErr
}

func (f *fakeProposals) MarkDocumentsSigned(ctx context.Context, id uint64) error {
	if f.signErr != nil {
		return f.signErr
	}
	f.signed = append(f.signed, id)
	return nil
}

type fakeTemplates struct {
	templates []model.BotTemplate
	byName    map[string]model.BotTemplate
}

func (f *fakeTemplates) List(ctx context.Context) ([]model.BotTemplate, error) {
	return f.templates, nil
}

func (f *fakeTemplates) GetByName(ctx context.Context, name string) (model.BotTemplate, error) {
	if t, ok := f.byName[name]; ok {
		return t, nil
	}
	return model.BotTemplate{}, repository.ErrTemplateNotFound
}

type sentMail struct {
	to, subject, body string
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeEmail) Send(ctx context.Context, to, subject, text, html string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: text})
	return "email-1", nil
}

func (f *fakeEmail) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeSMS struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeSMS) Send(ctx context.Context, to, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentMail{to: to, body: body})
	return "sms-1", nil
}

func (f *fakeSMS) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeAudit struct {
	mu      sync.Mutex
	records []model.AuditLog
	err     error
}

func (f *fakeAudit) Record(ctx context.Context, rec model.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeAudit) byAction(action string) []model.AuditLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AuditLog
	for _, r := range f.records {
		if r.Action == action {
			out = append(out, r)
		}
	}
	return out
}

// ---- fixture ----

type engineFixture struct {
	mod       *Moderation
	messages  *fakeMessages
	threads   *fakeThreads
	users     *fakeUsers
	proposals *fakeProposals
	templates *fakeTemplates
	email     *fakeEmail
	sms       *fakeSMS
	audit     *fakeAudit
}

var (
	guestUser = model.User{ID: 11, FirstName: "Gary", LastName: "Guest", Email: "gary@example.com", Role: model.RoleUser}
	hostUser  = model.User{ID: 12, FirstName: "Harriet", LastName: "Host", Email: "harriet@example.com", Role: model.RoleUser}
	botUser   = model.User{ID: 1, FirstName: "Split", LastName: "Bot", Email: "bot@splitlease.com", IsSplitBot: true}
	admin     = Actor{ID: 99, Role: model.RoleAdmin}
)

func newFixture() *engineFixture {
	f := &engineFixture{
		messages: &fakeMessages{
			guest: guestUser,
			host:  hostUser,
			detail: repository.MessageDetail{
				ThreadID:    7,
				MessageBody: "hello there",
				GuestUser:   repository.SummarizeUser(guestUser),
				HostUser:    repository.SummarizeUser(hostUser),
				Thread: &repository.ThreadSummary{
					ID:      7,
					Listing: &repository.ListingSummary{ID: 3, Name: "Sunny 2BR in Chelsea", HostUserID: hostUser.ID},
				},
			},
		},
		threads:   &fakeThreads{},
		users:     &fakeUsers{bot: botUser},
		proposals: &fakeProposals{proposal: model.Proposal{ID: 5, ThreadID: 7}},
		templates: &fakeTemplates{byName: map[string]model.BotTemplate{}},
		email:     &fakeEmail{},
		sms:       &fakeSMS{},
		audit:     &fakeAudit{},
	}
	f.mod = &Moderation{
		Messages:      f.messages,
		Threads:       f.threads,
		Users:         f.users,
		Proposals:     f.proposals,
		Templates:     f.templates,
		Email:         f.email,
		SMS:           f.sms,
		Audit:         f.audit,
		SupportEmail:  "ops@splitlease.com",
		NotifyTimeout: time.Second,
	}
	return f
}

// ---- tests ----

func TestCanModerate(t *testing.T) {
	assert.True(t, CanModerate(model.RoleAdmin))
	assert.True(t, CanModerate(model.RoleSupportStaff))
	assert.False(t, CanModerate(model.RoleUser))
	assert.False(t, CanModerate(""))
	assert.False(t, CanModerate("admin")) // roles are case sensitive
}

func TestSendAsBotUnauthorizedShortCircuits(t *testing.T) {
	f := newFixture()
	_, err := f.mod.SendAsBot(context.Background(), Actor{ID: 2, Role: model.RoleUser}, SendAsBotInput{ThreadID: 7, MessageBody: "x"})
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, f.messages.created)
	assert.Zero(t, f.email.count())
	assert.Zero(t, f.sms.count())
	assert.Empty(t, f.audit.records)
}

func TestSendAsBotCreatesMessageAndNotifiesGuest(t *testing.T) {
	f := newFixture()
	det, err := f.mod.SendAsBot(context.Background(), admin, SendAsBotInput{
		ThreadID:      7,
		MessageBody:   "please keep communication on the platform",
		RecipientType: "guest",
		TemplateName:  "limit_messages",
	})
	require.NoError(t, err)
	require.NotNil(t, det)

	require.Len(t, f.messages.created, 1)
	created := f.messages.created[0]
	assert.Equal(t, uint64(7), created.ThreadID)
	assert.Equal(t, guestUser.ID, created.GuestUserID)
	assert.Equal(t, hostUser.ID, created.HostUserID)
	assert.Equal(t, botUser.ID, created.OriginatorUserID)

	require.Equal(t, 1, f.email.count())
	assert.Equal(t, guestUser.Email, f.email.sent[0].to)
	require.Equal(t, 1, f.sms.count())
	assert.Equal(t, guestUser.Email, f.sms.sent[0].to)

	recs := f.audit.byAction(model.ActionMessageCreated)
	require.Len(t, recs, 1)
	assert.Equal(t, admin.ID, recs[0].UserID)
	assert.Equal(t, "guest", recs[0].Metadata["recipientType"])
	assert.Equal(t, "limit_messages", recs[0].Metadata["templateName"])
	assert.NotEmpty(t, recs[0].EventID)
}

func TestSendAsBotDefaultsToHostRecipient(t *testing.T) {
	f := newFixture()
	_, err := f.mod.SendAsBot(context.Background(), admin, SendAsBotInput{
		ThreadID: 7, MessageBody: "heads up", RecipientType: "host",
	})
	require.NoError(t, err)
	require.Equal(t, 1, f.email.count())
	assert.Equal(t, hostUser.Email, f.email.sent[0].to)
}

func TestSendAsBotSucceedsWhenNotificationsFail(t *testing.T) {
	f := newFixture()
	f.email.err = errors.New("smtp down")
	f.sms.err = errors.New("twilio down")

	det, err := f.mod.SendAsBot(context.Background(), admin, SendAsBotInput{
		ThreadID: 7, MessageBody: "hi", RecipientType: "guest",
	})
	require.NoError(t, err)
	assert.NotNil(t, det)
	assert.Len(t, f.messages.created, 1)
	assert.Len(t, f.audit.byAction(model.ActionMessageCreated), 1)
}

func TestSendAsBotStopsWhenThreadHasNoActiveMessages(t *testing.T) {
	f := newFixture()
	f.messages.partErr = repository.ErrThreadNotFound
	_, err := f.mod.SendAsBot(context.Background(), admin, SendAsBotInput{ThreadID: 404, MessageBody: "x"})
	require.ErrorIs(t, err, repository.ErrThreadNotFound)
	assert.Empty(t, f.messages.created)
}

func TestForwardMessageDefaultsToSupportMailbox(t *testing.T) {
	f := newFixture()
	err := f.mod.ForwardMessage(context.Background(), admin, 42, "")
	require.NoError(t, err)

	require.Equal(t, 1, f.email.count())
	mail := f.email.sent[0]
	assert.Equal(t, "ops@splitlease.com", mail.to)
	assert.Contains(t, mail.subject, "Sunny 2BR in Chelsea")
	assert.Contains(t, mail.body, "hello there")
	assert.Contains(t, mail.body, guestUser.Email)

	assert.Equal(t, []uint64{42}, f.messages.forwarded)
	recs := f.audit.byAction(model.ActionMessageForwarded)
	require.Len(t, recs, 1)
	assert.Equal(t, "ops@splitlease.com", recs[0].Metadata["recipientEmail"])
}

func TestForwardMessageHonorsExplicitRecipient(t *testing.T) {
	f := newFixture()
	err := f.mod.ForwardMessage(context.Background(), admin, 42, "legal@splitlease.com")
	require.NoError(t, err)
	require.Equal(t, 1, f.email.count())
	assert.Equal(t, "legal@splitlease.com", f.email.sent[0].to)
}

func TestForwardMessageAbortsWithoutMutationOnDeliveryFailure(t *testing.T) {
	f := newFixture()
	f.email.err = errors.New("relay refused")

	err := f.mod.ForwardMessage(context.Background(), admin, 42, "")
	require.ErrorIs(t, err, ErrNotificationFailed)
	assert.Empty(t, f.messages.forwarded)
	assert.Empty(t, f.audit.records)
}

func TestDeleteMessageRecordsAudit(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.mod.DeleteMessage(context.Background(), admin, 13))
	assert.Equal(t, []uint64{13}, f.messages.deleted)

	recs := f.audit.byAction(model.ActionMessageDeleted)
	require.Len(t, recs, 1)
	assert.Equal(t, uint64(13), recs[0].EntityID)
	assert.Equal(t, "Message", recs[0].EntityType)
}

func TestDeleteMessageNotFoundSkipsAudit(t *testing.T) {
	f := newFixture()
	f.messages.deleteErr = repository.ErrMessageNotFound
	err := f.mod.DeleteMessage(context.Background(), admin, 13)
	require.ErrorIs(t, err, repository.ErrMessageNotFound)
	assert.Empty(t, f.audit.records)
}

func TestDeleteThreadRecordsAudit(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.mod.DeleteThread(context.Background(), admin, 7))
	assert.Equal(t, []uint64{7}, f.threads.deleted)

	recs := f.audit.byAction(model.ActionThreadDeleted)
	require.Len(t, recs, 1)
	assert.Equal(t, uint64(7), recs[0].EntityID)
}

func TestDeleteThreadErrorSkipsAudit(t *testing.T) {
	f := newFixture()
	f.threads.deleteErr = repository.ErrThreadNotFound
	err := f.mod.DeleteThread(context.Background(), admin, 7)
	require.ErrorIs(t, err, repository.ErrThreadNotFound)
	assert.Empty(t, f.audit.records)
}

func TestMarkLeaseDocumentsSignedFullFlow(t *testing.T) {
	f := newFixture()
	f.templates.byName[model.TemplateLeaseDocumentsSigned] = model.BotTemplate{
		Name:     model.TemplateLeaseDocumentsSigned,
		Template: "Documents signed. Welcome aboard!",
	}

	res, err := f.mod.MarkLeaseDocumentsSigned(context.Background(), admin, 5)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Proposal.LeaseDocumentsSigned)

	assert.Equal(t, []uint64{5}, f.proposals.signed)
	require.Len(t, f.messages.created, 1)
	assert.Equal(t, "Documents signed. Welcome aboard!", f.messages.created[0].MessageBody)
	assert.Equal(t, botUser.ID, f.messages.created[0].OriginatorUserID)

	// Both participants, both channels.
	assert.Equal(t, 2, f.email.count())
	assert.Equal(t, 2, f.sms.count())
	emailTo := []string{f.email.sent[0].to, f.email.sent[1].to}
	assert.ElementsMatch(t, []string{guestUser.Email, hostUser.Email}, emailTo)

	signed := f.audit.byAction(model.ActionLeaseDocumentsSigned)
	require.Len(t, signed, 1)
	assert.Equal(t, uint64(5), signed[0].EntityID)
	assert.Equal(t, "1", signed[0].Metadata["messageId"])

	created := f.audit.byAction(model.ActionMessageCreated)
	require.Len(t, created, 1)
	assert.Equal(t, "lease-documents-signed", created[0].Metadata["templateName"])
}

func TestMarkLeaseDocumentsSignedFallsBackToBuiltinBody(t *testing.T) {
	f := newFixture()
	_, err := f.mod.MarkLeaseDocumentsSigned(context.Background(), admin, 5)
	require.NoError(t, err)
	require.Len(t, f.messages.created, 1)
	assert.Contains(t, f.messages.created[0].MessageBody, "lease documents have been signed")
}

// Repeating the operation re-stamps the flag, posts another announcement
// and re-sends every notification. The endpoint has no signed-already
// guard; this test pins that behavior.
func TestMarkLeaseDocumentsSignedRepeatNotifies(t *testing.T) {
	f := newFixture()
	_, err := f.mod.MarkLeaseDocumentsSigned(context.Background(), admin, 5)
	require.NoError(t, err)
	_, err = f.mod.MarkLeaseDocumentsSigned(context.Background(), admin, 5)
	require.NoError(t, err)

	assert.Equal(t, []uint64{5, 5}, f.proposals.signed)
	assert.Len(t, f.messages.created, 2)
	assert.Equal(t, 4, f.email.count())
	assert.Equal(t, 4, f.sms.count())
}

// The proposal flag is stamped before the Split Bot lookup, so a missing
// bot account leaves a signed proposal with no announcement.
func TestMarkLeaseDocumentsSignedStampsBeforeBotLookup(t *testing.T) {
	f := newFixture()
	f.users.botErr = repository.ErrSplitBotMissing

	_, err := f.mod.MarkLeaseDocumentsSigned(context.Background(), admin, 5)
	require.ErrorIs(t, err, repository.ErrSplitBotMissing)
	assert.Equal(t, []uint64{5}, f.proposals.signed)
	assert.Empty(t, f.messages.created)
	assert.Zero(t, f.email.count())
}

func TestListThreadsAppliesDefaultPagination(t *testing.T) {
	f := newFixture()
	page, err := f.mod.ListThreads(context.Background(), admin, "", 0, -3)
	require.NoError(t, err)
	assert.Equal(t, 50, f.threads.searchQ.Limit)
	assert.Equal(t, 0, f.threads.searchQ.Offset)
	assert.Equal(t, 50, page.Limit)
	assert.NotNil(t, page.Items)
}

func TestListThreadsPassesSearchThrough(t *testing.T) {
	f := newFixture()
	f.threads.items = []repository.ThreadListItem{{ID: 7}}
	f.threads.total = 123

	page, err := f.mod.ListThreads(context.Background(), admin, "sarah", 10, 20)
	require.NoError(t, err)
	assert.Equal(t, "sarah", f.threads.searchQ.Search)
	assert.Equal(t, int64(123), page.TotalCount)
	assert.Len(t, page.Items, 1)
}

func TestListThreadMessagesToleratesMissingThreadRow(t *testing.T) {
	f := newFixture()
	out, err := f.mod.ListThreadMessages(context.Background(), admin, 7)
	require.NoError(t, err)
	assert.Nil(t, out.Thread)
	assert.Len(t, out.Messages, 1)
}

func TestQueryFacadeRejectsNonCurators(t *testing.T) {
	f := newFixture()
	member := Actor{ID: 3, Role: model.RoleUser}

	_, err := f.mod.GetMessage(context.Background(), member, 1)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.mod.ListThreads(context.Background(), member, "", 0, 0)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.mod.ListThreadMessages(context.Background(), member, 1)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.mod.ListTemplates(context.Background(), member)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuditFailureNeverFailsOperation(t *testing.T) {
	f := newFixture()
	f.audit.err = errors.New("broker and database down")
	require.NoError(t, f.mod.DeleteMessage(context.Background(), admin, 9))
	assert.Equal(t, []uint64{9}, f.messages.deleted)
}

func TestAuditEventIDsAreUnique(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.mod.DeleteMessage(context.Background(), admin, 1))
	require.NoError(t, f.mod.DeleteMessage(context.Background(), admin, 2))
	require.Len(t, f.audit.records, 2)
	assert.NotEqual(t, f.audit.records[0].EventID, f.audit.records[1].EventID)
}
