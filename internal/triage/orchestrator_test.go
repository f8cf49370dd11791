package triage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
	"github.com/spec-kit/smart-helpdesk/internal/observability"
	"github.com/spec-kit/smart-helpdesk/internal/repository"
)

type triageFixture struct {
	tickets     *repository.MemoryTicketRepository
	suggestions repository.SuggestionRepository
	replies     *repository.MemoryReplyRepository
	audit       *repository.MemoryAuditRepository
	policy      *repository.MemoryAgentConfigRepository
	index       *ArticleIndex
	locks       *KeyedMutex
}

func newFixture() *triageFixture {
	return &triageFixture{
		tickets:     repository.NewMemoryTicketRepository(),
		suggestions: repository.NewMemorySuggestionRepository(),
		replies:     repository.NewMemoryReplyRepository(),
		audit:       repository.NewMemoryAuditRepository(),
		policy:      repository.NewMemoryAgentConfigRepository(),
		index:       NewArticleIndex(),
		locks:       NewKeyedMutex(),
	}
}

func (f *triageFixture) orchestrator() *Orchestrator {
	return NewOrchestrator(Dependencies{
		TicketRepo:     f.tickets,
		SuggestionRepo: f.suggestions,
		ReplyRepo:      f.replies,
		AuditRepo:      f.audit,
		PolicyRepo:     f.policy,
		Index:          f.index,
		Locks:          f.locks,
	})
}

func (f *triageFixture) setPolicy(t *testing.T, enabled bool, threshold float64) {
	t.Helper()
	cfg := domain.DefaultAgentConfig()
	cfg.AutoCloseEnabled = enabled
	cfg.ConfidenceThreshold = threshold
	require.NoError(t, f.policy.Update(context.Background(), &cfg))
}

func (f *triageFixture) createTicket(t *testing.T, title, description string) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		RequesterID: "user-1",
		Title:       title,
		Description: description,
		Category:    domain.CategoryOther,
		Status:      domain.TicketStatusOpen,
	}
	require.NoError(t, f.tickets.Create(context.Background(), ticket))
	return ticket
}

func (f *triageFixture) addBillingArticle(t *testing.T) {
	t.Helper()
	f.index.Upsert(domain.KBArticle{
		ID:     "kb-billing-1",
		Title:  "Requesting a refund for a duplicate charge",
		Body:   "How to get a refund when an invoice shows a double charge.",
		Tags:   []string{"billing"},
		Status: domain.ArticleStatusPublished,
	})
}

func auditActions(entries []domain.AuditEntry) []domain.AuditAction {
	actions := make([]domain.AuditAction, 0, len(entries))
	for _, entry := range entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

func TestRunAutoClosesHighConfidenceTicket(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.setPolicy(t, true, 0.4)
	f.addBillingArticle(t)
	ticket := f.createTicket(t, "Double charge", "My invoice shows a double charge, please refund")

	result, err := f.orchestrator().Run(ctx, ticket.ID)
	require.NoError(t, err)
	require.True(t, result.AutoClosed)
	assert.Equal(t, domain.TicketStatusResolved, result.Status)

	stored, err := f.tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, stored.Status)
	assert.Equal(t, domain.CategoryBilling, stored.Category)
	require.NotNil(t, stored.SuggestionID)
	assert.Equal(t, result.Suggestion.ID, *stored.SuggestionID)

	// The agent reply cites the retrieved article.
	replies, err := f.replies.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, domain.AuthorTypeSystem, replies[0].AuthorType)
	assert.Contains(t, replies[0].Body, "Requesting a refund for a duplicate charge")

	entries, err := f.audit.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.AuditAction{
		domain.AuditTicketCreated,
		domain.AuditAgentClassified,
		domain.AuditKBRetrieved,
		domain.AuditDraftGenerated,
		domain.AuditAutoClosed,
	}, auditActions(entries))
}

func TestRunRoutesNoSignalTicketToHuman(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.setPolicy(t, true, 0.0)
	f.addBillingArticle(t)
	ticket := f.createTicket(t, "hello", "hello")

	result, err := f.orchestrator().Run(ctx, ticket.ID)
	require.NoError(t, err)

	// Zero confidence routes to a human regardless of threshold: the
	// retriever finds nothing, so the draft is unbacked.
	assert.False(t, result.AutoClosed)
	assert.Equal(t, domain.TicketStatusWaitingHuman, result.Status)
	assert.Equal(t, domain.CategoryOther, result.Suggestion.PredictedCategory)
	assert.Zero(t, result.Suggestion.Confidence)

	replies, err := f.replies.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, replies)
}

func TestRunConfidenceEqualToThresholdAutoCloses(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addBillingArticle(t)
	ticket := f.createTicket(t, "Double charge", "My invoice shows a double charge, please refund")

	c := NewClassifier()
	confidence := c.Classify(ticket.Title + " " + ticket.Description).Confidence
	require.Greater(t, confidence, 0.0)

	// Threshold exactly at the classifier output: >= must auto-close.
	f.setPolicy(t, true, confidence)

	result, err := f.orchestrator().Run(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, result.AutoClosed)
}

func TestRunAutoCloseDisabledRoutesToHuman(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.setPolicy(t, false, 0.0)
	f.addBillingArticle(t)
	ticket := f.createTicket(t, "Double charge", "My invoice shows a double charge, please refund")

	result, err := f.orchestrator().Run(ctx, ticket.ID)
	require.NoError(t, err)

	assert.False(t, result.AutoClosed)
	assert.Equal(t, domain.TicketStatusWaitingHuman, result.Status)
}

func TestRunNoArticlesNeverAutoCloses(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.setPolicy(t, true, 0.0)
	// empty index
	ticket := f.createTicket(t, "Double charge", "My invoice shows a double charge, please refund")

	result, err := f.orchestrator().Run(ctx, ticket.ID)
	require.NoError(t, err)

	assert.False(t, result.AutoClosed)
	assert.Equal(t, domain.TicketStatusWaitingHuman, result.Status)
	assert.Empty(t, result.Suggestion.ArticleIDs)
}

type failingSuggestionRepo struct {
	err error
}

func (r *failingSuggestionRepo) Create(context.Context, *domain.Suggestion) error {
	return r.err
}

func (r *failingSuggestionRepo) GetByID(context.Context, string) (*domain.Suggestion, error) {
	return nil, r.err
}

func (r *failingSuggestionRepo) ListByTicket(context.Context, string) ([]domain.Suggestion, error) {
	return nil, r.err
}

func TestRunStepFailureLeavesTicketOpen(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.setPolicy(t, true, 0.0)
	f.addBillingArticle(t)
	boom := errors.New("storage down")
	f.suggestions = &failingSuggestionRepo{err: boom}
	ticket := f.createTicket(t, "Double charge", "My invoice shows a double charge, please refund")

	_, err := f.orchestrator().Run(ctx, ticket.ID)
	require.Error(t, err)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepPersist, stepErr.Step)
	assert.ErrorIs(t, err, boom)

	// Ticket untouched: still open, no suggestion linked, no reply sent.
	stored, err := f.tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
	assert.Nil(t, stored.SuggestionID)

	entries, listErr := f.audit.ListByTicket(ctx, ticket.ID)
	require.NoError(t, listErr)
	actions := auditActions(entries)
	require.NotEmpty(t, actions)
	assert.Equal(t, domain.AuditTriageFailed, actions[len(actions)-1])
}

func TestRunRejectsConcurrentTriage(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.setPolicy(t, true, 0.4)
	f.addBillingArticle(t)
	ticket := f.createTicket(t, "Double charge", "My invoice shows a double charge, please refund")

	// Simulate an in-flight run holding the per-ticket scope.
	release, err := f.locks.Acquire(ctx, ticket.ID)
	require.NoError(t, err)

	_, err = f.orchestrator().Run(ctx, ticket.ID)
	assert.ErrorIs(t, err, ErrTriageInProgress)

	// Nothing was written by the rejected attempt.
	entries, listErr := f.audit.ListByTicket(ctx, ticket.ID)
	require.NoError(t, listErr)
	assert.Empty(t, entries)

	release()
	result, err := f.orchestrator().Run(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, result.AutoClosed)
}

func TestRunRetriageCreatesNewSuggestion(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.setPolicy(t, true, 0.99)
	f.addBillingArticle(t)
	// Two distinct billing hits (refund, invoice) stay well under the 0.99
	// threshold, so the first run lands with a human.
	ticket := f.createTicket(t, "Refund request", "Please refund this invoice")

	o := f.orchestrator()
	first, err := o.Run(ctx, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusWaitingHuman, first.Status)

	// Admin lowers the threshold; manual re-trigger picks it up.
	f.setPolicy(t, true, 0.4)
	second, err := o.Run(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, second.AutoClosed)
	assert.NotEqual(t, first.Suggestion.ID, second.Suggestion.ID)

	// Latest suggestion wins on the ticket.
	stored, err := f.tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.SuggestionID)
	assert.Equal(t, second.Suggestion.ID, *stored.SuggestionID)

	all, err := f.suggestions.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// flakyTicketRepo fails a specific Update call, then recovers.
type flakyTicketRepo struct {
	*repository.MemoryTicketRepository
	updateCalls int
	failOnCall  int
	err         error
}

func (r *flakyTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	r.updateCalls++
	if r.updateCalls == r.failOnCall {
		return r.err
	}
	return r.MemoryTicketRepository.Update(ctx, ticket)
}

func TestRunRetriggersAfterDecisionWriteFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.setPolicy(t, true, 0.4)
	f.addBillingArticle(t)
	ticket := f.createTicket(t, "Double charge", "My invoice shows a double charge, please refund")

	// The second ticket write is the decision step; kill it mid-run.
	boom := errors.New("storage down")
	flaky := &flakyTicketRepo{MemoryTicketRepository: f.tickets, failOnCall: 2, err: boom}
	o := NewOrchestrator(Dependencies{
		TicketRepo:     flaky,
		SuggestionRepo: f.suggestions,
		ReplyRepo:      f.replies,
		AuditRepo:      f.audit,
		PolicyRepo:     f.policy,
		Index:          f.index,
		Locks:          f.locks,
	})

	_, err := o.Run(ctx, ticket.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	// The run died after the triaged write; the ticket must still be
	// re-triagable from that state.
	stored, getErr := f.tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, getErr)
	require.Equal(t, domain.TicketStatusTriaged, stored.Status)

	result, err := o.Run(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, result.AutoClosed)
	assert.Equal(t, domain.TicketStatusResolved, result.Status)

	final, err := f.tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, final.SuggestionID)
	assert.Equal(t, result.Suggestion.ID, *final.SuggestionID)
}

type failingPolicyRepo struct {
	err error
}

func (r *failingPolicyRepo) Get(context.Context) (domain.AgentConfig, error) {
	return domain.AgentConfig{}, r.err
}

func (r *failingPolicyRepo) Update(context.Context, *domain.AgentConfig) error {
	return r.err
}

func TestRunPolicyFetchFailureStillAnchorsTrail(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.addBillingArticle(t)
	ticket := f.createTicket(t, "Double charge", "My invoice shows a double charge, please refund")

	o := NewOrchestrator(Dependencies{
		TicketRepo:     f.tickets,
		SuggestionRepo: f.suggestions,
		ReplyRepo:      f.replies,
		AuditRepo:      f.audit,
		PolicyRepo:     &failingPolicyRepo{err: errors.New("config store down")},
		Index:          f.index,
		Locks:          f.locks,
	})

	_, err := o.Run(ctx, ticket.ID)
	require.Error(t, err)

	// Even the earliest possible failure leaves a trail starting at
	// TICKET_CREATED.
	entries, listErr := f.audit.ListByTicket(ctx, ticket.ID)
	require.NoError(t, listErr)
	assert.Equal(t, []domain.AuditAction{
		domain.AuditTicketCreated,
		domain.AuditTriageFailed,
	}, auditActions(entries))
}

func TestRunRecordsTriageOutcomes(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.setPolicy(t, true, 0.4)
	f.addBillingArticle(t)
	metrics := observability.NewMetrics()

	o := NewOrchestrator(Dependencies{
		TicketRepo:     f.tickets,
		SuggestionRepo: f.suggestions,
		ReplyRepo:      f.replies,
		AuditRepo:      f.audit,
		PolicyRepo:     f.policy,
		Index:          f.index,
		Locks:          f.locks,
		Metrics:        metrics,
	})

	autoClosed := f.createTicket(t, "Double charge", "My invoice shows a double charge, please refund")
	_, err := o.Run(ctx, autoClosed.ID)
	require.NoError(t, err)

	waiting := f.createTicket(t, "hello", "hello")
	_, err = o.Run(ctx, waiting.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), metrics.TriageCount(TriageOutcomeAutoClosed))
	assert.Equal(t, int64(1), metrics.TriageCount(TriageOutcomeWaitingHuman))
	assert.Zero(t, metrics.TriageCount(TriageOutcomeFailed))
}

func TestRunRefusesTerminalTickets(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ticket := f.createTicket(t, "Done", "finished")
	stored, err := f.tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	stored.Status = domain.TicketStatusClosed
	require.NoError(t, f.tickets.Update(ctx, stored))

	_, err = f.orchestrator().Run(ctx, ticket.ID)
	assert.Error(t, err)
}
