package triage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
	"github.com/spec-kit/smart-helpdesk/internal/events"
	"github.com/spec-kit/smart-helpdesk/internal/observability"
	"github.com/spec-kit/smart-helpdesk/internal/repository"
)

// Triage outcome labels for the metrics counters.
const (
	TriageOutcomeAutoClosed   = "auto_closed"
	TriageOutcomeWaitingHuman = "waiting_human"
	TriageOutcomeFailed       = "failed"
)

// Orchestrator runs the triage pipeline: classify the ticket, retrieve
// knowledge-base articles, compose a draft reply, then decide whether to
// auto-resolve or hand off to a human. Every step lands in the audit
// trail.
type Orchestrator struct {
	tickets       repository.TicketRepository
	suggestions   repository.SuggestionRepository
	replies       repository.ReplyRepository
	audit         repository.AuditRepository
	policy        repository.AgentConfigRepository
	classifier    *Classifier
	retriever     *Retriever
	composer      *Composer
	locks         Locker
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	metrics       *observability.Metrics
	retrieveLimit int
}

// Dependencies bundles what the orchestrator needs.
type Dependencies struct {
	TicketRepo     repository.TicketRepository
	SuggestionRepo repository.SuggestionRepository
	ReplyRepo      repository.ReplyRepository
	AuditRepo      repository.AuditRepository
	PolicyRepo     repository.AgentConfigRepository
	Index          *ArticleIndex
	Locks          Locker
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	RetrieveLimit  int
}

// NewOrchestrator constructs the pipeline.
func NewOrchestrator(deps Dependencies) *Orchestrator {
	limit := deps.RetrieveLimit
	if limit <= 0 {
		limit = DefaultRetrieveLimit
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		tickets:       deps.TicketRepo,
		suggestions:   deps.SuggestionRepo,
		replies:       deps.ReplyRepo,
		audit:         deps.AuditRepo,
		policy:        deps.PolicyRepo,
		classifier:    NewClassifier(),
		retriever:     NewRetriever(deps.Index),
		composer:      NewComposer(),
		locks:         deps.Locks,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
		metrics:       deps.Metrics,
		retrieveLimit: limit,
	}
}

// Result summarizes a completed triage run.
type Result struct {
	Suggestion *domain.Suggestion
	Status     domain.TicketStatus
	AutoClosed bool
}

// Run executes the pipeline for one ticket. At most one run per ticket is
// in flight at any time; a concurrent attempt fails with
// ErrTriageInProgress. The decision policy is read fresh at the start of
// the run and passed by value, so admin changes apply to the next run.
//
// On a step failure the run aborts: the ticket keeps its prior status, no
// suggestion is linked, a TRIAGE_FAILED entry is recorded and the typed
// error surfaces to the caller. Triage is never retried automatically.
func (o *Orchestrator) Run(ctx context.Context, ticketID string) (*Result, error) {
	release, err := o.locks.Acquire(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	defer release()

	ticket, err := o.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, stepFailure(StepPersist, err)
	}
	if !domain.CanTransition(ticket.Status, domain.TicketStatusTriaged) {
		return nil, stepFailure(StepPersist,
			fmt.Errorf("ticket %s not triagable in status %s", ticket.ID, ticket.Status))
	}
	retriage := ticket.Status != domain.TicketStatusOpen

	// Anchor the trail first: even a run that dies fetching the policy
	// leaves a trail starting at TICKET_CREATED.
	o.appendAudit(ctx, ticket.ID, domain.AuditTicketCreated, map[string]any{
		"title":    ticket.Title,
		"retriage": retriage,
	})

	cfg, err := o.policy.Get(ctx)
	if err != nil {
		return nil, o.fail(ctx, ticket, StepPersist, err)
	}

	// Classify.
	classification := o.classifier.Classify(ticket.Title + " " + ticket.Description)
	o.appendAudit(ctx, ticket.ID, domain.AuditAgentClassified, map[string]any{
		"category":   classification.Category,
		"confidence": classification.Confidence,
	})

	// Retrieve.
	terms := ExtractKeywords(ticket.Title + " " + ticket.Description)
	articles := o.retriever.Retrieve(terms, classification.Category, o.retrieveLimit)
	o.appendAudit(ctx, ticket.ID, domain.AuditKBRetrieved, map[string]any{
		"articleCount": len(articles),
	})

	// Compose.
	draft := o.composer.Compose(ticket, classification.Category, articles)
	o.appendAudit(ctx, ticket.ID, domain.AuditDraftGenerated, nil)

	autoClose := cfg.AutoCloseEnabled &&
		classification.Confidence >= cfg.ConfidenceThreshold &&
		len(articles) > 0 &&
		draft.Backed

	articleIDs := make([]string, 0, len(articles))
	for _, article := range articles {
		articleIDs = append(articleIDs, article.ID)
	}
	suggestion := &domain.Suggestion{
		TicketID:          ticket.ID,
		PredictedCategory: classification.Category,
		Confidence:        classification.Confidence,
		ArticleIDs:        articleIDs,
		DraftReply:        draft.Body,
		AutoClosed:        autoClose,
	}
	if err := o.suggestions.Create(ctx, suggestion); err != nil {
		return nil, o.fail(ctx, ticket, StepPersist, err)
	}

	// Link the suggestion and mark the intermediate TRIAGED state before
	// the decision branch, so observers always see triaged →
	// {resolved|waiting_human}.
	ticket.SuggestionID = &suggestion.ID
	ticket.Category = classification.Category
	ticket.Status = domain.TicketStatusTriaged
	if err := o.tickets.Update(ctx, ticket); err != nil {
		return nil, o.fail(ctx, ticket, StepPersist, err)
	}

	if autoClose {
		reply := &domain.Reply{
			TicketID:   ticket.ID,
			AuthorType: domain.AuthorTypeSystem,
			Body:       draft.Body,
		}
		if err := o.replies.Create(ctx, reply); err != nil {
			return nil, o.fail(ctx, ticket, StepPersist, err)
		}
		ticket.Status = domain.TicketStatusResolved
		if err := o.tickets.Update(ctx, ticket); err != nil {
			return nil, o.fail(ctx, ticket, StepPersist, err)
		}
		o.appendAudit(ctx, ticket.ID, domain.AuditAutoClosed, map[string]any{
			"confidence": classification.Confidence,
		})
	} else {
		ticket.Status = domain.TicketStatusWaitingHuman
		if err := o.tickets.Update(ctx, ticket); err != nil {
			return nil, o.fail(ctx, ticket, StepPersist, err)
		}
	}

	o.publish(ctx, events.Event{
		Type:     events.EventTicketTriaged,
		TicketID: ticket.ID,
		Payload: events.TicketTriagedPayload{
			SuggestionID:      suggestion.ID,
			PredictedCategory: suggestion.PredictedCategory,
			Confidence:        suggestion.Confidence,
			ArticleCount:      len(articleIDs),
			AutoClosed:        autoClose,
		},
	})
	if autoClose {
		o.publish(ctx, events.Event{
			Type:     events.EventTicketAutoClosed,
			TicketID: ticket.ID,
			Payload: events.TicketTriagedPayload{
				SuggestionID:      suggestion.ID,
				PredictedCategory: suggestion.PredictedCategory,
				Confidence:        suggestion.Confidence,
				ArticleCount:      len(articleIDs),
				AutoClosed:        true,
			},
		})
	}

	outcome := TriageOutcomeWaitingHuman
	if autoClose {
		outcome = TriageOutcomeAutoClosed
	}
	o.metrics.RecordTriage(outcome)

	o.logger.Info("triage run complete",
		zap.String("ticket_id", ticket.ID),
		zap.String("category", string(classification.Category)),
		zap.Float64("confidence", classification.Confidence),
		zap.Int("articles", len(articleIDs)),
		zap.Bool("auto_closed", autoClose),
	)

	return &Result{Suggestion: suggestion, Status: ticket.Status, AutoClosed: autoClose}, nil
}

// fail records the failure in the audit trail and wraps the error. The
// ticket keeps whatever status it already had; no suggestion gets linked.
func (o *Orchestrator) fail(ctx context.Context, ticket *domain.Ticket, step Step, cause error) error {
	wrapped := stepFailure(step, cause)
	o.metrics.RecordTriage(TriageOutcomeFailed)
	o.appendAudit(ctx, ticket.ID, domain.AuditTriageFailed, map[string]any{
		"step":  string(step),
		"error": cause.Error(),
	})
	o.publish(ctx, events.Event{
		Type:     events.EventTriageFailed,
		TicketID: ticket.ID,
		Payload:  events.TriageFailedPayload{Step: string(step), Error: cause.Error()},
	})
	o.logger.Warn("triage run failed",
		zap.String("ticket_id", ticket.ID),
		zap.String("step", string(step)),
		zap.Error(cause),
	)
	return wrapped
}

// appendAudit writes a trail entry. Audit writes are best-effort relative
// to the pipeline: a failed write is logged, not fatal, so the trail is
// at-least-once while the final ticket status stays exactly-once.
func (o *Orchestrator) appendAudit(ctx context.Context, ticketID string, action domain.AuditAction, metadata map[string]any) {
	entry := &domain.AuditEntry{TicketID: ticketID, Action: action, Metadata: metadata}
	if err := o.audit.Append(ctx, entry); err != nil {
		o.logger.Error("audit append failed",
			zap.String("ticket_id", ticketID),
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}

func (o *Orchestrator) publish(ctx context.Context, event events.Event) {
	if o.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = o.dispatcher.Publish(ctx, event)
}
