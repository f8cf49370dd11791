package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
	"github.com/spec-kit/smart-helpdesk/internal/events"
	"github.com/spec-kit/smart-helpdesk/internal/repository"
	"github.com/spec-kit/smart-helpdesk/internal/triage"
	apperrors "github.com/spec-kit/smart-helpdesk/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows around the triage pipeline.
type TicketService struct {
	tickets      repository.TicketRepository
	replies      repository.ReplyRepository
	suggestions  repository.SuggestionRepository
	audit        repository.AuditRepository
	policy       repository.AgentConfigRepository
	users        repository.UserRepository
	orchestrator *triage.Orchestrator
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	ReplyRepo      repository.ReplyRepository
	SuggestionRepo repository.SuggestionRepository
	AuditRepo      repository.AuditRepository
	PolicyRepo     repository.AgentConfigRepository
	UserRepo       repository.UserRepository
	Orchestrator   *triage.Orchestrator
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:      deps.TicketRepo,
		replies:      deps.ReplyRepo,
		suggestions:  deps.SuggestionRepo,
		audit:        deps.AuditRepo,
		policy:       deps.PolicyRepo,
		users:        deps.UserRepo,
		orchestrator: deps.Orchestrator,
		dispatcher:   deps.Dispatcher,
		logger:       logger,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    domain.TicketCategory
}

// TicketDetail aggregates everything a ticket view needs.
type TicketDetail struct {
	Ticket     *domain.Ticket
	Replies    []domain.Reply
	Suggestion *domain.Suggestion
	Audit      []domain.AuditEntry
}

// TicketQueueFilter describes agent listing filters.
type TicketQueueFilter struct {
	Statuses   []domain.TicketStatus
	Categories []domain.TicketCategory
	AssigneeID *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// CreateTicket persists a new ticket and runs the triage pipeline on it.
// A triage failure does not fail creation: the ticket stays open with no
// suggestion and a manual re-trigger remains available.
func (s *TicketService) CreateTicket(ctx context.Context, userID string, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	category := input.Category
	if category == "" {
		category = domain.CategoryOther
	}
	if !domain.ValidCategory(category) {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": category})
	}

	cfg, err := s.policy.Get(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	dueAt := time.Now().Add(cfg.SLADuration())

	ticket := &domain.Ticket{
		ExternalKey: generateTicketKey(),
		RequesterID: userID,
		Title:       title,
		Description: description,
		Category:    category,
		Status:      domain.TicketStatusOpen,
		DueAt:       &dueAt,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  &userID,
		Payload: events.TicketCreatedPayload{
			RequesterID: ticket.RequesterID,
			Title:       ticket.Title,
			Category:    ticket.Category,
		},
	})

	if _, err := s.orchestrator.Run(ctx, ticket.ID); err != nil {
		s.logger.Warn("triage failed at ticket creation",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		return ticket, nil
	}

	// Hand back the post-triage state.
	updated, err := s.tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		return ticket, nil
	}
	return updated, nil
}

// Retriage manually re-runs the pipeline for a ticket.
func (s *TicketService) Retriage(ctx context.Context, ticketID string) (*TicketDetail, error) {
	if _, err := s.orchestrator.Run(ctx, ticketID); err != nil {
		if errors.Is(err, triage.ErrTriageInProgress) {
			return nil, apperrors.NewConflict("triage already in progress", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return s.detail(ctx, ticketID)
}

// ListUserTickets returns tickets owned by a requester.
func (s *TicketService) ListUserTickets(ctx context.Context, userID string, limit, offset int) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{
		RequesterID: &userID,
		Limit:       limit,
		Offset:      offset,
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	return tickets, apperrors.MapError(err)
}

// ListQueue returns tickets matching agent filters.
func (s *TicketService) ListQueue(ctx context.Context, filter TicketQueueFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		AssigneeID: filter.AssigneeID,
		Statuses:   filter.Statuses,
		Categories: filter.Categories,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	return tickets, apperrors.MapError(err)
}

// GetTicketForUser fetches a ticket detail ensuring ownership.
func (s *TicketService) GetTicketForUser(ctx context.Context, userID, ticketID string) (*TicketDetail, error) {
	detail, err := s.detail(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if detail.Ticket.RequesterID != userID {
		return nil, apperrors.NewForbidden("access denied")
	}
	return detail, nil
}

// GetTicketForStaff fetches a ticket detail for agents and admins.
func (s *TicketService) GetTicketForStaff(ctx context.Context, ticketID string) (*TicketDetail, error) {
	return s.detail(ctx, ticketID)
}

func (s *TicketService) detail(ctx context.Context, ticketID string) (*TicketDetail, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	replies, err := s.replies.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	trail, err := s.audit.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	detail := &TicketDetail{Ticket: ticket, Replies: replies, Audit: trail}
	if ticket.SuggestionID != nil {
		suggestion, err := s.suggestions.GetByID(ctx, *ticket.SuggestionID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		detail.Suggestion = suggestion
	}
	return detail, nil
}

// AddUserReply appends a requester reply to their own ticket.
func (s *TicketService) AddUserReply(ctx context.Context, userID, ticketID, body string) (*domain.Reply, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.RequesterID != userID {
		return nil, apperrors.NewForbidden("access denied")
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewConflict("ticket is closed", nil)
	}
	return s.appendReply(ctx, ticket, domain.AuthorTypeUser, userID, body)
}

// AddAgentReply appends an agent reply and moves the ticket to the given
// terminal-bound status (resolved by default). This is the human bypass:
// an agent reply may resolve or close a ticket directly.
func (s *TicketService) AddAgentReply(ctx context.Context, agentID, ticketID, body string, newStatus domain.TicketStatus) (*domain.Ticket, *domain.Reply, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if newStatus == "" {
		newStatus = domain.TicketStatusResolved
	}
	if newStatus != domain.TicketStatusResolved && newStatus != domain.TicketStatusClosed {
		return nil, nil, apperrors.NewValidationError("agent reply may only resolve or close", map[string]any{"status": newStatus})
	}
	if ticket.Status != newStatus && !domain.CanTransitionByHuman(ticket.Status, newStatus) {
		return nil, nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status, "to": newStatus,
		})
	}

	reply, err := s.appendReply(ctx, ticket, domain.AuthorTypeAgent, agentID, body)
	if err != nil {
		return nil, nil, err
	}

	if ticket.Status != newStatus {
		if _, err := s.transition(ctx, ticket, newStatus, &agentID, "agent_reply"); err != nil {
			return nil, nil, err
		}
	}
	return ticket, reply, nil
}

// UpdateStatus applies an explicit human status change.
func (s *TicketService) UpdateStatus(ctx context.Context, actorID, ticketID string, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransitionByHuman(ticket.Status, newStatus) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status, "to": newStatus,
		})
	}
	return s.transition(ctx, ticket, newStatus, &actorID, comment)
}

// CloseTicketAsUser lets a requester close their resolved ticket.
func (s *TicketService) CloseTicketAsUser(ctx context.Context, userID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.RequesterID != userID {
		return nil, apperrors.NewForbidden("access denied")
	}
	if ticket.Status != domain.TicketStatusResolved {
		return nil, apperrors.NewConflict("ticket cannot be closed in current status", map[string]any{"status": ticket.Status})
	}
	return s.transition(ctx, ticket, domain.TicketStatusClosed, &userID, "user_closed")
}

// Assign sets the ticket assignee.
func (s *TicketService) Assign(ctx context.Context, actorID, ticketID, assigneeID string) (*domain.Ticket, error) {
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": assigneeID})
		}
		return nil, apperrors.MapError(err)
	}
	if !assignee.Role.IsStaff() {
		return nil, apperrors.NewValidationError("assignee must be an agent", map[string]any{"user_id": assigneeID})
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	ticket.AssigneeID = &assignee.ID
	if err := s.updateTicket(ctx, ticket); err != nil {
		return nil, err
	}
	s.appendAudit(ctx, ticket.ID, domain.AuditAssigned, map[string]any{
		"assignee_id": assignee.ID,
		"actor_id":    actorID,
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		ActorID:  &actorID,
		Payload:  events.TicketAssignedPayload{AssigneeID: ticket.AssigneeID},
	})
	return ticket, nil
}

// ListAudit returns the full audit trail for a ticket.
func (s *TicketService) ListAudit(ctx context.Context, ticketID string) ([]domain.AuditEntry, error) {
	if _, err := s.getTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	entries, err := s.audit.ListByTicket(ctx, ticketID)
	return entries, apperrors.MapError(err)
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) appendReply(ctx context.Context, ticket *domain.Ticket, authorType domain.ReplyAuthorType, authorID, body string) (*domain.Reply, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("body required", nil)
	}
	reply := &domain.Reply{
		TicketID:   ticket.ID,
		AuthorType: authorType,
		AuthorID:   &authorID,
		Body:       body,
	}
	if err := s.replies.Create(ctx, reply); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.appendAudit(ctx, ticket.ID, domain.AuditReplySent, map[string]any{
		"reply_id":    reply.ID,
		"author_type": authorType,
		"author_id":   authorID,
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketReplyAdded,
		TicketID: ticket.ID,
		ActorID:  &authorID,
		Payload: events.TicketReplyAddedPayload{
			ReplyID:     reply.ID,
			AuthorType:  authorType,
			AuthorID:    reply.AuthorID,
			BodyPreview: stringPreview(body, 120),
		},
	})
	return reply, nil
}

func (s *TicketService) transition(ctx context.Context, ticket *domain.Ticket, newStatus domain.TicketStatus, actorID *string, comment string) (*domain.Ticket, error) {
	oldStatus := ticket.Status
	ticket.Status = newStatus
	if newStatus == domain.TicketStatusClosed {
		now := time.Now()
		ticket.ClosedAt = &now
	}
	if err := s.updateTicket(ctx, ticket); err != nil {
		return nil, err
	}
	s.appendAudit(ctx, ticket.ID, domain.AuditStatusChanged, map[string]any{
		"old_status": oldStatus,
		"new_status": newStatus,
		"comment":    comment,
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		ActorID:  actorID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	return ticket, nil
}

func (s *TicketService) updateTicket(ctx context.Context, ticket *domain.Ticket) error {
	err := s.tickets.Update(ctx, ticket)
	if errors.Is(err, repository.ErrVersionConflict) {
		return apperrors.NewConflict("ticket modified concurrently", map[string]any{"ticket_id": ticket.ID})
	}
	return apperrors.MapError(err)
}

func (s *TicketService) appendAudit(ctx context.Context, ticketID string, action domain.AuditAction, metadata map[string]any) {
	entry := &domain.AuditEntry{TicketID: ticketID, Action: action, Metadata: metadata}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.Error("audit append failed",
			zap.String("ticket_id", ticketID),
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
