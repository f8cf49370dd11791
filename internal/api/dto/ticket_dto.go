package dto

import (
	"time"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
	"github.com/spec-kit/smart-helpdesk/internal/service"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
}

// CreateReplyRequest payload.
type CreateReplyRequest struct {
	Body string `json:"body"`
}

// AgentReplyRequest payload. Status defaults to resolved when empty.
type AgentReplyRequest struct {
	Body   string              `json:"body"`
	Status domain.TicketStatus `json:"status"`
}

// UpdateStatusRequest payload for explicit transitions.
type UpdateStatusRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Comment string              `json:"comment"`
}

// AssignRequest payload.
type AssignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// TicketSummary response.
type TicketSummary struct {
	ID          string                `json:"id"`
	ExternalKey string                `json:"external_key"`
	Title       string                `json:"title"`
	Category    domain.TicketCategory `json:"category"`
	Status      domain.TicketStatus   `json:"status"`
	AssigneeID  *string               `json:"assignee_id"`
	DueAt       *time.Time            `json:"due_at"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides the full ticket view.
type TicketDetailResponse struct {
	ID          string                `json:"id"`
	ExternalKey string                `json:"external_key"`
	RequesterID string                `json:"requester_id"`
	AssigneeID  *string               `json:"assignee_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
	Status      domain.TicketStatus   `json:"status"`
	DueAt       *time.Time            `json:"due_at"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	ClosedAt    *time.Time            `json:"closed_at"`
	Replies     []ReplyResponse       `json:"replies"`
	Suggestion  *SuggestionResponse   `json:"suggestion,omitempty"`
	Audit       []AuditEntryResponse  `json:"audit"`
}

// ReplyResponse represents a thread message.
type ReplyResponse struct {
	ID         string                 `json:"id"`
	AuthorType domain.ReplyAuthorType `json:"author_type"`
	AuthorID   *string                `json:"author_id"`
	Body       string                 `json:"body"`
	CreatedAt  time.Time              `json:"created_at"`
}

// SuggestionResponse represents one triage run result.
type SuggestionResponse struct {
	ID                string                `json:"id"`
	PredictedCategory domain.TicketCategory `json:"predicted_category"`
	Confidence        float64               `json:"confidence"`
	ArticleIDs        []string              `json:"article_ids"`
	DraftReply        string                `json:"draft_reply"`
	AutoClosed        bool                  `json:"auto_closed"`
	CreatedAt         time.Time             `json:"created_at"`
}

// AuditEntryResponse represents one audit trail record.
type AuditEntryResponse struct {
	ID        string             `json:"id"`
	Seq       int64              `json:"seq"`
	Action    domain.AuditAction `json:"action"`
	Metadata  map[string]any     `json:"metadata,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// NewTicketSummary maps a domain ticket.
func NewTicketSummary(ticket *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:          ticket.ID,
		ExternalKey: ticket.ExternalKey,
		Title:       ticket.Title,
		Category:    ticket.Category,
		Status:      ticket.Status,
		AssigneeID:  ticket.AssigneeID,
		DueAt:       ticket.DueAt,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

// NewTicketDetail maps the service detail aggregate.
func NewTicketDetail(detail *service.TicketDetail) TicketDetailResponse {
	ticket := detail.Ticket
	resp := TicketDetailResponse{
		ID:          ticket.ID,
		ExternalKey: ticket.ExternalKey,
		RequesterID: ticket.RequesterID,
		AssigneeID:  ticket.AssigneeID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Category:    ticket.Category,
		Status:      ticket.Status,
		DueAt:       ticket.DueAt,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
		ClosedAt:    ticket.ClosedAt,
		Replies:     make([]ReplyResponse, 0, len(detail.Replies)),
		Audit:       make([]AuditEntryResponse, 0, len(detail.Audit)),
	}
	for i := range detail.Replies {
		resp.Replies = append(resp.Replies, NewReplyResponse(&detail.Replies[i]))
	}
	for i := range detail.Audit {
		resp.Audit = append(resp.Audit, NewAuditEntryResponse(&detail.Audit[i]))
	}
	if detail.Suggestion != nil {
		suggestion := NewSuggestionResponse(detail.Suggestion)
		resp.Suggestion = &suggestion
	}
	return resp
}

// NewReplyResponse maps a domain reply.
func NewReplyResponse(reply *domain.Reply) ReplyResponse {
	return ReplyResponse{
		ID:         reply.ID,
		AuthorType: reply.AuthorType,
		AuthorID:   reply.AuthorID,
		Body:       reply.Body,
		CreatedAt:  reply.CreatedAt,
	}
}

// NewSuggestionResponse maps a domain suggestion.
func NewSuggestionResponse(suggestion *domain.Suggestion) SuggestionResponse {
	return SuggestionResponse{
		ID:                suggestion.ID,
		PredictedCategory: suggestion.PredictedCategory,
		Confidence:        suggestion.Confidence,
		ArticleIDs:        suggestion.ArticleIDs,
		DraftReply:        suggestion.DraftReply,
		AutoClosed:        suggestion.AutoClosed,
		CreatedAt:         suggestion.CreatedAt,
	}
}

// NewAuditEntryResponse maps an audit record.
func NewAuditEntryResponse(entry *domain.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:        entry.ID,
		Seq:       entry.Seq,
		Action:    entry.Action,
		Metadata:  entry.Metadata,
		CreatedAt: entry.CreatedAt,
	}
}
