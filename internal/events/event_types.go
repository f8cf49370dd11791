package events

import (
	"time"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketTriaged       EventType = "ticket_triaged"
	EventTicketAutoClosed    EventType = "ticket_auto_closed"
	EventTriageFailed        EventType = "triage_failed"
	EventTicketReplyAdded    EventType = "ticket_reply_added"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventSLABreached         EventType = "ticket_sla_breached"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	RequesterID string                `json:"requester_id"`
	Title       string                `json:"title"`
	Category    domain.TicketCategory `json:"category"`
}

// TicketTriagedPayload payload.
type TicketTriagedPayload struct {
	SuggestionID      string                `json:"suggestion_id"`
	PredictedCategory domain.TicketCategory `json:"predicted_category"`
	Confidence        float64               `json:"confidence"`
	ArticleCount      int                   `json:"article_count"`
	AutoClosed        bool                  `json:"auto_closed"`
}

// TriageFailedPayload payload.
type TriageFailedPayload struct {
	Step  string `json:"step"`
	Error string `json:"error"`
}

// TicketReplyAddedPayload payload.
type TicketReplyAddedPayload struct {
	ReplyID     string                 `json:"reply_id"`
	AuthorType  domain.ReplyAuthorType `json:"author_type"`
	AuthorID    *string                `json:"author_id,omitempty"`
	BodyPreview string                 `json:"body_preview"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID *string `json:"assignee_id,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// SLABreachedPayload payload.
type SLABreachedPayload struct {
	Status  domain.TicketStatus `json:"status"`
	DueAt   time.Time           `json:"due_at"`
	Overdue time.Duration       `json:"overdue"`
}
