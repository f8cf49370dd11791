package domain

import "time"

// AuditAction tags what happened in an audit trail entry.
type AuditAction string

const (
	AuditTicketCreated   AuditAction = "TICKET_CREATED"
	AuditAgentClassified AuditAction = "AGENT_CLASSIFIED"
	AuditKBRetrieved     AuditAction = "KB_RETRIEVED"
	AuditDraftGenerated  AuditAction = "DRAFT_GENERATED"
	AuditAutoClosed      AuditAction = "AUTO_CLOSED"
	AuditReplySent       AuditAction = "REPLY_SENT"
	AuditAssigned        AuditAction = "ASSIGNED"
	AuditStatusChanged   AuditAction = "STATUS_CHANGED"
	AuditTriageFailed    AuditAction = "TRIAGE_FAILED"
)

// AuditEntry is an immutable audit trail record. Entries are append-only
// and never deleted; Seq preserves insertion order within a ticket even
// when timestamps collide.
type AuditEntry struct {
	ID        string
	Seq       int64
	TicketID  string
	Action    AuditAction
	Metadata  map[string]any
	CreatedAt time.Time
}
