package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen         TicketStatus = "OPEN"
	TicketStatusTriaged      TicketStatus = "TRIAGED"
	TicketStatusWaitingHuman TicketStatus = "WAITING_HUMAN"
	TicketStatusResolved     TicketStatus = "RESOLVED"
	TicketStatusClosed       TicketStatus = "CLOSED"
)

// TicketCategory enumerates triage categories.
type TicketCategory string

const (
	CategoryBilling  TicketCategory = "BILLING"
	CategoryTech     TicketCategory = "TECH"
	CategoryShipping TicketCategory = "SHIPPING"
	CategoryOther    TicketCategory = "OTHER"
)

// Categories lists every category in precedence order. The classifier
// breaks score ties by this order.
var Categories = []TicketCategory{CategoryBilling, CategoryTech, CategoryShipping, CategoryOther}

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c TicketCategory) bool {
	for _, candidate := range Categories {
		if candidate == c {
			return true
		}
	}
	return false
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID           string
	ExternalKey  string
	RequesterID  string
	AssigneeID   *string
	Title        string
	Description  string
	Category     TicketCategory
	Status       TicketStatus
	SuggestionID *string
	Version      int64
	DueAt        *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ClosedAt     *time.Time
}

// automaticTransitions is the triage pipeline's state machine.
var automaticTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen: {TicketStatusTriaged},
	// TRIAGED re-enters itself so a run that died after the triaged write
	// can always be re-triggered.
	TicketStatusTriaged: {TicketStatusTriaged, TicketStatusWaitingHuman, TicketStatusResolved},
	// A manual re-triage moves a waiting ticket back through TRIAGED.
	TicketStatusWaitingHuman: {TicketStatusTriaged},
	TicketStatusResolved:     {TicketStatusClosed},
	TicketStatusClosed:       {},
}

// humanTransitions holds the extra edges an explicit agent action may
// take: resolving or closing directly without the automatic pipeline.
var humanTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:         {TicketStatusResolved, TicketStatusClosed},
	TicketStatusTriaged:      {TicketStatusResolved, TicketStatusClosed},
	TicketStatusWaitingHuman: {TicketStatusResolved, TicketStatusClosed},
	TicketStatusResolved:     {TicketStatusClosed},
	TicketStatusClosed:       {},
}

// CanTransition reports whether the automatic pipeline may move a ticket
// from current to next.
func CanTransition(current, next TicketStatus) bool {
	return containsStatus(automaticTransitions[current], next)
}

// CanTransitionByHuman reports whether an explicit human action may move a
// ticket from current to next.
func CanTransitionByHuman(current, next TicketStatus) bool {
	if CanTransition(current, next) {
		return true
	}
	return containsStatus(humanTransitions[current], next)
}

func containsStatus(candidates []TicketStatus, status TicketStatus) bool {
	for _, candidate := range candidates {
		if candidate == status {
			return true
		}
	}
	return false
}
