package domain

import "time"

// Suggestion is the output of one triage run for a ticket. Re-triage
// creates a new Suggestion; the ticket points at the latest one.
type Suggestion struct {
	ID                string
	TicketID          string
	PredictedCategory TicketCategory
	Confidence        float64
	ArticleIDs        []string
	DraftReply        string
	AutoClosed        bool
	CreatedAt         time.Time
}
