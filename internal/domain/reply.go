package domain

import "time"

// ReplyAuthorType indicates who authored a reply.
type ReplyAuthorType string

const (
	AuthorTypeUser   ReplyAuthorType = "USER"
	AuthorTypeAgent  ReplyAuthorType = "AGENT"
	AuthorTypeSystem ReplyAuthorType = "SYSTEM"
)

// Reply captures a message in a ticket thread. Replies are immutable once
// appended; ordering is append order.
type Reply struct {
	ID         string
	TicketID   string
	AuthorType ReplyAuthorType
	AuthorID   *string
	Body       string
	CreatedAt  time.Time
}
