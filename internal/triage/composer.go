package triage

import (
	"fmt"
	"strings"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
)

// Draft is a composed reply plus whether it is backed by any article
// evidence. The orchestrator never auto-closes on an unbacked draft.
type Draft struct {
	Body   string
	Backed bool
}

// Composer builds deterministic template replies. It is extractive: the
// only content taken from the knowledge base is the retrieved article
// titles, never synthesized text.
type Composer struct{}

// NewComposer returns a composer.
func NewComposer() *Composer {
	return &Composer{}
}

// Compose fills the reply template for a ticket. With articles present the
// draft acknowledges the ticket, states the predicted category and cites
// each article title in retrieval order. With none it produces a generic
// fallback and marks the draft as unbacked.
func (c *Composer) Compose(ticket *domain.Ticket, category domain.TicketCategory, articles []domain.KBArticle) Draft {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello,\n\nThanks for reaching out about %q.\n", strings.TrimSpace(ticket.Title))

	if len(articles) == 0 {
		b.WriteString("\nWe could not match your request to a known help article yet. ")
		b.WriteString("A support agent will review your ticket and follow up shortly.\n")
		return Draft{Body: b.String(), Backed: false}
	}

	fmt.Fprintf(&b, "We have categorized your request as a %s issue.\n", categoryLabel(category))
	b.WriteString("\nThese articles may help:\n")
	for i, article := range articles {
		fmt.Fprintf(&b, "%d. %s\n", i+1, article.Title)
	}
	b.WriteString("\nIf this resolves your issue, no further action is needed. ")
	b.WriteString("Otherwise a support agent will follow up shortly.\n")
	return Draft{Body: b.String(), Backed: true}
}

func categoryLabel(category domain.TicketCategory) string {
	return strings.ToLower(string(category))
}
