package triage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
)

func TestComposeCitesArticleTitles(t *testing.T) {
	c := NewComposer()
	ticket := &domain.Ticket{Title: "Double charge on invoice"}
	articles := []domain.KBArticle{
		{ID: "a1", Title: "Requesting a refund"},
		{ID: "a2", Title: "Understanding your invoice"},
	}

	draft := c.Compose(ticket, domain.CategoryBilling, articles)

	require.True(t, draft.Backed)
	assert.Contains(t, draft.Body, "Double charge on invoice")
	assert.Contains(t, draft.Body, "billing")
	assert.Contains(t, draft.Body, "1. Requesting a refund")
	assert.Contains(t, draft.Body, "2. Understanding your invoice")
}

func TestComposeFallbackWithoutArticles(t *testing.T) {
	c := NewComposer()
	ticket := &domain.Ticket{Title: "Something odd"}

	draft := c.Compose(ticket, domain.CategoryOther, nil)

	assert.False(t, draft.Backed)
	assert.Contains(t, draft.Body, "could not match")
	assert.NotContains(t, draft.Body, "1.")
}

func TestComposeIsExtractive(t *testing.T) {
	c := NewComposer()
	ticket := &domain.Ticket{Title: "Broken login"}
	articles := []domain.KBArticle{
		{ID: "a1", Title: "Resetting your password", Body: "secret body text that must not leak"},
	}

	draft := c.Compose(ticket, domain.CategoryTech, articles)

	assert.Contains(t, draft.Body, "Resetting your password")
	assert.NotContains(t, draft.Body, "secret body text")
}

func TestComposeDeterministic(t *testing.T) {
	c := NewComposer()
	ticket := &domain.Ticket{Title: "Late parcel"}
	articles := []domain.KBArticle{{ID: "a1", Title: "Tracking your shipment"}}

	first := c.Compose(ticket, domain.CategoryShipping, articles)
	second := c.Compose(ticket, domain.CategoryShipping, articles)

	assert.Equal(t, first.Body, second.Body)
	assert.True(t, strings.HasPrefix(first.Body, "Hello,"))
}
