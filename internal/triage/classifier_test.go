package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
)

func TestClassifyBillingText(t *testing.T) {
	c := NewClassifier()

	result := c.Classify("My invoice shows a double charge, please refund")

	assert.Equal(t, domain.CategoryBilling, result.Category)
	assert.GreaterOrEqual(t, result.Confidence, 0.5)
	assert.LessOrEqual(t, result.Confidence, 1.0)
}

func TestClassifyCategories(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name     string
		text     string
		category domain.TicketCategory
	}{
		{"tech crash", "the app shows an error and then a crash", domain.CategoryTech},
		{"shipping delay", "my package delivery is delayed, tracking shows nothing", domain.CategoryShipping},
		{"billing refund", "refund for the duplicate invoice payment", domain.CategoryBilling},
		{"no signal", "hello", domain.CategoryOther},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := c.Classify(tc.text)
			assert.Equal(t, tc.category, result.Category)
		})
	}
}

func TestClassifyNoMatchesZeroConfidence(t *testing.T) {
	c := NewClassifier()

	result := c.Classify("hello")

	assert.Equal(t, domain.CategoryOther, result.Category)
	assert.Zero(t, result.Confidence)
}

func TestClassifyIsPure(t *testing.T) {
	c := NewClassifier()
	const text = "refund the invoice, the checkout page shows an error"

	first := c.Classify(text)
	for i := 0; i < 10; i++ {
		again := c.Classify(text)
		require.Equal(t, first.Category, again.Category)
		require.Equal(t, first.Confidence, again.Confidence)
	}
}

func TestClassifyTieBreaksByPrecedence(t *testing.T) {
	c := NewClassifier()

	// One billing hit and one tech hit; billing wins the tie.
	result := c.Classify("refund after the error")

	assert.Equal(t, domain.CategoryBilling, result.Category)
}

func TestClassifyMixedEvidenceLowersConfidence(t *testing.T) {
	c := NewClassifier()

	pure := c.Classify("refund invoice charge")
	mixed := c.Classify("refund invoice charge error crash")

	require.Equal(t, domain.CategoryBilling, pure.Category)
	require.Equal(t, domain.CategoryBilling, mixed.Category)
	assert.Greater(t, pure.Confidence, mixed.Confidence)
}

func TestClassifyConfidenceBounds(t *testing.T) {
	c := NewClassifier()

	texts := []string{
		"",
		"hello there",
		"refund",
		"refund invoice charge payment billing subscription fee charged",
		"error bug crash refund package",
	}
	for _, text := range texts {
		result := c.Classify(text)
		assert.GreaterOrEqual(t, result.Confidence, 0.0, "text %q", text)
		assert.LessOrEqual(t, result.Confidence, 1.0, "text %q", text)
	}
}
