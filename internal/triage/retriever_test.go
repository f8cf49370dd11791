package triage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
)

func indexWith(articles ...domain.KBArticle) *ArticleIndex {
	idx := NewArticleIndex()
	for _, article := range articles {
		idx.Upsert(article)
	}
	return idx
}

func publishedArticle(id, title, body string, tags []string, updated time.Time) domain.KBArticle {
	return domain.KBArticle{
		ID:        id,
		Title:     title,
		Body:      body,
		Tags:      tags,
		Status:    domain.ArticleStatusPublished,
		UpdatedAt: updated,
	}
}

func TestRetrieveOnlyPublished(t *testing.T) {
	now := time.Now()
	draft := publishedArticle("a1", "How refunds work", "refund policy details", nil, now)
	draft.Status = domain.ArticleStatusDraft
	idx := indexWith(
		draft,
		publishedArticle("a2", "Requesting a refund", "refund steps", nil, now),
	)

	r := NewRetriever(idx)
	got := r.Retrieve([]string{"refund"}, domain.CategoryBilling, 5)

	require.Len(t, got, 1)
	assert.Equal(t, "a2", got[0].ID)
}

func TestRetrieveRespectsLimit(t *testing.T) {
	now := time.Now()
	idx := indexWith(
		publishedArticle("a1", "refund guide", "refund", nil, now),
		publishedArticle("a2", "refund faq", "refund", nil, now.Add(-time.Hour)),
		publishedArticle("a3", "refund policy", "refund", nil, now.Add(-2*time.Hour)),
		publishedArticle("a4", "refund timing", "refund", nil, now.Add(-3*time.Hour)),
	)

	r := NewRetriever(idx)
	got := r.Retrieve([]string{"refund"}, domain.CategoryBilling, 3)

	assert.Len(t, got, 3)
}

func TestRetrieveOrdering(t *testing.T) {
	now := time.Now()
	idx := indexWith(
		// Two term hits in title → score 4.
		publishedArticle("b", "refund refund", "", nil, now.Add(-time.Hour)),
		// One title hit → score 2; newer than "c".
		publishedArticle("a", "refund", "", nil, now),
		// One title hit → same score as "a", older.
		publishedArticle("c", "refund", "", nil, now.Add(-2*time.Hour)),
	)

	r := NewRetriever(idx)
	got := r.Retrieve([]string{"refund"}, domain.CategoryOther, 5)

	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, "c", got[2].ID)
}

func TestRetrieveTimestampTieBreaksByID(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	idx := indexWith(
		publishedArticle("z", "refund", "", nil, ts),
		publishedArticle("a", "refund", "", nil, ts),
	)

	r := NewRetriever(idx)
	got := r.Retrieve([]string{"refund"}, domain.CategoryOther, 5)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "z", got[1].ID)
}

func TestRetrieveCategoryTagBonus(t *testing.T) {
	now := time.Now()
	idx := indexWith(
		publishedArticle("tagged", "payments overview", "general info", []string{"billing"}, now.Add(-time.Hour)),
		publishedArticle("untagged", "payments overview", "general info", nil, now),
	)

	r := NewRetriever(idx)
	got := r.Retrieve([]string{"payments"}, domain.CategoryBilling, 5)

	require.Len(t, got, 2)
	assert.Equal(t, "tagged", got[0].ID)
}

func TestRetrieveNoMatchesIsEmptyNotError(t *testing.T) {
	idx := indexWith(
		publishedArticle("a1", "shipping times", "delivery windows", nil, time.Now()),
	)

	r := NewRetriever(idx)
	got := r.Retrieve([]string{"quantum"}, domain.CategoryOther, 5)

	assert.Empty(t, got)
}

func TestRetrieveDeterministicForIdenticalInputs(t *testing.T) {
	now := time.Now()
	idx := indexWith(
		publishedArticle("a1", "refund guide", "refund refund", []string{"billing"}, now),
		publishedArticle("a2", "refund faq", "refund", nil, now.Add(-time.Minute)),
		publishedArticle("a3", "payment errors", "charge failed", []string{"billing"}, now.Add(-2*time.Minute)),
	)

	r := NewRetriever(idx)
	first := r.Retrieve([]string{"refund", "charge"}, domain.CategoryBilling, 3)
	for i := 0; i < 5; i++ {
		again := r.Retrieve([]string{"refund", "charge"}, domain.CategoryBilling, 3)
		require.Equal(t, len(first), len(again))
		for j := range first {
			require.Equal(t, first[j].ID, again[j].ID)
		}
	}
}
