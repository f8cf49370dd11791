package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
	"github.com/spec-kit/smart-helpdesk/internal/repository"
	"github.com/spec-kit/smart-helpdesk/internal/triage"
)

func newKBFixture() (*KBService, *triage.ArticleIndex) {
	index := triage.NewArticleIndex()
	return NewKBService(repository.NewMemoryArticleRepository(), index, nil), index
}

func TestCreateArticleStartsAsDraft(t *testing.T) {
	ctx := context.Background()
	svc, index := newKBFixture()

	article, err := svc.CreateArticle(ctx, "admin-1", ArticleInput{
		Title: "Reset your password",
		Body:  "Use the reset link on the login page.",
		Tags:  []string{"Tech", "tech", " login "},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ArticleStatusDraft, article.Status)
	assert.Equal(t, []string{"tech", "login"}, article.Tags)

	// Drafts never enter the retrieval index.
	assert.Equal(t, 0, index.Len())
}

func TestPublishAddsArticleToIndex(t *testing.T) {
	ctx := context.Background()
	svc, index := newKBFixture()

	article, err := svc.CreateArticle(ctx, "admin-1", ArticleInput{Title: "Tracking a parcel", Body: "Check the courier tracking page."})
	require.NoError(t, err)

	published, err := svc.SetStatus(ctx, article.ID, domain.ArticleStatusPublished)
	require.NoError(t, err)
	assert.Equal(t, domain.ArticleStatusPublished, published.Status)
	assert.Equal(t, 1, index.Len())

	// Unpublishing evicts it again.
	_, err = svc.SetStatus(ctx, article.ID, domain.ArticleStatusDraft)
	require.NoError(t, err)
	assert.Equal(t, 0, index.Len())
}

func TestDeleteArticleRemovesFromIndex(t *testing.T) {
	ctx := context.Background()
	svc, index := newKBFixture()

	article, err := svc.CreateArticle(ctx, "admin-1", ArticleInput{Title: "Shipping delays", Body: "What to do when a shipment is delayed."})
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, article.ID, domain.ArticleStatusPublished)
	require.NoError(t, err)
	require.Equal(t, 1, index.Len())

	require.NoError(t, svc.DeleteArticle(ctx, article.ID))
	assert.Equal(t, 0, index.Len())

	_, err = svc.GetArticle(ctx, article.ID)
	require.Error(t, err)
}

func TestSearchPublishedExcludesDrafts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newKBFixture()

	draft, err := svc.CreateArticle(ctx, "admin-1", ArticleInput{Title: "Refund policy draft", Body: "Internal refund notes."})
	require.NoError(t, err)
	_ = draft

	published, err := svc.CreateArticle(ctx, "admin-1", ArticleInput{Title: "Refund policy", Body: "How refunds work."})
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, published.ID, domain.ArticleStatusPublished)
	require.NoError(t, err)

	results, err := svc.SearchPublished(ctx, "refund", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, published.ID, results[0].ID)
}

func TestUpdateArticleValidatesInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newKBFixture()

	article, err := svc.CreateArticle(ctx, "admin-1", ArticleInput{Title: "Login errors", Body: "Clear your cookies."})
	require.NoError(t, err)

	_, err = svc.UpdateArticle(ctx, article.ID, ArticleInput{Title: "", Body: "x"})
	require.Error(t, err)

	updated, err := svc.UpdateArticle(ctx, article.ID, ArticleInput{Title: "Login errors", Body: "Clear your cookies and retry."})
	require.NoError(t, err)
	assert.Contains(t, updated.Body, "retry")
}

func TestWarmIndexLoadsPublishedArticles(t *testing.T) {
	ctx := context.Background()
	articles := repository.NewMemoryArticleRepository()
	published := &domain.KBArticle{Title: "Invoice questions", Body: "Billing FAQ.", Status: domain.ArticleStatusPublished}
	require.NoError(t, articles.Create(ctx, published))
	draft := &domain.KBArticle{Title: "WIP", Body: "draft", Status: domain.ArticleStatusDraft}
	require.NoError(t, articles.Create(ctx, draft))

	index := triage.NewArticleIndex()
	svc := NewKBService(articles, index, nil)
	require.NoError(t, svc.WarmIndex(ctx))
	assert.Equal(t, 1, index.Len())
}
