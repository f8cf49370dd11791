package triage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
	"github.com/spec-kit/smart-helpdesk/internal/repository"
)

func TestIndexUpsertDropsUnpublished(t *testing.T) {
	idx := NewArticleIndex()

	article := domain.KBArticle{ID: "a1", Title: "Refunds", Status: domain.ArticleStatusPublished}
	idx.Upsert(article)
	require.Equal(t, 1, idx.Len())

	article.Status = domain.ArticleStatusDraft
	idx.Upsert(article)
	assert.Zero(t, idx.Len())
}

func TestIndexRefreshFromRepository(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryArticleRepository()

	published := &domain.KBArticle{Title: "Refunds", Status: domain.ArticleStatusPublished}
	draft := &domain.KBArticle{Title: "WIP", Status: domain.ArticleStatusDraft}
	require.NoError(t, repo.Create(ctx, published))
	require.NoError(t, repo.Create(ctx, draft))

	idx := NewArticleIndex()
	require.NoError(t, idx.Refresh(ctx, repo))

	require.Equal(t, 1, idx.Len())
	assert.Equal(t, published.ID, idx.Snapshot()[0].ID)
}

func TestIndexRemove(t *testing.T) {
	idx := NewArticleIndex()
	idx.Upsert(domain.KBArticle{ID: "a1", Status: domain.ArticleStatusPublished})

	idx.Remove("a1")

	assert.Zero(t, idx.Len())
}

func TestIndexConcurrentAccess(t *testing.T) {
	idx := NewArticleIndex()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			idx.Upsert(domain.KBArticle{ID: string(rune('a' + n)), Status: domain.ArticleStatusPublished})
		}(i)
		go func() {
			defer wg.Done()
			_ = idx.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, idx.Len())
}
