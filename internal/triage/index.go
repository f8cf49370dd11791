package triage

import (
	"context"
	"sync"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
	"github.com/spec-kit/smart-helpdesk/internal/repository"
)

// ArticleIndex is an in-memory snapshot of published knowledge-base
// articles. The retriever searches it; the KB service keeps it in sync
// with the article repository on every mutation.
type ArticleIndex struct {
	mu       sync.RWMutex
	articles map[string]domain.KBArticle
}

// NewArticleIndex creates an empty index.
func NewArticleIndex() *ArticleIndex {
	return &ArticleIndex{articles: make(map[string]domain.KBArticle)}
}

// Refresh replaces the index contents with the published articles from
// the repository.
func (idx *ArticleIndex) Refresh(ctx context.Context, repo repository.ArticleRepository) error {
	published, err := repo.ListPublished(ctx)
	if err != nil {
		return err
	}
	next := make(map[string]domain.KBArticle, len(published))
	for _, article := range published {
		next[article.ID] = article
	}
	idx.mu.Lock()
	idx.articles = next
	idx.mu.Unlock()
	return nil
}

// Upsert adds or replaces one article. Unpublished articles are removed
// instead so the index only ever holds retrievable entries.
func (idx *ArticleIndex) Upsert(article domain.KBArticle) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !article.Published() {
		delete(idx.articles, article.ID)
		return
	}
	idx.articles[article.ID] = article
}

// Remove drops an article from the index.
func (idx *ArticleIndex) Remove(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.articles, id)
}

// Len reports the number of indexed articles.
func (idx *ArticleIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.articles)
}

// Snapshot returns a copy of the indexed articles.
func (idx *ArticleIndex) Snapshot() []domain.KBArticle {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]domain.KBArticle, 0, len(idx.articles))
	for _, article := range idx.articles {
		out = append(out, article)
	}
	return out
}
