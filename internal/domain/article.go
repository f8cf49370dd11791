package domain

import "time"

// ArticleStatus enumerates knowledge-base article lifecycle states.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "DRAFT"
	ArticleStatusPublished ArticleStatus = "PUBLISHED"
)

// KBArticle is a knowledge-base article. Only published articles are
// eligible for retrieval.
type KBArticle struct {
	ID        string
	Title     string
	Body      string
	Tags      []string
	Status    ArticleStatus
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Published reports whether the article is visible to retrieval.
func (a *KBArticle) Published() bool {
	return a.Status == ArticleStatusPublished
}
