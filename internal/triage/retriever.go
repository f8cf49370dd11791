package triage

import (
	"sort"
	"strings"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
)

const (
	// DefaultRetrieveLimit caps how many articles a triage run cites.
	DefaultRetrieveLimit = 3

	titleWeight      = 2
	categoryTagBonus = 3
)

// Retriever ranks published knowledge-base articles against query terms.
type Retriever struct {
	index *ArticleIndex
}

// NewRetriever builds a retriever over the given index.
func NewRetriever(index *ArticleIndex) *Retriever {
	return &Retriever{index: index}
}

// Retrieve returns at most limit articles ordered by relevance. Score is
// term occurrences in the title (weighted) plus occurrences in the body,
// plus a fixed bonus when the article's tags intersect the category name.
// Ties break by most recent update, then ascending ID, so identical
// inputs over identical data always return the same sequence. An empty
// result is not an error.
func (r *Retriever) Retrieve(terms []string, category domain.TicketCategory, limit int) []domain.KBArticle {
	if limit <= 0 {
		limit = DefaultRetrieveLimit
	}

	type scored struct {
		article domain.KBArticle
		score   int
	}

	categoryName := strings.ToLower(string(category))
	var matches []scored
	for _, article := range r.index.Snapshot() {
		score := scoreArticle(article, terms, categoryName)
		if score <= 0 {
			continue
		}
		matches = append(matches, scored{article: article, score: score})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		if !matches[i].article.UpdatedAt.Equal(matches[j].article.UpdatedAt) {
			return matches[i].article.UpdatedAt.After(matches[j].article.UpdatedAt)
		}
		return matches[i].article.ID < matches[j].article.ID
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	result := make([]domain.KBArticle, 0, len(matches))
	for _, m := range matches {
		result = append(result, m.article)
	}
	return result
}

func scoreArticle(article domain.KBArticle, terms []string, categoryName string) int {
	title := strings.ToLower(article.Title)
	body := strings.ToLower(article.Body)

	score := 0
	for _, term := range terms {
		term = strings.ToLower(term)
		if term == "" {
			continue
		}
		score += titleWeight * strings.Count(title, term)
		score += strings.Count(body, term)
	}
	for _, tag := range article.Tags {
		if strings.EqualFold(tag, categoryName) {
			score += categoryTagBonus
			break
		}
	}
	return score
}
