package dto

import (
	"time"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
)

// ArticleRequest payload for create and update.
type ArticleRequest struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

// ArticleStatusRequest payload for publish/unpublish.
type ArticleStatusRequest struct {
	Status domain.ArticleStatus `json:"status"`
}

// ArticleResponse full article view for staff.
type ArticleResponse struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	Body      string               `json:"body"`
	Tags      []string             `json:"tags"`
	Status    domain.ArticleStatus `json:"status"`
	CreatedBy string               `json:"created_by"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// NewArticleResponse maps a domain article.
func NewArticleResponse(article *domain.KBArticle) ArticleResponse {
	return ArticleResponse{
		ID:        article.ID,
		Title:     article.Title,
		Body:      article.Body,
		Tags:      article.Tags,
		Status:    article.Status,
		CreatedBy: article.CreatedBy,
		CreatedAt: article.CreatedAt,
		UpdatedAt: article.UpdatedAt,
	}
}
