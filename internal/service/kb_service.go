package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
	"github.com/spec-kit/smart-helpdesk/internal/repository"
	"github.com/spec-kit/smart-helpdesk/internal/triage"
	apperrors "github.com/spec-kit/smart-helpdesk/pkg/util/errorutil"
)

// KBService manages knowledge-base articles and keeps the retrieval index
// in sync with every mutation.
type KBService struct {
	articles repository.ArticleRepository
	index    *triage.ArticleIndex
	logger   *zap.Logger
}

// NewKBService constructs the service.
func NewKBService(articles repository.ArticleRepository, index *triage.ArticleIndex, logger *zap.Logger) *KBService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KBService{articles: articles, index: index, logger: logger}
}

// ArticleInput describes create/update payloads.
type ArticleInput struct {
	Title string
	Body  string
	Tags  []string
}

// WarmIndex loads published articles into the retrieval index at startup.
func (s *KBService) WarmIndex(ctx context.Context) error {
	if err := s.index.Refresh(ctx, s.articles); err != nil {
		return err
	}
	s.logger.Info("article index warmed", zap.Int("articles", s.index.Len()))
	return nil
}

// CreateArticle stores a new draft article.
func (s *KBService) CreateArticle(ctx context.Context, creatorID string, input ArticleInput) (*domain.KBArticle, error) {
	if err := validateArticleInput(input); err != nil {
		return nil, err
	}
	article := &domain.KBArticle{
		Title:     strings.TrimSpace(input.Title),
		Body:      input.Body,
		Tags:      normalizeTags(input.Tags),
		Status:    domain.ArticleStatusDraft,
		CreatedBy: creatorID,
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, apperrors.MapError(err)
	}
	return article, nil
}

// UpdateArticle edits an article in place.
func (s *KBService) UpdateArticle(ctx context.Context, id string, input ArticleInput) (*domain.KBArticle, error) {
	if err := validateArticleInput(input); err != nil {
		return nil, err
	}
	article, err := s.getArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	article.Title = strings.TrimSpace(input.Title)
	article.Body = input.Body
	article.Tags = normalizeTags(input.Tags)
	if err := s.articles.Update(ctx, article); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.index.Upsert(*article)
	return article, nil
}

// SetStatus publishes or unpublishes an article.
func (s *KBService) SetStatus(ctx context.Context, id string, status domain.ArticleStatus) (*domain.KBArticle, error) {
	if status != domain.ArticleStatusDraft && status != domain.ArticleStatusPublished {
		return nil, apperrors.NewValidationError("unknown article status", map[string]any{"status": status})
	}
	article, err := s.getArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	article.Status = status
	if err := s.articles.Update(ctx, article); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.index.Upsert(*article)
	return article, nil
}

// DeleteArticle removes an article and its index entry.
func (s *KBService) DeleteArticle(ctx context.Context, id string) error {
	if err := s.articles.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("article", map[string]any{"article_id": id})
		}
		return apperrors.MapError(err)
	}
	s.index.Remove(id)
	return nil
}

// GetArticle fetches one article.
func (s *KBService) GetArticle(ctx context.Context, id string) (*domain.KBArticle, error) {
	return s.getArticle(ctx, id)
}

// ListArticles returns articles matching the filter.
func (s *KBService) ListArticles(ctx context.Context, filter repository.ArticleFilter) ([]domain.KBArticle, error) {
	articles, err := s.articles.ListWithFilter(ctx, filter)
	return articles, apperrors.MapError(err)
}

// SearchPublished is the end-user KB search: published articles only.
func (s *KBService) SearchPublished(ctx context.Context, query string, limit int) ([]domain.KBArticle, error) {
	status := domain.ArticleStatusPublished
	filter := repository.ArticleFilter{Status: &status, Limit: limit}
	if strings.TrimSpace(query) != "" {
		q := query
		filter.SearchTerm = &q
	}
	articles, err := s.articles.ListWithFilter(ctx, filter)
	return articles, apperrors.MapError(err)
}

func (s *KBService) getArticle(ctx context.Context, id string) (*domain.KBArticle, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("article", map[string]any{"article_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return article, nil
}

func validateArticleInput(input ArticleInput) error {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Body) == "" {
		return apperrors.NewValidationError("title and body required", nil)
	}
	return nil
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
