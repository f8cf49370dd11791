package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/smart-helpdesk/internal/api/dto"
	"github.com/spec-kit/smart-helpdesk/internal/auth"
	"github.com/spec-kit/smart-helpdesk/internal/domain"
	"github.com/spec-kit/smart-helpdesk/internal/repository"
	"github.com/spec-kit/smart-helpdesk/internal/service"
	apperrors "github.com/spec-kit/smart-helpdesk/pkg/util/errorutil"
)

// KBHandler manages knowledge-base endpoints.
type KBHandler struct {
	service *service.KBService
}

// NewKBHandler constructs handler.
func NewKBHandler(kbService *service.KBService) *KBHandler {
	return &KBHandler{service: kbService}
}

// Search GET /kb/search. Public surface: published articles only.
func (h *KBHandler) Search(c *fiber.Ctx) error {
	limit, _ := parsePagination(c)
	articles, err := h.service.SearchPublished(c.UserContext(), c.Query("q"), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": articleResponses(articles)})
}

// List GET /kb/articles. Staff surface: drafts included.
func (h *KBHandler) List(c *fiber.Ctx) error {
	filter := repository.ArticleFilter{}
	filter.Limit, filter.Offset = parsePagination(c)
	if raw := strings.ToUpper(strings.TrimSpace(c.Query("status"))); raw != "" {
		status := domain.ArticleStatus(raw)
		filter.Status = &status
	}
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		filter.SearchTerm = &search
	}
	articles, err := h.service.ListArticles(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": articleResponses(articles)})
}

// Get GET /kb/articles/:id.
func (h *KBHandler) Get(c *fiber.Ctx) error {
	article, err := h.service.GetArticle(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewArticleResponse(article)})
}

// Create POST /kb/articles.
func (h *KBHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.ArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	article, err := h.service.CreateArticle(c.UserContext(), principal.User.ID, service.ArticleInput{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewArticleResponse(article)})
}

// Update PUT /kb/articles/:id.
func (h *KBHandler) Update(c *fiber.Ctx) error {
	var req dto.ArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	article, err := h.service.UpdateArticle(c.UserContext(), c.Params("id"), service.ArticleInput{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewArticleResponse(article)})
}

// SetStatus PATCH /kb/articles/:id/status.
func (h *KBHandler) SetStatus(c *fiber.Ctx) error {
	var req dto.ArticleStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	article, err := h.service.SetStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewArticleResponse(article)})
}

// Delete DELETE /kb/articles/:id.
func (h *KBHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.DeleteArticle(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func articleResponses(articles []domain.KBArticle) []dto.ArticleResponse {
	items := make([]dto.ArticleResponse, 0, len(articles))
	for i := range articles {
		items = append(items, dto.NewArticleResponse(&articles[i]))
	}
	return items
}
