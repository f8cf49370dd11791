package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
)

// SuggestionRepository stores triage suggestions. Suggestions are never
// mutated; each triage run creates a new record.
type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *domain.Suggestion) error
	GetByID(ctx context.Context, id string) (*domain.Suggestion, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Suggestion, error)
}

type suggestionRepository struct {
	pool *pgxpool.Pool
}

// NewSuggestionRepository instantiates repository.
func NewSuggestionRepository(pool *pgxpool.Pool) SuggestionRepository {
	return &suggestionRepository{pool: pool}
}

func (r *suggestionRepository) Create(ctx context.Context, suggestion *domain.Suggestion) error {
	const query = `
        INSERT INTO suggestions (ticket_id, predicted_category, confidence, article_ids, draft_reply, auto_closed)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		suggestion.TicketID,
		suggestion.PredictedCategory,
		suggestion.Confidence,
		suggestion.ArticleIDs,
		suggestion.DraftReply,
		suggestion.AutoClosed,
	).Scan(&suggestion.ID, &suggestion.CreatedAt)
}

func (r *suggestionRepository) GetByID(ctx context.Context, id string) (*domain.Suggestion, error) {
	const query = `
        SELECT id, ticket_id, predicted_category, confidence, article_ids, draft_reply, auto_closed, created_at
        FROM suggestions WHERE id=$1`
	var suggestion domain.Suggestion
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&suggestion.ID,
		&suggestion.TicketID,
		&suggestion.PredictedCategory,
		&suggestion.Confidence,
		&suggestion.ArticleIDs,
		&suggestion.DraftReply,
		&suggestion.AutoClosed,
		&suggestion.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &suggestion, nil
}

func (r *suggestionRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Suggestion, error) {
	const query = `
        SELECT id, ticket_id, predicted_category, confidence, article_ids, draft_reply, auto_closed, created_at
        FROM suggestions WHERE ticket_id=$1 ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Suggestion
	for rows.Next() {
		var suggestion domain.Suggestion
		if err := rows.Scan(
			&suggestion.ID,
			&suggestion.TicketID,
			&suggestion.PredictedCategory,
			&suggestion.Confidence,
			&suggestion.ArticleIDs,
			&suggestion.DraftReply,
			&suggestion.AutoClosed,
			&suggestion.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, suggestion)
	}
	return result, rows.Err()
}
