package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
)

// AgentConfigRepository stores the singleton triage policy record.
type AgentConfigRepository interface {
	// Get returns the current policy, seeding defaults on first read.
	Get(ctx context.Context) (domain.AgentConfig, error)
	Update(ctx context.Context, cfg *domain.AgentConfig) error
}

type agentConfigRepository struct {
	pool *pgxpool.Pool
}

// NewAgentConfigRepository instantiates repository.
func NewAgentConfigRepository(pool *pgxpool.Pool) AgentConfigRepository {
	return &agentConfigRepository{pool: pool}
}

func (r *agentConfigRepository) Get(ctx context.Context) (domain.AgentConfig, error) {
	const query = `
        SELECT auto_close_enabled, confidence_threshold, sla_hours, updated_at
        FROM agent_config WHERE id=1`
	var cfg domain.AgentConfig
	err := r.pool.QueryRow(ctx, query).Scan(
		&cfg.AutoCloseEnabled,
		&cfg.ConfidenceThreshold,
		&cfg.SLAHours,
		&cfg.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		cfg = domain.DefaultAgentConfig()
		if seedErr := r.seed(ctx, &cfg); seedErr != nil {
			return domain.AgentConfig{}, seedErr
		}
		return cfg, nil
	}
	if err != nil {
		return domain.AgentConfig{}, err
	}
	return cfg, nil
}

func (r *agentConfigRepository) seed(ctx context.Context, cfg *domain.AgentConfig) error {
	const query = `
        INSERT INTO agent_config (id, auto_close_enabled, confidence_threshold, sla_hours)
        VALUES (1,$1,$2,$3)
        ON CONFLICT (id) DO NOTHING
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		cfg.AutoCloseEnabled,
		cfg.ConfidenceThreshold,
		cfg.SLAHours,
	).Scan(&cfg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the seeding race; the stored row wins.
		return r.pool.QueryRow(ctx,
			`SELECT auto_close_enabled, confidence_threshold, sla_hours, updated_at FROM agent_config WHERE id=1`,
		).Scan(&cfg.AutoCloseEnabled, &cfg.ConfidenceThreshold, &cfg.SLAHours, &cfg.UpdatedAt)
	}
	return err
}

func (r *agentConfigRepository) Update(ctx context.Context, cfg *domain.AgentConfig) error {
	const query = `
        INSERT INTO agent_config (id, auto_close_enabled, confidence_threshold, sla_hours)
        VALUES (1,$1,$2,$3)
        ON CONFLICT (id) DO UPDATE SET
            auto_close_enabled=EXCLUDED.auto_close_enabled,
            confidence_threshold=EXCLUDED.confidence_threshold,
            sla_hours=EXCLUDED.sla_hours,
            updated_at=NOW()
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		cfg.AutoCloseEnabled,
		cfg.ConfidenceThreshold,
		cfg.SLAHours,
	).Scan(&cfg.UpdatedAt)
}
