package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
	"github.com/spec-kit/smart-helpdesk/internal/repository"
	apperrors "github.com/spec-kit/smart-helpdesk/pkg/util/errorutil"
)

// ConfigService exposes the triage decision policy to admins. Invalid
// values are rejected here, at update time, so the orchestrator can trust
// whatever it reads.
type ConfigService struct {
	policy repository.AgentConfigRepository
	logger *zap.Logger
}

// NewConfigService constructs the service.
func NewConfigService(policy repository.AgentConfigRepository, logger *zap.Logger) *ConfigService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigService{policy: policy, logger: logger}
}

// Get returns the current policy.
func (s *ConfigService) Get(ctx context.Context) (domain.AgentConfig, error) {
	cfg, err := s.policy.Get(ctx)
	if err != nil {
		return domain.AgentConfig{}, apperrors.MapError(err)
	}
	return cfg, nil
}

// Update validates and persists a new policy. The next triage run reads
// the new values; in-flight runs keep their snapshot.
func (s *ConfigService) Update(ctx context.Context, cfg domain.AgentConfig) (domain.AgentConfig, error) {
	if err := cfg.Validate(); err != nil {
		return domain.AgentConfig{}, apperrors.NewValidationError(err.Error(), nil)
	}
	if err := s.policy.Update(ctx, &cfg); err != nil {
		return domain.AgentConfig{}, apperrors.MapError(err)
	}
	s.logger.Info("agent config updated",
		zap.Bool("auto_close_enabled", cfg.AutoCloseEnabled),
		zap.Float64("confidence_threshold", cfg.ConfidenceThreshold),
		zap.Int("sla_hours", cfg.SLAHours),
	)
	return cfg, nil
}
