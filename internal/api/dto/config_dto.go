package dto

import (
	"time"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
)

// AgentConfigRequest payload for policy updates.
type AgentConfigRequest struct {
	AutoCloseEnabled    bool    `json:"auto_close_enabled"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	SLAHours            int     `json:"sla_hours"`
}

// AgentConfigResponse current policy view.
type AgentConfigResponse struct {
	AutoCloseEnabled    bool      `json:"auto_close_enabled"`
	ConfidenceThreshold float64   `json:"confidence_threshold"`
	SLAHours            int       `json:"sla_hours"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NewAgentConfigResponse maps the domain policy.
func NewAgentConfigResponse(cfg domain.AgentConfig) AgentConfigResponse {
	return AgentConfigResponse{
		AutoCloseEnabled:    cfg.AutoCloseEnabled,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		SLAHours:            cfg.SLAHours,
		UpdatedAt:           cfg.UpdatedAt,
	}
}
