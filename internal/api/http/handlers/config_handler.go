package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/smart-helpdesk/internal/api/dto"
	"github.com/spec-kit/smart-helpdesk/internal/domain"
	"github.com/spec-kit/smart-helpdesk/internal/service"
	apperrors "github.com/spec-kit/smart-helpdesk/pkg/util/errorutil"
)

// ConfigHandler exposes the triage policy to admins.
type ConfigHandler struct {
	service *service.ConfigService
}

// NewConfigHandler constructs handler.
func NewConfigHandler(configService *service.ConfigService) *ConfigHandler {
	return &ConfigHandler{service: configService}
}

// Get GET /config/agent.
func (h *ConfigHandler) Get(c *fiber.Ctx) error {
	cfg, err := h.service.Get(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAgentConfigResponse(cfg)})
}

// Update PUT /config/agent.
func (h *ConfigHandler) Update(c *fiber.Ctx) error {
	var req dto.AgentConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	cfg, err := h.service.Update(c.UserContext(), domain.AgentConfig{
		AutoCloseEnabled:    req.AutoCloseEnabled,
		ConfidenceThreshold: req.ConfidenceThreshold,
		SLAHours:            req.SLAHours,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAgentConfigResponse(cfg)})
}
