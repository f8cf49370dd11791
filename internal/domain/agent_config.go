package domain

import (
	"fmt"
	"time"
)

// AgentConfig controls the triage decision policy. A single record exists;
// it is read fresh at the start of every triage run and passed by value
// into the orchestrator.
type AgentConfig struct {
	AutoCloseEnabled    bool
	ConfidenceThreshold float64
	SLAHours            int
	UpdatedAt           time.Time
}

// DefaultAgentConfig returns the configuration the system starts with.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		AutoCloseEnabled:    true,
		ConfidenceThreshold: 0.78,
		SLAHours:            24,
	}
}

// Validate rejects out-of-range values at update time so triage never has
// to re-check them.
func (c AgentConfig) Validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold %.3f outside [0,1]", c.ConfidenceThreshold)
	}
	if c.SLAHours < 1 {
		return fmt.Errorf("sla hours must be >= 1, got %d", c.SLAHours)
	}
	return nil
}

// SLADuration returns the SLA window as a duration.
func (c AgentConfig) SLADuration() time.Duration {
	return time.Duration(c.SLAHours) * time.Hour
}
