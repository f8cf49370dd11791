package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/smart-helpdesk/internal/domain"
	"github.com/spec-kit/smart-helpdesk/internal/repository"
)

func TestConfigGetReturnsDefaults(t *testing.T) {
	svc := NewConfigService(repository.NewMemoryAgentConfigRepository(), nil)

	cfg, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, cfg.AutoCloseEnabled)
	assert.InDelta(t, 0.78, cfg.ConfidenceThreshold, 1e-9)
	assert.Equal(t, 24, cfg.SLAHours)
}

func TestConfigUpdateRejectsOutOfRangeValues(t *testing.T) {
	svc := NewConfigService(repository.NewMemoryAgentConfigRepository(), nil)
	ctx := context.Background()

	cases := []domain.AgentConfig{
		{AutoCloseEnabled: true, ConfidenceThreshold: 1.2, SLAHours: 24},
		{AutoCloseEnabled: true, ConfidenceThreshold: -0.1, SLAHours: 24},
		{AutoCloseEnabled: true, ConfidenceThreshold: 0.5, SLAHours: 0},
	}
	for _, invalid := range cases {
		_, err := svc.Update(ctx, invalid)
		require.Error(t, err)
	}

	// Rejected updates must not touch the stored policy.
	stored, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.78, stored.ConfidenceThreshold, 1e-9)
}

func TestConfigUpdatePersistsValidPolicy(t *testing.T) {
	svc := NewConfigService(repository.NewMemoryAgentConfigRepository(), nil)
	ctx := context.Background()

	updated, err := svc.Update(ctx, domain.AgentConfig{
		AutoCloseEnabled:    false,
		ConfidenceThreshold: 0.9,
		SLAHours:            48,
	})
	require.NoError(t, err)
	assert.False(t, updated.AutoCloseEnabled)

	stored, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.False(t, stored.AutoCloseEnabled)
	assert.InDelta(t, 0.9, stored.ConfidenceThreshold, 1e-9)
	assert.Equal(t, 48, stored.SLAHours)
}

// Threshold boundaries 0 and 1 are both legal.
func TestConfigUpdateAcceptsBoundaryThresholds(t *testing.T) {
	svc := NewConfigService(repository.NewMemoryAgentConfigRepository(), nil)
	ctx := context.Background()

	for _, threshold := range []float64{0, 1} {
		_, err := svc.Update(ctx, domain.AgentConfig{
			AutoCloseEnabled:    true,
			ConfidenceThreshold: threshold,
			SLAHours:            24,
		})
		require.NoError(t, err)
	}
}
