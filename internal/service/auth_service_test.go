package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/smart-helpdesk/internal/config"
	"github.com/spec-kit/smart-helpdesk/internal/domain"
	"github.com/spec-kit/smart-helpdesk/internal/repository"
)

func newAuthFixture() (*AuthService, *repository.MemoryUserRepository) {
	users := repository.NewMemoryUserRepository()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 15,
			BcryptCost:            4,
		},
	}
	return NewAuthService(cfg, users), users
}

func TestRegisterCreatesUserRoleAccount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthFixture()

	user, token, expiresAt, err := svc.Register(ctx, "Jamie", "Jamie@Example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, "jamie@example.com", user.Email)
	assert.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())
	assert.NotEqual(t, "hunter22", user.PasswordHash)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthFixture()

	_, _, _, err := svc.Register(ctx, "Jamie", "jamie@example.com", "hunter22")
	require.NoError(t, err)

	_, _, _, err = svc.Register(ctx, "Imposter", "jamie@example.com", "other")
	require.Error(t, err)
}

func TestLoginVerifiesPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthFixture()

	registered, _, _, err := svc.Register(ctx, "Jamie", "jamie@example.com", "hunter22")
	require.NoError(t, err)

	user, token, _, err := svc.Login(ctx, "jamie@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)

	_, _, _, err = svc.Login(ctx, "jamie@example.com", "wrong")
	require.Error(t, err)

	_, _, _, err = svc.Login(ctx, "nobody@example.com", "hunter22")
	require.Error(t, err)
}

func TestIssuedTokenRoundTrips(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthFixture()

	user, token, _, err := svc.Register(ctx, "Jamie", "jamie@example.com", "hunter22")
	require.NoError(t, err)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)
}
