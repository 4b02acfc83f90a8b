package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focusflow/core/internal/domain/entities"
	"github.com/focusflow/core/internal/infrastructure/config"
	"github.com/focusflow/core/internal/infrastructure/logger"
	"github.com/focusflow/core/internal/ports"
)

func newTestAuthService(userRepo *fakeUserRepo, authRepo *fakeAuthRepo) *AuthService {
	cfg := config.JWTConfig{
		Secret:           "test-secret",
		ExpiresIn:        15 * time.Minute,
		RefreshExpiresIn: 7 * 24 * time.Hour,
		Issuer:           "focusflow-test",
	}
	return NewAuthService(userRepo, authRepo, cfg, logger.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	userRepo := newFakeUserRepo()
	authRepo := newFakeAuthRepo()
	svc := newTestAuthService(userRepo, authRepo)
	ctx := context.Background()

	resp, err := svc.Register(ctx, ports.RegisterRequest{
		Email:    "fox@example.com",
		Username: "quietfox",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, entities.UserRoleUser, resp.User.Role)
	assert.Equal(t, "UTC", resp.User.Timezone, "timezone defaults to UTC")
	assert.Empty(t, resp.User.PasswordHash)

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, ports.RegisterRequest{
			Email:    "fox@example.com",
			Username: "otherfox",
			Password: "hunter2hunter2",
		})
		assert.Error(t, err)
	})

	t.Run("login with valid credentials", func(t *testing.T) {
		login, err := svc.Login(ctx, ports.LoginRequest{
			Email:    "fox@example.com",
			Password: "hunter2hunter2",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, login.AccessToken)

		claims, err := svc.ValidateToken(login.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID.String(), claims.UserID)
		assert.Equal(t, "fox@example.com", claims.Email)
	})

	t.Run("login with wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, ports.LoginRequest{
			Email:    "fox@example.com",
			Password: "wrong-password",
		})
		assert.Error(t, err)
	})
}

func TestRefreshTokenRotation(t *testing.T) {
	userRepo := newFakeUserRepo()
	authRepo := newFakeAuthRepo()
	svc := newTestAuthService(userRepo, authRepo)
	ctx := context.Background()

	resp, err := svc.Register(ctx, ports.RegisterRequest{
		Email:    "owl@example.com",
		Username: "nightowl",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, rotated.RefreshToken)

	// The old token is revoked after rotation.
	_, err = svc.RefreshToken(ctx, resp.RefreshToken)
	assert.Error(t, err)

	// The new token still works.
	_, err = svc.RefreshToken(ctx, rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestLogoutRevokesTokens(t *testing.T) {
	userRepo := newFakeUserRepo()
	authRepo := newFakeAuthRepo()
	svc := newTestAuthService(userRepo, authRepo)
	ctx := context.Background()

	resp, err := svc.Register(ctx, ports.RegisterRequest{
		Email:    "cat@example.com",
		Username: "sleepycat",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.User.ID))

	_, err = svc.RefreshToken(ctx, resp.RefreshToken)
	assert.Error(t, err, "refresh tokens are dead after logout")
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo(), newFakeAuthRepo())

	_, err := svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)

	other := newTestAuthService(newFakeUserRepo(), newFakeAuthRepo())
	other.jwtConfig.Secret = "different-secret"

	resp, err := other.Register(context.Background(), ports.RegisterRequest{
		Email:    "imposter@example.com",
		Username: "imposter",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken)
	assert.Error(t, err, "tokens signed with another secret must fail")
}
