package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"calibrify/internal/dto"
	"calibrify/internal/entities"
	"calibrify/pkg/config"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/service"
	"calibrify/pkg/utils"
)

func newAuthFixture(t *testing.T) (AuthServiceInterface, *fakeCache, service.JWTService) {
	t.Helper()
	hash, err := utils.HashPassword("s3cret-pass")
	require.NoError(t, err)

	users := &fakeUserRepo{users: map[string]*entities.User{
		"alice": {ID: 1, Username: "alice", Password: hash, IsStaff: true, IsActive: true},
		"bob":   {ID: 2, Username: "bob", Password: hash, IsActive: false},
	}}
	cache := newFakeCache()
	logger := zap.NewNop()
	jwtSvc := service.NewJWTService("test-secret", time.Minute, time.Hour, logger)
	cfg := config.AuthConfig{MaxLoginAttempts: 3, LockoutDuration: 15 * time.Minute}
	return NewAuthService(users, cache, jwtSvc, cfg, logger), cache, jwtSvc
}

func TestAuthService_LoginIssuesTokens(t *testing.T) {
	svc, _, jwtSvc := newAuthFixture(t)

	res, err := svc.Login(context.Background(), dto.LoginDTO{Username: " alice ", Password: "s3cret-pass"})
	require.NoError(t, err)

	assert.Equal(t, "alice", res.User.Username)
	claims, err := jwtSvc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), claims.UserID)
	assert.True(t, claims.IsStaff)
	assert.False(t, claims.IsRefreshToken)
}

func TestAuthService_LoginWrongPasswordAndUnknownUser(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "nope"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginDTO{Username: "mallory", Password: "nope"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials, "неизвестный пользователь неотличим от неверного пароля")
}

func TestAuthService_LoginInactiveUser(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginDTO{Username: "bob", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, apperrors.ErrUserDisabled)
}

func TestAuthService_LockoutAfterMaxAttempts(t *testing.T) {
	svc, cache, _ := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "wrong"})
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	}
	assert.Contains(t, cache.data, "lockout:alice")

	// даже верный пароль не проходит, пока действует блокировка
	_, err := svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, apperrors.ErrTooManyAttempts)
}

func TestAuthService_SuccessResetsAttempts(t *testing.T) {
	svc, cache, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "wrong"})
	require.Error(t, err)
	require.Contains(t, cache.data, "login_attempts:alice")

	_, err = svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotContains(t, cache.data, "login_attempts:alice")
}

func TestAuthService_RefreshToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "s3cret-pass"})
	require.NoError(t, err)

	res, err := svc.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)

	_, err = svc.RefreshToken(ctx, login.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenIsNotRefresh)
}
