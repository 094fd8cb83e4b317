package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"calibrify/internal/dto"
	"calibrify/internal/entities"
	"calibrify/internal/repositories"
	"calibrify/pkg/config"
	"calibrify/pkg/constants"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/service"
	"calibrify/pkg/utils"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponseDTO, error)
	Me(ctx context.Context, userID uint64) (*dto.UserDTO, error)
}

type AuthService struct {
	userRepo   repositories.UserRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	jwtService service.JWTService
	cfg        config.AuthConfig
	logger     *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtService service.JWTService,
	cfg config.AuthConfig,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo:   userRepo,
		cacheRepo:  cacheRepo,
		jwtService: jwtService,
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	username := strings.TrimSpace(payload.Username)

	if err := s.checkLockout(ctx, username); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, nil, username)
	if err != nil {
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, err
		}
		s.handleFailedLoginAttempt(ctx, username)
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := utils.CheckPassword(user.Password, payload.Password); err != nil {
		s.handleFailedLoginAttempt(ctx, username)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserDisabled
	}

	s.resetLoginAttempts(ctx, username)
	s.logger.Info("Пользователь вошёл в систему", zap.Uint64("userID", user.ID))
	return s.issueTokens(user)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponseDTO, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrTokenIsNotRefresh
	}

	user, err := s.userRepo.FindByID(ctx, nil, claims.UserID)
	if err != nil {
		s.logger.Warn("RefreshToken: пользователь не найден", zap.Uint64("userID", claims.UserID), zap.Error(err))
		return nil, apperrors.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserDisabled
	}
	return s.issueTokens(user)
}

func (s *AuthService) Me(ctx context.Context, userID uint64) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, nil, userID)
	if err != nil {
		s.logger.Warn("Me: не удалось найти пользователя", zap.Uint64("userID", userID), zap.Error(err))
		return nil, apperrors.ErrUserNotFound
	}
	res := userToDTO(user)
	return &res, nil
}

func (s *AuthService) issueTokens(user *entities.User) (*dto.AuthResponseDTO, error) {
	accessToken, refreshToken, err := s.jwtService.GenerateTokens(user.ID, user.IsStaff)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponseDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         userToDTO(user),
	}, nil
}

func (s *AuthService) checkLockout(ctx context.Context, username string) error {
	lockoutKey := fmt.Sprintf(constants.CacheKeyLockout, username)

	// Если ключ существует, вход заблокирован
	if _, err := s.cacheRepo.Get(ctx, lockoutKey); err == nil {
		return apperrors.ErrTooManyAttempts
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, username string) {
	attemptsKey := fmt.Sprintf(constants.CacheKeyLoginAttempts, username)
	attempts, err := s.cacheRepo.Incr(ctx, attemptsKey)
	if err != nil {
		s.logger.Warn("Не удалось учесть неудачную попытку входа", zap.Error(err))
		return
	}
	if attempts == 1 {
		_, _ = s.cacheRepo.Expire(ctx, attemptsKey, s.cfg.LockoutDuration)
	}
	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		lockoutKey := fmt.Sprintf(constants.CacheKeyLockout, username)
		_ = s.cacheRepo.Set(ctx, lockoutKey, "locked", s.cfg.LockoutDuration)
		_ = s.cacheRepo.Del(ctx, attemptsKey)
		s.logger.Warn("Вход временно заблокирован", zap.String("username", username))
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, username string) {
	attemptsKey := fmt.Sprintf(constants.CacheKeyLoginAttempts, username)
	lockoutKey := fmt.Sprintf(constants.CacheKeyLockout, username)
	_ = s.cacheRepo.Del(ctx, attemptsKey, lockoutKey)
}
