package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"calibrify/internal/dto"
	"calibrify/internal/entities"
	"calibrify/internal/repositories"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/types"
	"calibrify/pkg/utils"
)

type UserServiceInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]dto.UserDTO, uint64, error)
	Create(ctx context.Context, payload dto.CreateUserDTO) (*dto.UserDTO, error)
	Delete(ctx context.Context, actorID, id uint64) error
}

type UserService struct {
	*BaseService
	userRepo repositories.UserRepositoryInterface
	logger   *zap.Logger
}

func NewUserService(base *BaseService, userRepo repositories.UserRepositoryInterface, logger *zap.Logger) UserServiceInterface {
	return &UserService{BaseService: base, userRepo: userRepo, logger: logger}
}

func (s *UserService) GetAll(ctx context.Context, filter types.Filter) ([]dto.UserDTO, uint64, error) {
	users, total, err := s.userRepo.GetAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.UserDTO, 0, len(users))
	for _, u := range users {
		result = append(result, userToDTO(u))
	}
	return result, total, nil
}

func (s *UserService) Create(ctx context.Context, payload dto.CreateUserDTO) (*dto.UserDTO, error) {
	username := strings.TrimSpace(payload.Username)
	if username == "" {
		return nil, apperrors.NewFieldError("username", msgRequired)
	}

	hash, err := utils.HashPassword(payload.Password)
	if err != nil {
		return nil, err
	}

	u := entities.User{
		Username:  username,
		FirstName: strings.TrimSpace(payload.FirstName),
		LastName:  strings.TrimSpace(payload.LastName),
		Email:     strings.TrimSpace(payload.Email),
		Password:  hash,
		IsStaff:   payload.IsStaff,
		IsActive:  true,
	}
	id, err := s.userRepo.Create(ctx, nil, u)
	if err != nil {
		return nil, err
	}

	created, err := s.userRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Пользователь создан", zap.Uint64("id", id), zap.String("username", username))
	res := userToDTO(created)
	return &res, nil
}

// Delete: ссылки в оборудовании, калибровках и ТО становятся NULL.
func (s *UserService) Delete(ctx context.Context, actorID, id uint64) error {
	if actorID == id {
		return apperrors.NewBadRequestError("Нельзя удалить собственную учётную запись")
	}
	if err := s.userRepo.Delete(ctx, nil, id); err != nil {
		return err
	}
	s.InvalidateDashboard(ctx)
	return nil
}
