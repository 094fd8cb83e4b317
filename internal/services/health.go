package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"calibrify/internal/dto"
	"calibrify/internal/repositories"
	"calibrify/pkg/constants"
)

const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"
	HealthUp              = "up"
	HealthDown            = "down"
)

// Pinger - проверка доступности БД (реализуется *pgxpool.Pool).
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthServiceInterface interface {
	Check(ctx context.Context) dto.HealthDTO
}

type HealthService struct {
	db      Pinger
	cache   repositories.CacheRepositoryInterface
	timeout time.Duration
	logger  *zap.Logger
}

func NewHealthService(db Pinger, cache repositories.CacheRepositoryInterface, timeout time.Duration, logger *zap.Logger) HealthServiceInterface {
	return &HealthService{db: db, cache: cache, timeout: timeout, logger: logger}
}

// Check никогда не возвращает ошибку: недоступная зависимость отражается в статусе.
func (s *HealthService) Check(ctx context.Context) dto.HealthDTO {
	res := dto.HealthDTO{Status: HealthStatusHealthy, Database: HealthUp, Cache: HealthUp}

	if err := s.checkDatabase(ctx); err != nil {
		s.logger.Warn("Health: база данных недоступна", zap.Error(err))
		res.Database = HealthDown
	}
	if err := s.checkCache(ctx); err != nil {
		s.logger.Warn("Health: кеш недоступен", zap.Error(err))
		res.Cache = HealthDown
	}
	if res.Database != HealthUp || res.Cache != HealthUp {
		res.Status = HealthStatusUnhealthy
	}
	return res
}

func (s *HealthService) checkDatabase(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.db.Ping(ctx)
}

func (s *HealthService) checkCache(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.cache.Set(ctx, constants.CacheKeyHealthCheck, "ok", time.Second); err != nil {
		return err
	}
	val, err := s.cache.Get(ctx, constants.CacheKeyHealthCheck)
	if err != nil {
		return err
	}
	if val != "ok" {
		return errUnexpectedCacheValue
	}
	return nil
}

var errUnexpectedCacheValue = errors.New("неожиданное значение health_check в кеше")
