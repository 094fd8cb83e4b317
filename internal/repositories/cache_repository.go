package repositories

import (
	"context"
	"time"
)

// CacheRepositoryInterface - кеш для блокировки входа, дашборда и проверки /health.
// Get возвращает ErrCacheMiss, если ключа нет.
type CacheRepositoryInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key ...string) error
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error)
	DelByPattern(ctx context.Context, pattern string) error
}
