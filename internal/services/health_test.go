package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestHealthService_Check(t *testing.T) {
	tests := []struct {
		name     string
		dbErr    error
		cacheErr error
		want     string
		wantDB   string
		wantRDB  string
	}{
		{name: "всё доступно", want: HealthStatusHealthy, wantDB: HealthUp, wantRDB: HealthUp},
		{name: "нет БД", dbErr: errors.New("refused"), want: HealthStatusUnhealthy, wantDB: HealthDown, wantRDB: HealthUp},
		{name: "нет кеша", cacheErr: errors.New("refused"), want: HealthStatusUnhealthy, wantDB: HealthUp, wantRDB: HealthDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := newFakeCache()
			cache.err = tt.cacheErr
			svc := NewHealthService(fakePinger{err: tt.dbErr}, cache, time.Second, zap.NewNop())

			res := svc.Check(context.Background())

			assert.Equal(t, tt.want, res.Status)
			assert.Equal(t, tt.wantDB, res.Database)
			assert.Equal(t, tt.wantRDB, res.Cache)
		})
	}
}
