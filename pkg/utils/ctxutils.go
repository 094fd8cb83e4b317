package utils

import (
	"context"

	"calibrify/pkg/contextkeys"
	apperrors "calibrify/pkg/errors"
)

func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok || userID == 0 {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}

func IsStaffFromCtx(ctx context.Context) bool {
	isStaff, _ := ctx.Value(contextkeys.IsStaffKey).(bool)
	return isStaff
}

// WithUser кладёт пользователя в контекст (используется middleware и тестами).
func WithUser(ctx context.Context, userID uint64, isStaff bool) context.Context {
	ctx = context.WithValue(ctx, contextkeys.UserIDKey, userID)
	return context.WithValue(ctx, contextkeys.IsStaffKey, isStaff)
}
