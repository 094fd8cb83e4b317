package utils

// SafeDeref возвращает нулевое значение для nil.
func SafeDeref[T any](ptr *T) T {
	if ptr == nil {
		var zero T
		return zero
	}
	return *ptr
}

func ToPtr[T any](v T) *T {
	return &v
}

// ActorRef - ссылка на пользователя для created_by / calibrated_by / performed_by.
// Нулевой id (системное действие, импорт без токена) пишется как NULL.
func ActorRef(id uint64) *uint64 {
	if id == 0 {
		return nil
	}
	return &id
}
