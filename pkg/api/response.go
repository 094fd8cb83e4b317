package api

type Response[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Body    T      `json:"body,omitempty"`
}

type ListBody[T any] struct {
	List       []T             `json:"list"`
	Pagination *PaginationMeta `json:"pagination"`
}

type PaginationMeta struct {
	TotalCount uint64 `json:"total_count"`
	TotalPages int    `json:"total_pages"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}

// NewPaginationMeta считает total_pages с округлением вверх.
func NewPaginationMeta(total uint64, page, limit int) *PaginationMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + uint64(limit) - 1) / uint64(limit))
	}
	return &PaginationMeta{
		TotalCount: total,
		TotalPages: totalPages,
		Page:       page,
		Limit:      limit,
	}
}
