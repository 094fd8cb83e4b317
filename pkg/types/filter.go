package types

// SortField - одно поле сортировки в порядке, заданном клиентом.
type SortField struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

// Filter represents query parameters for filtering and pagination.
// Filter хранит и filter[name]=v, и "голые" name=v параметры; репозиторий
// сам решает, какие имена ему известны.
type Filter struct {
	Search         string            `json:"search,omitempty"`
	Sort           []SortField       `json:"sort,omitempty"`
	Filter         map[string]string `json:"filter,omitempty"`
	Limit          int               `json:"limit"`
	Offset         int               `json:"offset"`
	Page           int               `json:"page"`
	WithPagination bool              `json:"with_pagination"`
}

// Pagination represents pagination metadata.
type Pagination struct {
	TotalCount uint64 `json:"total_count"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}

// http://localhost:8080/api/equipment?search=fluke&ordering=-next_calibration_date&filter[is_active]=true&limit=10&page=1&withPagination=true
