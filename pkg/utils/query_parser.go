package utils

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"calibrify/pkg/types"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// служебные параметры, которые не попадают в Filter
var reservedQueryParams = map[string]bool{
	"search":         true,
	"ordering":       true,
	"limit":          true,
	"page":           true,
	"offset":         true,
	"withPagination": true,
	"format":         true,
}

// ParseFilterFromQuery разбирает строку запроса списка:
//
//	search=fluke
//	ordering=-next_calibration_date,name   (или sort[name]=asc)
//	filter[is_active]=true                 (или is_active=true)
//	limit=10&page=2&withPagination=true
//
// Без withPagination=true репозиторий отдаёт все записи.
func ParseFilterFromQuery(values url.Values) types.Filter {
	filterReq := types.Filter{
		Filter: make(map[string]string),
		Limit:  DefaultLimit,
		Page:   1,
	}

	if limitStr := values.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			filterReq.Limit = min(l, MaxLimit)
		}
	}

	if pageStr := values.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			filterReq.Page = p
		}
	}

	filterReq.Offset = (filterReq.Page - 1) * filterReq.Limit
	if offsetStr := values.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filterReq.Offset = o
			filterReq.Page = o/filterReq.Limit + 1
		}
	}

	filterReq.WithPagination = values.Get("withPagination") == "true"
	filterReq.Search = strings.TrimSpace(values.Get("search"))

	// ordering=-a,b - порядок полей сохраняется
	if ordering := values.Get("ordering"); ordering != "" {
		for _, part := range strings.Split(ordering, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			desc := strings.HasPrefix(part, "-")
			filterReq.Sort = append(filterReq.Sort, types.SortField{Field: strings.TrimPrefix(part, "-"), Desc: desc})
		}
	}

	var sortKeys []string
	bare := make(map[string]string)
	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}

		if strings.HasPrefix(key, "sort[") && strings.HasSuffix(key, "]") {
			sortKeys = append(sortKeys, key)
			continue
		}

		if strings.HasPrefix(key, "filter[") && strings.HasSuffix(key, "]") {
			filterReq.Filter[key[7:len(key)-1]] = vals[0]
			continue
		}

		if !reservedQueryParams[key] {
			bare[key] = vals[0]
		}
	}

	// filter[x] важнее x
	for k, v := range bare {
		if _, ok := filterReq.Filter[k]; !ok {
			filterReq.Filter[k] = v
		}
	}

	// map не гарантирует порядок, поэтому sort[...] сортируем по имени
	sort.Strings(sortKeys)
	for _, key := range sortKeys {
		direction := strings.ToLower(values.Get(key))
		if direction != "asc" && direction != "desc" {
			continue
		}
		filterReq.Sort = append(filterReq.Sort, types.SortField{Field: key[5 : len(key)-1], Desc: direction == "desc"})
	}

	return filterReq
}
