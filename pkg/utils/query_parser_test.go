package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calibrify/pkg/types"
)

func TestParseFilterFromQuery_Defaults(t *testing.T) {
	f := ParseFilterFromQuery(url.Values{})

	assert.False(t, f.WithPagination, "без withPagination=true отдаются все записи")
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 0, f.Offset)
	assert.Empty(t, f.Sort)
	assert.Empty(t, f.Filter)
}

func TestParseFilterFromQuery_Ordering(t *testing.T) {
	q, err := url.ParseQuery("ordering=-next_calibration_date,name,&sort[serial_number]=desc&sort[category]=up")
	require.NoError(t, err)

	f := ParseFilterFromQuery(q)

	assert.Equal(t, []types.SortField{
		{Field: "next_calibration_date", Desc: true},
		{Field: "name", Desc: false},
		{Field: "serial_number", Desc: true},
	}, f.Sort)
}

func TestParseFilterFromQuery_FiltersAndSearch(t *testing.T) {
	q, err := url.ParseQuery("search=%20fluke%20meter%20&is_active=true&filter[is_active]=false&name__icontains=volt&limit=10&page=3&withPagination=true")
	require.NoError(t, err)

	f := ParseFilterFromQuery(q)

	assert.Equal(t, "fluke meter", f.Search)
	assert.Equal(t, "false", f.Filter["is_active"], "filter[x] имеет приоритет")
	assert.Equal(t, "volt", f.Filter["name__icontains"])
	assert.NotContains(t, f.Filter, "limit")
	assert.NotContains(t, f.Filter, "withPagination")
	assert.True(t, f.WithPagination)
	assert.Equal(t, 10, f.Limit)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 20, f.Offset)
}

func TestParseFilterFromQuery_LimitIsCapped(t *testing.T) {
	f := ParseFilterFromQuery(url.Values{"limit": {"100000"}, "offset": {"1000"}})

	assert.Equal(t, MaxLimit, f.Limit)
	assert.Equal(t, 1000, f.Offset)
	assert.Equal(t, 3, f.Page)
}
