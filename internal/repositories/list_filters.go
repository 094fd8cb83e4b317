package repositories

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/types"
	"calibrify/pkg/utils"
)

type filterKind int

const (
	filterExact filterKind = iota
	filterIContains
	filterBool
	filterID
	// filterDate - колонка DATE
	filterDate
	// filterTimestamp - колонка TIMESTAMPTZ, дата сравнивается по календарному дню
	filterTimestamp
)

type filterOp int

const (
	opEq filterOp = iota
	opGt
	opLt
)

// listFilter - допустимый фильтр списка: колонка, тип значения и сравнение.
type listFilter struct {
	column string
	kind   filterKind
	op     filterOp
}

func textFilters(name, column string) map[string]listFilter {
	return map[string]listFilter{
		name:                 {column: column, kind: filterExact},
		name + "__icontains": {column: column, kind: filterIContains},
	}
}

func dateFilters(name, column string, kind filterKind) map[string]listFilter {
	return map[string]listFilter{
		name:         {column: column, kind: kind, op: opEq},
		name + "__gt": {column: column, kind: kind, op: opGt},
		name + "__lt": {column: column, kind: kind, op: opLt},
	}
}

func mergeFilters(parts ...map[string]listFilter) map[string]listFilter {
	out := make(map[string]listFilter)
	for _, p := range parts {
		for k, v := range p {
			out[k] = v
		}
	}
	return out
}

// buildListFilters превращает известные имена фильтров в условия WHERE.
// Неизвестные имена пропускаются, некорректные значения дают 400 с именем параметра.
func buildListFilters(values map[string]string, allowed map[string]listFilter, loc *time.Location) ([]sq.Sqlizer, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		if _, ok := allowed[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	conds := make([]sq.Sqlizer, 0, len(names))
	for _, name := range names {
		cond, err := allowed[name].build(strings.TrimSpace(values[name]), loc)
		if err != nil {
			return nil, apperrors.NewFieldError(name, err.Error())
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

func (f listFilter) build(value string, loc *time.Location) (sq.Sqlizer, error) {
	switch f.kind {
	case filterIContains:
		return ilikeContains(f.column, value), nil
	case filterBool:
		b, err := parseBool(value)
		if err != nil {
			return nil, err
		}
		return sq.Eq{f.column: b}, nil
	case filterID:
		id, err := strconv.ParseUint(value, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("ожидается числовой ID")
		}
		return sq.Eq{f.column: id}, nil
	case filterDate:
		d, err := utils.ParseDate(value)
		if err != nil {
			return nil, fmt.Errorf("ожидается дата в формате YYYY-MM-DD")
		}
		return compare(f.column, f.op, d), nil
	case filterTimestamp:
		return f.buildTimestamp(value, loc)
	}
	return sq.Eq{f.column: value}, nil
}

// buildTimestamp: полная метка RFC3339 сравнивается как есть,
// дата YYYY-MM-DD означает весь календарный день в поясе loc.
func (f listFilter) buildTimestamp(value string, loc *time.Location) (sq.Sqlizer, error) {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return compare(f.column, f.op, ts), nil
	}
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return nil, fmt.Errorf("ожидается дата YYYY-MM-DD или время RFC3339")
	}
	next := d.AddDate(0, 0, 1)
	switch f.op {
	case opGt:
		return sq.GtOrEq{f.column: next}, nil
	case opLt:
		return sq.Lt{f.column: d}, nil
	}
	return sq.And{sq.GtOrEq{f.column: d}, sq.Lt{f.column: next}}, nil
}

func compare(column string, op filterOp, v interface{}) sq.Sqlizer {
	switch op {
	case opGt:
		return sq.Gt{column: v}
	case opLt:
		return sq.Lt{column: v}
	}
	return sq.Eq{column: v}
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("ожидается true или false")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ilikeContains - поиск подстроки без учёта регистра; % и _ во вводе ищутся буквально.
func ilikeContains(column, value string) sq.Sqlizer {
	return sq.Expr(column+` ILIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(value)+"%")
}

// buildSearch: каждое слово запроса должно найтись хотя бы в одном из полей.
func buildSearch(search string, fields []string) sq.Sqlizer {
	terms := strings.Fields(search)
	if len(terms) == 0 {
		return nil
	}
	and := make(sq.And, 0, len(terms))
	for _, term := range terms {
		or := make(sq.Or, 0, len(fields))
		for _, field := range fields {
			or = append(or, ilikeContains(field, term))
		}
		and = append(and, or)
	}
	return and
}

// buildOrderBy переводит поля сортировки из белого списка в ORDER BY.
// Если ни одно поле не подошло, используется fallback.
func buildOrderBy(fields []types.SortField, allowed map[string]string, fallback ...string) []string {
	var out []string
	for _, f := range fields {
		column, ok := allowed[f.Field]
		if !ok {
			continue
		}
		dir := "ASC"
		if f.Desc {
			dir = "DESC"
		}
		out = append(out, column+" "+dir)
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// listQuery - условия, общие для COUNT и SELECT одного списка.
type listQuery struct {
	conds   []sq.Sqlizer
	orderBy []string
}

func newListQuery(filter types.Filter, allowed map[string]listFilter, searchFields []string, sortFields map[string]string, loc *time.Location, fallback ...string) (*listQuery, error) {
	conds, err := buildListFilters(filter.Filter, allowed, loc)
	if err != nil {
		return nil, err
	}
	if s := buildSearch(filter.Search, searchFields); s != nil {
		conds = append(conds, s)
	}
	return &listQuery{conds: conds, orderBy: buildOrderBy(filter.Sort, sortFields, fallback...)}, nil
}

func (q *listQuery) apply(b sq.SelectBuilder) sq.SelectBuilder {
	for _, c := range q.conds {
		b = b.Where(c)
	}
	return b
}

func paginate(b sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	if !filter.WithPagination {
		return b
	}
	if filter.Limit > 0 {
		b = b.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		b = b.Offset(uint64(filter.Offset))
	}
	return b
}
