package query

import (
	"reflect"
	"strconv"
	"strings"
)

// SortField is one ORDER BY term. Field is a view or column name resolved
// through the projection.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSortFields parses "name,-discovered_at" style input; a leading "-"
// sorts descending. Blank segments are skipped.
func ParseSortFields(s string) []SortField {
	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, desc := strings.CutPrefix(part, "-")
		fields = append(fields, SortField{Field: name, Descending: desc})
	}
	return fields
}

// condition renders one WHERE term. param registers an argument and returns
// its placeholder.
type condition func(param func(any) string) string

// Builder assembles SELECT statements over a projection with numbered
// PostgreSQL placeholders. Filters with nil or empty values are skipped, so
// optional request fields can be chained unconditionally.
type Builder struct {
	projection  *ProjectionMap
	conditions  []condition
	sort        []SortField
	defaultSort []SortField
}

// NewBuilder creates a Builder; defaultSort applies when no requested sort
// field resolves.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{projection: projection, defaultSort: defaultSort}
}

// OrderByFields sets the requested sort.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.sort = fields
	return b
}

// WhereEquals adds col = value.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	return b.compare(field, "=", value)
}

// WhereAtLeast adds col >= value.
func (b *Builder) WhereAtLeast(field string, value any) *Builder {
	return b.compare(field, ">=", value)
}

// WhereContains adds a case-insensitive substring match.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	return b.compare(field, "ILIKE", "%"+*value+"%")
}

// WhereIn adds col IN (...).
func (b *Builder) WhereIn(field string, values []any) *Builder {
	if len(values) == 0 {
		return b
	}
	col := b.projection.Column(field)
	return b.where(func(param func(any) string) string {
		ph := make([]string, len(values))
		for i, v := range values {
			ph[i] = param(v)
		}
		return col + " IN (" + strings.Join(ph, ", ") + ")"
	})
}

// WhereNullable adds col = value, or col IS NULL when value is nil.
func (b *Builder) WhereNullable(field string, value any) *Builder {
	if isNil(value) {
		col := b.projection.Column(field)
		return b.where(func(func(any) string) string { return col + " IS NULL" })
	}
	return b.compare(field, "=", value)
}

// WhereSearch matches search against any of fields.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}
	pattern := "%" + *search + "%"
	return b.where(func(param func(any) string) string {
		terms := make([]string, len(fields))
		for i, f := range fields {
			terms[i] = b.projection.Column(f) + " ILIKE " + param(pattern)
		}
		return "(" + strings.Join(terms, " OR ") + ")"
	})
}

// Build returns the filtered, ordered SELECT.
func (b *Builder) Build() (string, []any) {
	where, args := b.buildWhere()
	return b.selectFrom() + where + b.buildOrderBy(), args
}

// BuildCount returns SELECT COUNT(*) with the current filters.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.buildWhere()
	return "SELECT COUNT(*) FROM " + b.projection.From() + where, args
}

// BuildPage returns Build with LIMIT and OFFSET for a 1-based page.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	sql, args := b.Build()
	offset := (max(page, 1) - 1) * pageSize
	return sql + " LIMIT " + strconv.Itoa(pageSize) + " OFFSET " + strconv.Itoa(offset), args
}

// BuildSingle selects the row whose idField equals id, ignoring filters.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	return b.selectFrom() + " WHERE " + b.projection.Column(idField) + " = $1", []any{id}
}

// BuildSingleOrNull selects at most one row matching the filters.
func (b *Builder) BuildSingleOrNull() (string, []any) {
	where, args := b.buildWhere()
	return b.selectFrom() + where + " LIMIT 1", args
}

func (b *Builder) compare(field, op string, value any) *Builder {
	if isNil(value) {
		return b
	}
	col := b.projection.Column(field)
	return b.where(func(param func(any) string) string {
		return col + " " + op + " " + param(value)
	})
}

func (b *Builder) where(c condition) *Builder {
	b.conditions = append(b.conditions, c)
	return b
}

func (b *Builder) selectFrom() string {
	return "SELECT " + b.projection.Columns() + " FROM " + b.projection.From()
}

func (b *Builder) buildWhere() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	var args []any
	param := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	terms := make([]string, len(b.conditions))
	for i, c := range b.conditions {
		terms[i] = c(param)
	}
	return " WHERE " + strings.Join(terms, " AND "), args
}

// buildOrderBy renders the requested sort, dropping names the projection does
// not map. Sort input arrives from clients and must never reach SQL verbatim.
func (b *Builder) buildOrderBy() string {
	parts := b.orderParts(b.sort)
	if len(parts) == 0 {
		parts = b.orderParts(b.defaultSort)
	}
	if len(parts) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func (b *Builder) orderParts(fields []SortField) []string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		col, ok := b.projection.Lookup(f.Field)
		if !ok {
			continue
		}
		dir := " ASC"
		if f.Descending {
			dir = " DESC"
		}
		parts = append(parts, col+dir)
	}
	return parts
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}
