// Package query provides SQL query building utilities with projection mapping.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps view property names to qualified column references
// (alias.column) for a table and its joins. Sortable expressions registered
// with Expr are addressable by name but never selected.
type ProjectionMap struct {
	schema     string
	table      string
	alias      string
	current    string
	joins      []join
	columns    map[string]string
	columnList []string
}

type join struct {
	schema string
	table  string
	alias  string
	kind   string
	on     string
}

// NewProjectionMap creates a ProjectionMap for the given schema, table, and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:     schema,
		table:      table,
		alias:      alias,
		current:    alias,
		columns:    make(map[string]string),
		columnList: make([]string, 0),
	}
}

// Project adds a column mapping from database column to view property name.
// Columns are qualified with the alias of the most recent Join, or the base
// table. The bare column name also resolves, first projection wins, so
// clients can sort by the JSON field name.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := fmt.Sprintf("%s.%s", p.current, column)
	p.columns[viewName] = qualified
	if _, taken := p.columns[column]; !taken {
		p.columns[column] = qualified
	}
	p.columnList = append(p.columnList, qualified)
	return p
}

// Expr registers a named SQL expression usable in ORDER BY and WHERE but
// not part of the selected columns.
func (p *ProjectionMap) Expr(viewName, sql string) *ProjectionMap {
	p.columns[viewName] = sql
	return p
}

// Lookup returns the SQL for a mapped name.
func (p *ProjectionMap) Lookup(name string) (string, bool) {
	col, ok := p.columns[name]
	return col, ok
}

// Join adds a joined table. Subsequent Project calls map columns of the joined table.
// kind is the join keyword, e.g. "LEFT JOIN".
func (p *ProjectionMap) Join(schema, table, alias, kind, on string) *ProjectionMap {
	p.joins = append(p.joins, join{
		schema: schema,
		table:  table,
		alias:  alias,
		kind:   kind,
		on:     on,
	})
	p.current = alias
	return p
}

// Alias returns the table alias.
func (p *ProjectionMap) Alias() string {
	return p.alias
}

// Table returns the fully qualified table reference with alias (schema.table alias).
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// From returns the FROM clause body: the base table followed by any joins.
func (p *ProjectionMap) From() string {
	if len(p.joins) == 0 {
		return p.Table()
	}

	var b strings.Builder
	b.WriteString(p.Table())
	for _, j := range p.joins {
		fmt.Fprintf(&b, " %s %s.%s %s ON %s", j.kind, j.schema, j.table, j.alias, j.on)
	}
	return b.String()
}

// Column returns the qualified column for a view property name, or the input if not mapped.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.columns[viewName]; ok {
		return col
	}
	return viewName
}

// Columns returns all mapped columns as a comma-separated string.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columnList, ", ")
}

// ColumnList returns all mapped columns as a slice.
func (p *ProjectionMap) ColumnList() []string {
	return p.columnList
}
