package seaduck

import (
	"github.com/samber/lo"
)

// Result is the materialized output of one statement. It is never modified
// after creation; accessors hand out copies.
type Result struct {
	columns []string
	rows    [][]any
}

func newResult(columns []string, rows [][]any) *Result {
	if columns == nil {
		columns = []string{}
	}
	if rows == nil {
		rows = [][]any{}
	}
	return &Result{columns: columns, rows: rows}
}

// Columns returns the column names in result order.
func (r *Result) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Rows returns every row as positional values aligned with Columns.
func (r *Result) Rows() [][]any {
	return lo.Map(r.rows, func(row []any, _ int) []any {
		return append([]any(nil), row...)
	})
}

// Len returns the number of rows.
func (r *Result) Len() int {
	return len(r.rows)
}

// Maps returns one column-name keyed map per row. When a name repeats,
// the rightmost column wins.
func (r *Result) Maps() []map[string]any {
	return lo.Map(r.rows, func(row []any, _ int) map[string]any {
		m := make(map[string]any, len(r.columns))
		for i, col := range r.columns {
			m[col] = row[i]
		}
		return m
	})
}

// Column returns the values of the first column called name.
func (r *Result) Column(name string) ([]any, bool) {
	idx := lo.IndexOf(r.columns, name)
	if idx < 0 {
		return nil, false
	}
	return lo.Map(r.rows, func(row []any, _ int) any {
		return row[idx]
	}), true
}
