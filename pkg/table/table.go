// Package table provides the flat, fully materialized table model shared by
// the record source, the reconciliation engine, and the report sinks.
package table

import (
	"github.com/tdiff/tdiff/pkg/errors"
)

// Row is one record, parallel to the owning table's column list.
type Row []Value

// Table is a flat table of records with named columns. Rows are read-only
// input as far as the reconciliation engine is concerned; it never mutates
// a table it is handed.
type Table struct {
	Columns []string
	Rows    []Row
}

// New creates an empty table with the given column list.
func New(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Append adds a row after normalizing every cell. Rows shorter than the
// column list are padded with nils so lookups stay positional.
func (t *Table) Append(values ...any) {
	row := make(Row, len(t.Columns))
	for i := range row {
		if i < len(values) {
			row[i] = Normalize(values[i])
		}
	}
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// ColumnIndex returns the position of a named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Indexes resolves a list of column names to positions. A missing column
// yields a validation error naming it, so callers fail before touching rows.
func (t *Table) Indexes(names []string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		j := t.ColumnIndex(name)
		if j < 0 {
			return nil, errors.NewSchemaError(name, "column not present in input table")
		}
		idx[i] = j
	}
	return idx, nil
}

// Clone returns a deep-enough copy: fresh column and row slices over the
// same immutable cell values.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = append(Row(nil), r...)
	}
	return out
}
