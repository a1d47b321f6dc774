package table

import (
	"fmt"
	"strings"

	"food_delivery_merge/etl"
)

// Table is a row-oriented table: an ordered list of rows sharing one column set.
// Missing values are stored as nil.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]interface{}
}

// New creates an empty table with the given columns in order.
func New(columns ...string) (*Table, error) {
	t := &Table{
		columns: make([]string, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		if _, dup := t.index[c]; dup {
			return nil, fmt.Errorf("%w: %q", etl.ErrDuplicateColumn, c)
		}
		t.index[c] = len(t.columns)
		t.columns = append(t.columns, c)
	}
	return t, nil
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Index returns the position of a column.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Has reports whether the table has the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Append adds a row. The row must have exactly one value per column;
// the table keeps the slice, callers must not reuse it.
func (t *Table) Append(row []interface{}) error {
	if len(row) != len(t.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(row), len(t.columns))
	}
	t.rows = append(t.rows, row)
	return nil
}

// Row returns the i-th row. The returned slice is shared with the table.
func (t *Table) Row(i int) []interface{} { return t.rows[i] }

// Value returns the cell at row i in the named column.
func (t *Table) Value(i int, column string) (interface{}, bool) {
	c, ok := t.index[column]
	if !ok || i < 0 || i >= len(t.rows) {
		return nil, false
	}
	return t.rows[i][c], true
}

// RequireColumns fails with etl.ErrMissingColumn naming every absent column.
// source labels the table in the message, e.g. "orders".
func RequireColumns(t *Table, source string, columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s has no %s column (found: %s)",
			etl.ErrMissingColumn, source, strings.Join(missing, ", "), strings.Join(t.columns, ", "))
	}
	return nil
}
