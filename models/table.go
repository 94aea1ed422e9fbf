package models

import "math"

// Row is one record of a table: column name → cell value. A cell holds nil
// when the source document had no value for that column.
type Row map[string]any

// Table is an ordered-column collection of rows. Column order is preserved
// across cleaning steps so exported files keep a stable layout. Rows may be
// sparse; a missing key reads as a null cell.
type Table struct {
	cols []string
	rows []Row
}

// NewTable builds a table over the given column order and rows. The slices
// are owned by the table afterwards.
func NewTable(cols []string, rows []Row) *Table {
	return &Table{cols: cols, rows: rows}
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Has reports whether the column exists in the table.
func (t *Table) Has(col string) bool {
	for _, c := range t.cols {
		if c == col {
			return true
		}
	}
	return false
}

// Rows exposes the backing rows for in-place mutation by the owning stage.
func (t *Table) Rows() []Row { return t.rows }

// Row returns the i-th row.
func (t *Table) Row(i int) Row { return t.rows[i] }

// AddColumn registers a new column at the end of the column order.
// Adding an existing column is a no-op.
func (t *Table) AddColumn(name string) {
	if !t.Has(name) {
		t.cols = append(t.cols, name)
	}
}

// Drop removes the named columns and their cells. Absent names are ignored.
func (t *Table) Drop(names ...string) {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	kept := t.cols[:0]
	for _, c := range t.cols {
		if _, gone := drop[c]; !gone {
			kept = append(kept, c)
		}
	}
	t.cols = kept
	for _, r := range t.rows {
		for n := range drop {
			delete(r, n)
		}
	}
}

// Filter keeps only the rows for which keep returns true. The resulting row
// slice is dense and 0-based, matching a reset index.
func (t *Table) Filter(keep func(Row) bool) {
	kept := t.rows[:0]
	for _, r := range t.rows {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	// Release references held past the new length.
	for i := len(kept); i < len(t.rows); i++ {
		t.rows[i] = nil
	}
	t.rows = kept
}

// Head returns a copy of the first n rows (all rows when n exceeds Len).
func (t *Table) Head(n int) *Table {
	if n > len(t.rows) {
		n = len(t.rows)
	}
	out := &Table{cols: append([]string(nil), t.cols...)}
	out.rows = make([]Row, n)
	for i := 0; i < n; i++ {
		out.rows[i] = copyRow(t.rows[i])
	}
	return out
}

// Copy returns a deep copy of the table. Stages hand tables to each other by
// copy so no stage can alias-mutate another's output.
func (t *Table) Copy() *Table {
	out := &Table{
		cols: append([]string(nil), t.cols...),
		rows: make([]Row, len(t.rows)),
	}
	for i, r := range t.rows {
		out.rows[i] = copyRow(r)
	}
	return out
}

func copyRow(r Row) Row {
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// IsNull reports whether a cell value counts as missing.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	if f, ok := v.(float64); ok {
		return math.IsNaN(f)
	}
	return false
}

// Float coerces the numeric types produced by BSON decoding and by earlier
// cleaning steps. Strings are not coerced; steps that expect string-encoded
// numbers parse them explicitly.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) {
			return 0, false
		}
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Str returns the cell as a string when it is one.
func Str(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
