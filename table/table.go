package table

import "fmt"

// Table is an immutable, column-oriented table with ordered named columns.
//
// The zero value is not usable; build tables with New, FromColumns or
// FromRows. All transforming methods return a new Table and leave the
// receiver untouched.
type Table struct {
	names []string
	cols  map[string][]any
	rows  int
}

// New returns an empty table with no columns and no rows.
func New() *Table {
	return &Table{names: nil, cols: map[string][]any{}, rows: 0}
}

// FromColumns builds a table from named columns in the given order.
// All columns must share one length; names must be unique and non-empty.
func FromColumns(names []string, cols map[string][]any) (*Table, error) {
	t := &Table{cols: make(map[string][]any, len(names))}
	for i, name := range names {
		if name == "" {
			return nil, ErrEmptyName
		}
		if _, dup := t.cols[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		cells, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		if i == 0 {
			t.rows = len(cells)
		} else if len(cells) != t.rows {
			return nil, fmt.Errorf("%w: %q has %d cells, want %d", ErrLengthMismatch, name, len(cells), t.rows)
		}
		t.names = append(t.names, name)
		t.cols[name] = cells
	}

	return t, nil
}

// FromRows builds a table from a column-name header and row slices.
// Short rows are padded with nulls; long rows are an error.
func FromRows(names []string, rows ...[]any) (*Table, error) {
	cols := make(map[string][]any, len(names))
	for _, name := range names {
		cols[name] = make([]any, 0, len(rows))
	}
	for ri, row := range rows {
		if len(row) > len(names) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want at most %d", ErrLengthMismatch, ri, len(row), len(names))
		}
		for ci, name := range names {
			var v any
			if ci < len(row) {
				v = row[ci]
			}
			cols[name] = append(cols[name], v)
		}
	}

	return FromColumns(names, cols)
}

// NumRows reports the number of rows.
func (t *Table) NumRows() int { return t.rows }

// NumCols reports the number of columns.
func (t *Table) NumCols() int { return len(t.names) }

// Columns returns the column names in table order. The slice is a copy.
func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)

	return out
}

// HasColumn reports whether a column named name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.cols[name]

	return ok
}

// Column returns the cells of the named column.
// The returned slice is backing storage and must not be modified.
func (t *Table) Column(name string) ([]any, error) {
	cells, ok := t.cols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}

	return cells, nil
}

// Cell returns the value at (name, row).
func (t *Table) Cell(name string, row int) (any, error) {
	cells, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= t.rows {
		return nil, fmt.Errorf("%w: %d", ErrRowIndex, row)
	}

	return cells[row], nil
}

// Row returns one row as a name→cell map.
func (t *Table) Row(row int) (map[string]any, error) {
	if row < 0 || row >= t.rows {
		return nil, fmt.Errorf("%w: %d", ErrRowIndex, row)
	}
	out := make(map[string]any, len(t.names))
	for _, name := range t.names {
		out[name] = t.cols[name][row]
	}

	return out, nil
}

// Clone returns a deep copy of the table (cell slices copied, cell values shared).
func (t *Table) Clone() *Table {
	out := &Table{names: t.Columns(), cols: make(map[string][]any, len(t.names)), rows: t.rows}
	for _, name := range t.names {
		cells := make([]any, t.rows)
		copy(cells, t.cols[name])
		out.cols[name] = cells
	}

	return out
}
