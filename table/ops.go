package table

import (
	"fmt"
	"sort"
	"strings"
)

// Rename returns a table with columns renamed per mapping (old name → new name).
// Unknown old names are an error; a rename that collides with a surviving
// column is ErrDuplicateColumn.
func (t *Table) Rename(mapping map[string]string) (*Table, error) {
	for old := range mapping {
		if !t.HasColumn(old) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, old)
		}
	}
	names := make([]string, 0, len(t.names))
	cols := make(map[string][]any, len(t.names))
	for _, name := range t.names {
		target := name
		if renamed, ok := mapping[name]; ok {
			target = renamed
		}
		if target == "" {
			return nil, ErrEmptyName
		}
		if _, dup := cols[target]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, target)
		}
		names = append(names, target)
		cols[target] = t.cols[name]
	}

	return &Table{names: names, cols: cols, rows: t.rows}, nil
}

// Select returns a table holding only the given columns, in the given order.
func (t *Table) Select(names []string) (*Table, error) {
	out := &Table{cols: make(map[string][]any, len(names)), rows: t.rows}
	for _, name := range names {
		cells, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		if _, dup := out.cols[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		out.names = append(out.names, name)
		out.cols[name] = cells
	}

	return out, nil
}

// Drop returns a table without the given columns. Missing names are ignored.
func (t *Table) Drop(names ...string) *Table {
	dropped := make(map[string]struct{}, len(names))
	for _, name := range names {
		dropped[name] = struct{}{}
	}
	out := &Table{cols: make(map[string][]any), rows: t.rows}
	for _, name := range t.names {
		if _, skip := dropped[name]; skip {
			continue
		}
		out.names = append(out.names, name)
		out.cols[name] = t.cols[name]
	}

	return out
}

// WithColumn returns a table with the named column added, or replaced when it
// already exists. The cell count must equal the row count, except on an empty
// table where it defines the row count.
func (t *Table) WithColumn(name string, cells []any) (*Table, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if len(t.names) > 0 && len(cells) != t.rows {
		return nil, fmt.Errorf("%w: %q has %d cells, want %d", ErrLengthMismatch, name, len(cells), t.rows)
	}
	out := &Table{names: t.Columns(), cols: make(map[string][]any, len(t.names)+1), rows: t.rows}
	for _, existing := range t.names {
		out.cols[existing] = t.cols[existing]
	}
	if !t.HasColumn(name) {
		out.names = append(out.names, name)
	}
	out.cols[name] = cells
	if len(t.names) == 0 {
		out.rows = len(cells)
	}

	return out, nil
}

// FilterMask returns a table keeping only rows whose mask entry is true.
func (t *Table) FilterMask(mask []bool) (*Table, error) {
	if len(mask) != t.rows {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBadMask, len(mask), t.rows)
	}
	kept := 0
	for _, keep := range mask {
		if keep {
			kept++
		}
	}
	out := &Table{names: t.Columns(), cols: make(map[string][]any, len(t.names)), rows: kept}
	for _, name := range t.names {
		src := t.cols[name]
		dst := make([]any, 0, kept)
		for i, keep := range mask {
			if keep {
				dst = append(dst, src[i])
			}
		}
		out.cols[name] = dst
	}

	return out, nil
}

// Concat appends the rows of others below the receiver. The resulting column
// set is the union in first-appearance order; cells absent from an input are
// null.
func (t *Table) Concat(others ...*Table) (*Table, error) {
	parts := append([]*Table{t}, others...)
	var names []string
	seen := make(map[string]struct{})
	rows := 0
	for _, part := range parts {
		rows += part.rows
		for _, name := range part.names {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				names = append(names, name)
			}
		}
	}
	out := &Table{names: names, cols: make(map[string][]any, len(names)), rows: rows}
	for _, name := range names {
		cells := make([]any, 0, rows)
		for _, part := range parts {
			if src, ok := part.cols[name]; ok {
				cells = append(cells, src...)
			} else {
				cells = append(cells, make([]any, part.rows)...)
			}
		}
		out.cols[name] = cells
	}

	return out, nil
}

// SortBy returns a table with rows stably sorted ascending by the given
// columns, nulls first, using Compare semantics per cell.
func (t *Table) SortBy(names ...string) (*Table, error) {
	keys := make([][]any, len(names))
	for i, name := range names {
		cells, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		keys[i] = cells
	}
	idx := make([]int, t.rows)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		for _, cells := range keys {
			if c := Compare(cells[idx[a]], cells[idx[b]]); c != 0 {
				return c < 0
			}
		}

		return false
	})

	return t.reorder(idx), nil
}

func (t *Table) reorder(idx []int) *Table {
	out := &Table{names: t.Columns(), cols: make(map[string][]any, len(t.names)), rows: len(idx)}
	for _, name := range t.names {
		src := t.cols[name]
		dst := make([]any, len(idx))
		for i, j := range idx {
			dst[i] = src[j]
		}
		out.cols[name] = dst
	}

	return out
}

// Group is one equivalence class produced by GroupBy: the key cells (in key
// column order) and the row indices belonging to the group.
type Group struct {
	Key  []any
	Rows []int
}

// GroupBy partitions rows by exact equality on the key columns.
// Groups are returned sorted by their rendered key, so grouping is
// deterministic for identical input.
func (t *Table) GroupBy(names []string) ([]Group, error) {
	keys := make([][]any, len(names))
	for i, name := range names {
		cells, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		keys[i] = cells
	}
	byKey := make(map[string]*Group)
	var order []string
	for row := 0; row < t.rows; row++ {
		rendered := renderKey(keys, row)
		g, ok := byKey[rendered]
		if !ok {
			key := make([]any, len(names))
			for i := range names {
				key[i] = keys[i][row]
			}
			g = &Group{Key: key}
			byKey[rendered] = g
			order = append(order, rendered)
		}
		g.Rows = append(g.Rows, row)
	}
	sort.Strings(order)
	out := make([]Group, 0, len(order))
	for _, rendered := range order {
		out = append(out, *byKey[rendered])
	}

	return out, nil
}

// DistinctMask returns a mask that is true for the first occurrence of each
// key tuple and false for every later exact duplicate.
func (t *Table) DistinctMask(names []string) ([]bool, error) {
	keys := make([][]any, len(names))
	for i, name := range names {
		cells, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		keys[i] = cells
	}
	seen := make(map[string]struct{}, t.rows)
	mask := make([]bool, t.rows)
	for row := 0; row < t.rows; row++ {
		rendered := renderKey(keys, row)
		if _, dup := seen[rendered]; !dup {
			seen[rendered] = struct{}{}
			mask[row] = true
		}
	}

	return mask, nil
}

// renderKey builds a collision-safe textual key for one row across key columns.
func renderKey(keys [][]any, row int) string {
	var b strings.Builder
	for i, cells := range keys {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		b.WriteString(KeyString(cells[row]))
	}

	return b.String()
}
