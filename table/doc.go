// Package table is the in-memory tabular engine every Golondrina dataset
// runs on: ordered named columns of dynamically typed cells.
//
// 🚀 What is table?
//
//	A small, dependency-free column store tailored to the needs of the
//	Golondrina standardization pipeline:
//	  • Column access by canonical name
//	  • Rename / Select / WithColumn for correspondence application
//	  • FilterMask / Concat / GroupBy / SortBy for derived operations
//	  • Cell coercions (AsString, AsInt, AsFloat, AsTime) for validation
//
// ✨ Design rules:
//   - Cells are one of: nil, string, int64, float64, bool, time.Time.
//     nil is the only null; float64 NaN is treated as null by IsNull.
//   - Every transforming method returns a NEW Table; a Table is never
//     mutated after construction, so concurrent readers are safe.
//   - Iteration order is deterministic: columns keep insertion order,
//     groups are sorted by their rendered key.
//
// ⚙️ Usage:
//
//	tbl, err := table.FromRows(
//	  []string{"mode", "origin_lat"},
//	  []any{"bus", 40.4168},
//	  []any{"metro", 40.4205},
//	)
//	cells, _ := tbl.Column("mode")
//
// Returned column slices are backing storage: callers must treat them as
// read-only.
package table
