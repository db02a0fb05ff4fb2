package table

import "errors"

// Sentinel errors for table construction and transformation.
var (
	// ErrUnknownColumn indicates an operation referenced a column that does not exist.
	ErrUnknownColumn = errors.New("table: unknown column")

	// ErrDuplicateColumn indicates a construction or rename would produce two columns with one name.
	ErrDuplicateColumn = errors.New("table: duplicate column name")

	// ErrLengthMismatch indicates a column whose cell count differs from the table's row count.
	ErrLengthMismatch = errors.New("table: column length mismatch")

	// ErrBadMask indicates a filter mask whose length differs from the row count.
	ErrBadMask = errors.New("table: mask length mismatch")

	// ErrRowIndex indicates a row index outside [0, NumRows).
	ErrRowIndex = errors.New("table: row index out of range")

	// ErrEmptyName indicates an empty column name.
	ErrEmptyName = errors.New("table: column name is empty")
)
