package schema

import "errors"

// Sentinel errors for schema lookups and structural checks.
var (
	// ErrUnknownField indicates a field name absent from a schema's catalog.
	ErrUnknownField = errors.New("schema: unknown field")

	// ErrSchemaInvalid indicates a malformed schema: a required name missing
	// from the field catalog, an empty field name, or a nil schema.
	ErrSchemaInvalid = errors.New("schema: invalid schema")
)

// DType is the logical type tag of a canonical field.
type DType string

// Logical field types of the Golondrina format.
const (
	String      DType = "string"
	Int         DType = "int"
	Float       DType = "float"
	Datetime    DType = "datetime"
	Categorical DType = "categorical"
)

// Constraint keys understood by the validation engine. Constraints are an
// open structured map; unknown keys are carried but not evaluated.
const (
	ConstraintMin         = "min"          // float64 lower bound, inclusive
	ConstraintMax         = "max"          // float64 upper bound, inclusive
	ConstraintNonNegative = "non_negative" // bool
	ConstraintFormat      = "format"       // string, e.g. "h3"
)

// FormatH3 marks a string field holding an H3 cell index.
const FormatH3 = "h3"

// DomainSpec is the categorical value catalog of one field.
//
//   - Values     — ordered set of canonical category strings.
//   - Extendable — whether a dataset may introduce new categories beyond
//     Values as controlled extensions.
//   - Aliases    — synonym → canonical value, applied before any
//     domain-membership check.
type DomainSpec struct {
	Values     []string
	Extendable bool
	Aliases    map[string]string
}

// Canonical resolves v through Aliases, returning the canonical spelling.
func (d DomainSpec) Canonical(v string) string {
	if mapped, ok := d.Aliases[v]; ok {
		return mapped
	}

	return v
}

// Contains reports whether v (after alias resolution by the caller) is a
// member of the base domain.
func (d DomainSpec) Contains(v string) bool {
	for _, known := range d.Values {
		if known == v {
			return true
		}
	}

	return false
}

// FieldSpec is the specification of one canonical Golondrina field.
// Immutable once constructed.
type FieldSpec struct {
	// Name is the canonical identifier, unique within a schema.
	Name string

	// DType is the logical type tag.
	DType DType

	// Required marks the field as mandatory for conformance.
	Required bool

	// Constraints is an open structured map (ranges, non-negativity, format).
	Constraints map[string]any

	// Domain is the categorical catalog; only meaningful when DType is Categorical.
	Domain *DomainSpec
}
