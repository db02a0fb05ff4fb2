package report

// Level is the severity of an Issue.
type Level string

// Issue severities, ordered Info < Warning < Error.
const (
	// Info records traceability findings that need no action.
	Info Level = "info"

	// Warning flags a potentially problematic condition; processing continues.
	Warning Level = "warning"

	// Error flags a mandatory-rule violation; under strict policy it aborts
	// the operation after the full pass completes.
	Error Level = "error"
)

// Stable machine-readable issue codes emitted across the library.
const (
	CodeMissingRequiredField   = "MISSING_REQUIRED_FIELD"
	CodeMissingSourceField     = "MISSING_SOURCE_FIELD"
	CodeDuplicateFieldMapping  = "DUPLICATE_FIELD_MAPPING"
	CodeOutOfDomainValue       = "OUT_OF_DOMAIN_VALUE"
	CodeDomainExtended         = "DOMAIN_EXTENDED"
	CodeTypeCoercionFailed     = "TYPE_COERCION_FAILED"
	CodeNullInRequiredField    = "NULL_IN_REQUIRED_FIELD"
	CodeConstraintViolation    = "CONSTRAINT_VIOLATION"
	CodeOutOfDomainRatio       = "OUT_OF_DOMAIN_RATIO"
	CodeTemporalInconsistency  = "TEMPORAL_INCONSISTENCY"
	CodeH3LatLonMismatch       = "H3_LATLON_MISMATCH"
	CodeDuplicateRows          = "DUPLICATE_ROWS"
	CodeFieldNotFound          = "FIELD_NOT_FOUND"
	CodeValuesRecoded          = "VALUES_RECODED"
	CodeColumnOverwritten      = "COLUMN_OVERWRITTEN"
	CodeDuplicateEnrichKeys    = "DUPLICATE_ENRICHMENT_KEYS"
	CodeSchemaVersionMismatch  = "SCHEMA_VERSION_MISMATCH"
	CodeUnvalidatedInput       = "UNVALIDATED_INPUT"
	CodeRowsDropped            = "ROWS_DROPPED"
	CodeNonMonotonicTimestamps = "NON_MONOTONIC_TIMESTAMPS"
	CodeCoordsOutOfBounds      = "COORDS_OUT_OF_BOUNDS"
	CodeUnparseableTimestamp   = "UNPARSEABLE_TIMESTAMP"
	CodeInvalidSpatialFilter   = "INVALID_SPATIAL_FILTER"
)

// Issue is one immutable finding emitted during import, validation,
// correspondence fixing, aggregation or inference.
type Issue struct {
	// Level is the severity.
	Level Level `json:"level"`

	// Code is a stable machine-readable classifier, e.g. "MISSING_REQUIRED_FIELD".
	Code string `json:"code"`

	// Message is the human description.
	Message string `json:"message"`

	// Field is the canonical field affected, when applicable.
	Field string `json:"field,omitempty"`

	// SourceField is the external-source column affected, when applicable.
	SourceField string `json:"source_field,omitempty"`

	// RowCount is the number of affected rows, when applicable.
	RowCount int `json:"row_count,omitempty"`

	// Details carries structured, sample-bounded context (offending values,
	// row samples, ratios). Must stay JSON-safe.
	Details map[string]any `json:"details,omitempty"`
}
