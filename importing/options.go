package importing

import (
	"errors"
	"log/slog"
)

// Defaults for ImportTrips, single source of truth.
const (
	// DefaultMaxIssues caps the issue list of one import report.
	DefaultMaxIssues = 200

	// DefaultSampleRowsPerIssue bounds row samples carried in Issue.Details.
	DefaultSampleRowsPerIssue = 50
)

// ErrImport indicates the source table could not be reconciled with the
// canonical schema under the active policy (blocking issues with
// Options.Strict set).
var ErrImport = errors.New("importing: import failed")

// ErrNilTable indicates a nil input table; structural, raised regardless of
// strictness.
var ErrNilTable = errors.New("importing: table is nil")

// Options is the import/standardization policy. Immutable; construct with
// DefaultOptions and override fields before the call.
type Options struct {
	// KeepExtraFields retains source columns outside the schema as dataset
	// extensions. When false, unresolved non-required columns are dropped.
	KeepExtraFields bool

	// SelectedFields, when non-nil, restricts the kept canonical fields to
	// the required set plus this list.
	SelectedFields []string

	// Strict escalates error-level issues into a returned ErrImport after
	// the full pass.
	Strict bool

	// StrictDomains treats out-of-base-domain categorical values as errors
	// even when the DomainSpec is extendable.
	StrictDomains bool

	// MaxIssues caps the report's issue list; excess issues are suppressed
	// and counted in the summary.
	MaxIssues int

	// SampleRowsPerIssue bounds the per-issue row/value samples in Details.
	SampleRowsPerIssue int

	// Logger, when non-nil, receives per-step diagnostics.
	Logger *slog.Logger
}

// DefaultOptions returns the v1.1 import defaults: keep extras, non-strict,
// extendable domains honored.
func DefaultOptions() Options {
	return Options{
		KeepExtraFields:    true,
		MaxIssues:          DefaultMaxIssues,
		SampleRowsPerIssue: DefaultSampleRowsPerIssue,
	}
}

// params renders the effective options JSON-safe for reports and events.
func (o Options) params() map[string]any {
	out := map[string]any{
		"keep_extra_fields":     o.KeepExtraFields,
		"strict":                o.Strict,
		"strict_domains":        o.StrictDomains,
		"max_issues":            o.MaxIssues,
		"sample_rows_per_issue": o.SampleRowsPerIssue,
	}
	if o.SelectedFields != nil {
		out["selected_fields"] = append([]string(nil), o.SelectedFields...)
	}

	return out
}

// Input carries the per-call import inputs, as opposed to the reusable
// policy in Options.
type Input struct {
	// SourceName identifies the source ("EOD", "XDR", ...) in metadata.
	SourceName string

	// FieldCorrespondence maps canonical field → source column.
	FieldCorrespondence map[string]string

	// ValueCorrespondence maps field → (raw value → canonical value).
	ValueCorrespondence map[string]map[string]string

	// Provenance is extra JSON-safe source metadata (period, zone, license).
	Provenance map[string]any

	// H3Resolution is the resolution used to derive origin/destination cell
	// indices; 0 selects geo.DefaultResolution. Recorded in metadata for
	// reproducibility.
	H3Resolution int
}
