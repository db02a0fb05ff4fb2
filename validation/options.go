package validation

import (
	"errors"
	"log/slog"
)

// ErrValidation indicates error-level issues were present and Options.Strict
// was set.
var ErrValidation = errors.New("validation: validation failed")

// ErrNilTable indicates a nil input table; structural, raised regardless of
// strictness.
var ErrNilTable = errors.New("validation: table is nil")

// ErrNilDataset indicates a nil input dataset.
var ErrNilDataset = errors.New("validation: dataset is nil")

// DomainMode selects how categorical domains are checked.
type DomainMode string

// Domain validation modes.
const (
	// DomainsOff skips domain checks entirely.
	DomainsOff DomainMode = "off"

	// DomainsFull checks every row.
	DomainsFull DomainMode = "full"

	// DomainsSample checks a deterministic sample of rows
	// (see Options.DomainsSampleFrac).
	DomainsSample DomainMode = "sample"
)

// Defaults for validate operations, single source of truth.
const (
	// DefaultMaxIssues caps the issue list of one validation report.
	DefaultMaxIssues = 500

	// DefaultSampleRowsPerIssue bounds row samples carried in Issue.Details.
	DefaultSampleRowsPerIssue = 5

	// DefaultDomainsSampleFrac is the row fraction checked under DomainsSample.
	DefaultDomainsSampleFrac = 0.01

	// DefaultDomainsMinInDomainRatio is the in-domain ratio below which a
	// domain finding is an error rather than a warning.
	DefaultDomainsMinInDomainRatio = 1.0
)

// Options controls one validation run. Immutable; construct with
// DefaultOptions and override fields before the call.
type Options struct {
	// Strict escalates error-level issues into a returned ErrValidation
	// after the full pass completes.
	Strict bool

	// MaxIssues caps the emitted issue list; the cap hit is recorded in the
	// summary.
	MaxIssues int

	// SampleRowsPerIssue bounds the example rows in Issue.Details.
	SampleRowsPerIssue int

	// RequiredFields checks that every schema-required column exists.
	RequiredFields bool

	// TypesAndFormats checks per-field logical coercion (datetime parse,
	// numeric parse), aggregated per field.
	TypesAndFormats bool

	// Constraints checks structured per-field constraints: nullability of
	// required fields, numeric ranges, non-negativity, H3 format.
	Constraints bool

	// Domains selects the categorical domain check mode. The zero value
	// means DomainsOff.
	Domains DomainMode

	// DomainsSampleFrac is the fraction of rows checked under DomainsSample.
	DomainsSampleFrac float64

	// DomainsMinInDomainRatio grades severity: observed in-domain ratio
	// below it → error; below 1.0 → warning; exactly 1.0 → no issue.
	DomainsMinInDomainRatio float64

	// TemporalConsistency checks origin time ≤ destination time.
	TemporalConsistency bool

	// CrossfieldConsistency checks stored H3 cells against lat/lon at
	// H3Resolution.
	CrossfieldConsistency bool

	// Duplicates enables exact-match duplicate detection over
	// DuplicatesSubset.
	Duplicates bool

	// DuplicatesSubset is the key tuple for duplicate detection. Empty
	// selects the schema-derived default among the columns present
	// (user_id, origin_time, origin_h3, destination_h3).
	DuplicatesSubset []string

	// H3Resolution is the expected resolution for the crossfield check;
	// 0 reads the resolution recorded in the dataset metadata at import.
	H3Resolution int

	// Logger, when non-nil, receives per-check diagnostics.
	Logger *slog.Logger
}

// DefaultOptions returns the v1.1 validation defaults: the three structural
// checks on, domains off, optional checks off, non-strict.
func DefaultOptions() Options {
	return Options{
		MaxIssues:               DefaultMaxIssues,
		SampleRowsPerIssue:      DefaultSampleRowsPerIssue,
		RequiredFields:          true,
		TypesAndFormats:         true,
		Constraints:             true,
		Domains:                 DomainsOff,
		DomainsSampleFrac:       DefaultDomainsSampleFrac,
		DomainsMinInDomainRatio: DefaultDomainsMinInDomainRatio,
	}
}

// params renders the effective options JSON-safe for reports and events.
func (o Options) params() map[string]any {
	out := map[string]any{
		"strict":                      o.Strict,
		"max_issues":                  o.MaxIssues,
		"sample_rows_per_issue":       o.SampleRowsPerIssue,
		"validate_required_fields":    o.RequiredFields,
		"validate_types_and_formats":  o.TypesAndFormats,
		"validate_constraints":        o.Constraints,
		"validate_domains":            string(o.Domains),
		"domains_sample_frac":         o.DomainsSampleFrac,
		"domains_min_in_domain_ratio": o.DomainsMinInDomainRatio,
		"validate_temporal":           o.TemporalConsistency,
		"validate_crossfield":         o.CrossfieldConsistency,
		"validate_duplicates":         o.Duplicates,
	}
	if len(o.DuplicatesSubset) > 0 {
		out["duplicates_subset"] = append([]string(nil), o.DuplicatesSubset...)
	}
	if o.H3Resolution != 0 {
		out["h3_resolution"] = o.H3Resolution
	}

	return out
}
