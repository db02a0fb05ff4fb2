package concat

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/katalvlaran/golondrina/dataset"
	"github.com/katalvlaran/golondrina/report"
	"github.com/katalvlaran/golondrina/schema"
	"github.com/katalvlaran/golondrina/table"
)

// EventConcatTrips is the metadata event stamped by ConcatTripDatasets.
const EventConcatTrips = "concat_trip_datasets"

// ErrConcat indicates error-level issues were present and Options.Strict was
// set.
var ErrConcat = errors.New("concat: concatenation failed")

// ErrNoDatasets indicates an empty or nil-holding input slice.
var ErrNoDatasets = errors.New("concat: no datasets given")

// DefaultMaxIssues caps the issue list of one concat report.
const DefaultMaxIssues = 100

// Options controls one concatenation.
type Options struct {
	// RequireSameSchemaVersion makes a version mismatch between inputs an
	// error rather than a warning.
	RequireSameSchemaVersion bool

	// AllowExtendedDomains unions the effective domains of the inputs. When
	// false the first input's domains stand and extra values are reported.
	AllowExtendedDomains bool

	// Deduplicate drops later copies of duplicate rows after the union.
	Deduplicate bool

	// DeduplicateOn is the duplicate key tuple. Empty picks trip_id when
	// present, else the logical trip key among the columns present.
	DeduplicateOn []string

	// Strict escalates error-level issues into a returned ErrConcat.
	Strict bool

	// MaxIssues caps the emitted issue list.
	MaxIssues int

	// Logger, when non-nil, receives merge diagnostics.
	Logger *slog.Logger
}

// DefaultOptions returns the concat defaults: same schema version required,
// domain union allowed, no deduplication.
func DefaultOptions() Options {
	return Options{
		RequireSameSchemaVersion: true,
		AllowExtendedDomains:     true,
		MaxIssues:                DefaultMaxIssues,
	}
}

func (o Options) params() map[string]any {
	out := map[string]any{
		"require_same_schema_version": o.RequireSameSchemaVersion,
		"allow_extended_domains":      o.AllowExtendedDomains,
		"deduplicate":                 o.Deduplicate,
		"strict":                      o.Strict,
	}
	if len(o.DeduplicateOn) > 0 {
		out["deduplicate_on"] = append([]string(nil), o.DeduplicateOn...)
	}

	return out
}

// ConcatTripDatasets unions the given datasets into a new one carrying the
// first input's schema. The returned dataset has its validated flag cleared.
func ConcatTripDatasets(datasets []*dataset.TripDataset, opts Options) (*dataset.TripDataset, *report.OperationReport, error) {
	if len(datasets) == 0 {
		return nil, nil, ErrNoDatasets
	}
	for _, ds := range datasets {
		if ds == nil {
			return nil, nil, ErrNoDatasets
		}
	}

	b := report.NewBuilder(opts.MaxIssues)
	first := datasets[0]

	versionLevel := report.Warning
	if opts.RequireSameSchemaVersion {
		versionLevel = report.Error
	}
	for i, ds := range datasets[1:] {
		if ds.SchemaVersion != first.SchemaVersion {
			b.Add(report.Issue{
				Level:   versionLevel,
				Code:    report.CodeSchemaVersionMismatch,
				Message: fmt.Sprintf("dataset %d has schema version %q, expected %q", i+1, ds.SchemaVersion, first.SchemaVersion),
				Details: map[string]any{"index": i + 1, "version": ds.SchemaVersion},
			})
		}
	}

	tables := make([]*table.Table, 0, len(datasets)-1)
	for _, ds := range datasets[1:] {
		tables = append(tables, ds.Data)
	}
	combined, err := first.Data.Concat(tables...)
	if err != nil {
		return nil, nil, fmt.Errorf("concat: union tables: %w", err)
	}

	domains, domainIssues := mergeDomains(datasets, opts)
	b.AddAll(domainIssues)

	deduped := 0
	if opts.Deduplicate {
		key := dedupeKey(combined, opts.DeduplicateOn)
		if len(key) == 0 {
			b.Add(report.Issue{
				Level:   report.Warning,
				Code:    report.CodeFieldNotFound,
				Message: "no deduplication key columns present; deduplication skipped",
			})
		} else {
			mask, maskErr := combined.DistinctMask(key)
			if maskErr != nil {
				return nil, nil, fmt.Errorf("concat: deduplicate: %w", maskErr)
			}
			next, filterErr := combined.FilterMask(mask)
			if filterErr != nil {
				return nil, nil, fmt.Errorf("concat: deduplicate: %w", filterErr)
			}
			deduped = combined.NumRows() - next.NumRows()
			combined = next
			if deduped > 0 {
				b.Add(report.Issue{
					Level:    report.Info,
					Code:     report.CodeRowsDropped,
					Message:  fmt.Sprintf("%d duplicate rows dropped over key %v", deduped, key),
					RowCount: deduped,
					Details:  map[string]any{"key": key},
				})
			}
		}
	}

	summary := map[string]any{
		"datasets_in":  len(datasets),
		"rows_out":     combined.NumRows(),
		"rows_deduped": deduped,
	}
	rep := b.Build(summary, opts.params())
	if opts.Strict && !rep.Ok {
		return nil, rep, fmt.Errorf("%w: %d error issues", ErrConcat, rep.CountByLevel(report.Error))
	}
	if opts.Logger != nil {
		opts.Logger.Info("trip datasets concatenated",
			"inputs", len(datasets), "rows", combined.NumRows())
	}

	out := first.WithData(combined)
	out.ID = uuid.NewString()
	out.DomainsEffective = domains
	out.Provenance = mergeProvenance(datasets)
	out = out.WithEvent(dataset.NewEvent(EventConcatTrips, rep.Parameters, rep.Summary))

	return out, rep, nil
}

// mergeDomains reconciles the per-field effective domains of the inputs.
// With AllowExtendedDomains the union is taken in first-seen order; without
// it the first dataset's domains stand and extra values become warnings.
func mergeDomains(datasets []*dataset.TripDataset, opts Options) (map[string][]string, []report.Issue) {
	merged := make(map[string][]string)
	seen := make(map[string]map[string]struct{})
	var issues []report.Issue

	for idx, ds := range datasets {
		for field, values := range ds.DomainsEffective {
			if seen[field] == nil {
				seen[field] = make(map[string]struct{})
			}
			var extra []string
			for _, v := range values {
				if _, ok := seen[field][v]; ok {
					continue
				}
				if idx > 0 && !opts.AllowExtendedDomains {
					extra = append(extra, v)

					continue
				}
				seen[field][v] = struct{}{}
				merged[field] = append(merged[field], v)
			}
			if len(extra) > 0 {
				issues = append(issues, report.Issue{
					Level:    report.Warning,
					Code:     report.CodeDomainExtended,
					Message:  fmt.Sprintf("dataset %d carries %d domain values of %q not in the first dataset", idx, len(extra), field),
					Field:    field,
					RowCount: len(extra),
					Details:  map[string]any{"values": extra, "index": idx},
				})
			}
		}
	}
	if len(merged) == 0 {
		return nil, issues
	}

	return merged, issues
}

// dedupeKey picks the duplicate key: explicit subset, else trip_id, else the
// logical trip key, filtered to the columns present.
func dedupeKey(tbl *table.Table, subset []string) []string {
	candidates := subset
	if len(candidates) == 0 {
		if tbl.HasColumn(schema.FieldTripID) {
			return []string{schema.FieldTripID}
		}
		candidates = []string{
			schema.FieldUserID,
			schema.FieldOriginTime,
			schema.FieldOriginH3,
			schema.FieldDestH3,
		}
	}
	var key []string
	for _, name := range candidates {
		if tbl.HasColumn(name) {
			key = append(key, name)
		}
	}

	return key
}

// mergeProvenance keeps each input's provenance under its position.
func mergeProvenance(datasets []*dataset.TripDataset) map[string]any {
	sources := make([]any, 0, len(datasets))
	for _, ds := range datasets {
		entry := map[string]any{"id": ds.ID}
		for k, v := range ds.Provenance {
			entry[k] = v
		}
		sources = append(sources, entry)
	}

	return map[string]any{"operation": "concat", "sources": sources}
}
