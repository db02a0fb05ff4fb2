package fixing

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/katalvlaran/golondrina/dataset"
	"github.com/katalvlaran/golondrina/importing"
	"github.com/katalvlaran/golondrina/report"
)

// EventFixCorrespondence is the metadata event stamped by
// FixTripsCorrespondence.
const EventFixCorrespondence = "fix_trips_correspondence"

// ErrFix indicates error-level issues were present and Options.Strict was
// set.
var ErrFix = errors.New("fixing: fix failed")

// ErrNilDataset indicates a nil input dataset.
var ErrNilDataset = errors.New("fixing: dataset is nil")

// Defaults for fix operations.
const (
	DefaultMaxIssues          = 200
	DefaultSampleRowsPerIssue = 50
)

// Options controls one fix operation.
type Options struct {
	// Strict turns error-level issues into a returned ErrFix; the report is
	// still returned in full.
	Strict bool

	// MaxIssues caps the emitted issue list.
	MaxIssues int

	// SampleRowsPerIssue bounds row samples carried in Issue.Details.
	SampleRowsPerIssue int

	// Logger, when non-nil, receives per-correction diagnostics.
	Logger *slog.Logger
}

// DefaultOptions returns the fix defaults: non-strict, issue cap 200.
func DefaultOptions() Options {
	return Options{
		MaxIssues:          DefaultMaxIssues,
		SampleRowsPerIssue: DefaultSampleRowsPerIssue,
	}
}

func (o Options) params() map[string]any {
	return map[string]any{
		"strict":                o.Strict,
		"max_issues":            o.MaxIssues,
		"sample_rows_per_issue": o.SampleRowsPerIssue,
	}
}

// FixTripsCorrespondence renames columns per fieldCorrections
// (current name → target name) and recodes values per valueCorrections
// (field → old value → new value), returning a new dataset with the
// corrections folded into its recorded correspondences.
//
// A correction naming a missing column is a warning, not a failure; a rename
// whose target column already exists is an error and is skipped. The
// returned dataset has its validated flag cleared even when nothing changed.
func FixTripsCorrespondence(
	ds *dataset.TripDataset,
	fieldCorrections map[string]string,
	valueCorrections map[string]map[string]string,
	opts Options,
) (*dataset.TripDataset, *report.OperationReport, error) {
	if ds == nil {
		return nil, nil, ErrNilDataset
	}

	b := report.NewBuilder(opts.MaxIssues)
	tbl := ds.Data
	renamed := make(map[string]string)
	recoded := make(map[string]int)

	for _, current := range sortedKeys(fieldCorrections) {
		target := fieldCorrections[current]
		switch {
		case !tbl.HasColumn(current):
			b.Add(report.Issue{
				Level:       report.Warning,
				Code:        report.CodeFieldNotFound,
				Message:     fmt.Sprintf("column %q not present; rename to %q skipped", current, target),
				Field:       target,
				SourceField: current,
			})
		case current == target:
			// identity correction, nothing to do
		case tbl.HasColumn(target):
			b.Add(report.Issue{
				Level:       report.Error,
				Code:        report.CodeDuplicateFieldMapping,
				Message:     fmt.Sprintf("cannot rename %q to %q: target column already exists", current, target),
				Field:       target,
				SourceField: current,
			})
		default:
			next, err := tbl.Rename(map[string]string{current: target})
			if err != nil {
				return nil, nil, fmt.Errorf("fixing: rename %q: %w", current, err)
			}
			tbl = next
			renamed[current] = target
			if opts.Logger != nil {
				opts.Logger.Debug("column renamed", "from", current, "to", target)
			}
		}
	}

	for _, field := range sortedKeys(valueCorrections) {
		mapping := valueCorrections[field]
		if len(mapping) == 0 {
			continue
		}
		if !tbl.HasColumn(field) {
			b.Add(report.Issue{
				Level:   report.Warning,
				Code:    report.CodeFieldNotFound,
				Message: fmt.Sprintf("column %q not present; value recode skipped", field),
				Field:   field,
			})

			continue
		}
		next, changed, err := importing.RecodeColumn(tbl, field, mapping)
		if err != nil {
			return nil, nil, fmt.Errorf("fixing: recode %q: %w", field, err)
		}
		tbl = next
		recoded[field] = changed
		b.Add(report.Issue{
			Level:    report.Info,
			Code:     report.CodeValuesRecoded,
			Message:  fmt.Sprintf("field %q: %d values recoded", field, changed),
			Field:    field,
			RowCount: changed,
			Details:  map[string]any{"mapping_size": len(mapping)},
		})
	}

	summary := map[string]any{
		"rows":            tbl.NumRows(),
		"fields_renamed":  renamed,
		"values_recoded":  recoded,
		"renames_applied": len(renamed),
	}
	rep := b.Build(summary, opts.params())
	if opts.Strict && !rep.Ok {
		return nil, rep, fmt.Errorf("%w: %d error issues", ErrFix, rep.CountByLevel(report.Error))
	}

	out := ds.WithData(tbl)
	out.FieldCorrespondence = composeFieldMap(ds.FieldCorrespondence, renamed)
	out.ValueCorrespondence = composeValueMaps(ds.ValueCorrespondence, valueCorrections, recoded)
	out = out.WithEvent(dataset.NewEvent(EventFixCorrespondence, rep.Parameters, rep.Summary))

	return out, rep, nil
}

// composeFieldMap folds applied renames into the recorded canonical → source
// map: an entry whose canonical column was renamed keeps its source column
// under the new canonical key, and a renamed column with no recorded source
// records the previous column name as its source.
func composeFieldMap(existing, renamed map[string]string) map[string]string {
	out := make(map[string]string, len(existing)+len(renamed))
	for canonical, src := range existing {
		if target, ok := renamed[canonical]; ok {
			canonical = target
		}
		out[canonical] = src
	}
	for current, target := range renamed {
		if _, ok := out[target]; !ok {
			out[target] = current
		}
	}

	return out
}

// composeValueMaps merges newly applied value corrections into the recorded
// per-field value maps. Only fields that were actually recoded are merged.
func composeValueMaps(existing map[string]map[string]string, corrections map[string]map[string]string, recoded map[string]int) map[string]map[string]string {
	out := make(map[string]map[string]string, len(existing))
	for field, m := range existing {
		cp := make(map[string]string, len(m))
		for k, v := range m {
			cp[k] = v
		}
		out[field] = cp
	}
	for field := range recoded {
		m := out[field]
		if m == nil {
			m = make(map[string]string, len(corrections[field]))
			out[field] = m
		}
		for old, fixed := range corrections[field] {
			// chase earlier recodes so old raw values map to the final form
			for raw, mapped := range m {
				if mapped == old {
					m[raw] = fixed
				}
			}
			m[old] = fixed
		}
	}

	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
