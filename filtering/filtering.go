package filtering

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/katalvlaran/golondrina/dataset"
	"github.com/katalvlaran/golondrina/report"
	"github.com/katalvlaran/golondrina/schema"
	"github.com/katalvlaran/golondrina/table"
)

// EventFilterTrips is the metadata event stamped by FilterTrips.
const EventFilterTrips = "filter_trips"

// ErrFilter indicates error-level issues were present and Options.Strict was
// set.
var ErrFilter = errors.New("filtering: filter failed")

// ErrNilDataset indicates a nil input dataset.
var ErrNilDataset = errors.New("filtering: dataset is nil")

// ErrNilTable indicates a nil input table.
var ErrNilTable = errors.New("filtering: table is nil")

// DefaultMaxIssues caps the issue list of one filter report.
const DefaultMaxIssues = 100

// Options bundles the predicates of one filter call. All set predicate
// families must hold for a row to survive (AND semantics). An Options with
// no predicates is a pass-through.
type Options struct {
	// Conditions are per-field predicates, all of which must match.
	Conditions []Condition

	// Time, when non-nil, constrains the trip's time span.
	Time *TimeFilter

	// Spatial, when non-nil, constrains the trip's endpoints.
	Spatial *Spatial

	// Strict escalates predicate problems (unknown fields, malformed
	// spatial specs) from skip-with-warning into a returned ErrFilter.
	Strict bool

	// MaxIssues caps the emitted issue list.
	MaxIssues int

	// Logger, when non-nil, receives per-predicate diagnostics.
	Logger *slog.Logger
}

// DefaultOptions returns an empty, non-strict pass-through filter.
func DefaultOptions() Options {
	return Options{MaxIssues: DefaultMaxIssues}
}

func (o Options) params() map[string]any {
	out := map[string]any{
		"strict":     o.Strict,
		"conditions": len(o.Conditions),
	}
	if o.Time != nil {
		out["time_mode"] = string(o.Time.Mode)
		out["time_start"] = o.Time.Start.UTC().Format("2006-01-02T15:04:05Z07:00")
		out["time_end"] = o.Time.End.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if o.Spatial != nil {
		out["spatial_target"] = string(o.Spatial.target())
		out["spatial_cells"] = len(o.Spatial.Cells)
		out["spatial_bbox"] = o.Spatial.BBox != nil
		out["spatial_polygon"] = len(o.Spatial.Polygon) > 0
	}

	return out
}

// Mask evaluates the predicates of opts against tbl and returns the keep
// mask, without subsetting. Predicates that cannot be evaluated (unknown
// field, malformed spatial spec, missing coordinate columns) are skipped
// and reported; strictness changes only their level.
func Mask(tbl *table.Table, opts Options) ([]bool, []report.Issue, error) {
	if tbl == nil {
		return nil, nil, ErrNilTable
	}

	var issues []report.Issue
	skipLevel := report.Warning
	if opts.Strict {
		skipLevel = report.Error
	}

	mask := make([]bool, tbl.NumRows())
	for i := range mask {
		mask[i] = true
	}

	for _, cond := range opts.Conditions {
		cells, err := tbl.Column(cond.Field)
		if err != nil {
			issues = append(issues, report.Issue{
				Level:   skipLevel,
				Code:    report.CodeFieldNotFound,
				Message: fmt.Sprintf("condition on unknown field %q skipped", cond.Field),
				Field:   cond.Field,
				Details: map[string]any{"op": string(cond.Op)},
			})

			continue
		}
		for i := range mask {
			if mask[i] && !cond.matches(cells[i]) {
				mask[i] = false
			}
		}
	}

	if opts.Time != nil {
		origins, errO := tbl.Column(schema.FieldOriginTime)
		dests, errD := tbl.Column(schema.FieldDestTime)
		if errO != nil || errD != nil {
			issues = append(issues, report.Issue{
				Level:   skipLevel,
				Code:    report.CodeFieldNotFound,
				Message: "time filter skipped: origin/destination time columns missing",
				Field:   schema.FieldOriginTime,
			})
		} else {
			for i := range mask {
				if mask[i] && !opts.Time.matches(origins[i], dests[i]) {
					mask[i] = false
				}
			}
		}
	}

	if opts.Spatial != nil {
		sp := *opts.Spatial
		switch {
		case sp.predicateCount() != 1:
			issues = append(issues, report.Issue{
				Level:   report.Error,
				Code:    report.CodeInvalidSpatialFilter,
				Message: fmt.Sprintf("spatial filter needs exactly one of cells, bbox, polygon; got %d", sp.predicateCount()),
			})
		case !validTarget(sp.target()):
			issues = append(issues, report.Issue{
				Level:   report.Error,
				Code:    report.CodeInvalidSpatialFilter,
				Message: fmt.Sprintf("unknown spatial target %q", sp.Target),
			})
		case !spatialColumnsPresent(tbl, sp):
			origin, dest := sp.columns()
			issues = append(issues, report.Issue{
				Level:   skipLevel,
				Code:    report.CodeFieldNotFound,
				Message: "spatial filter skipped: endpoint columns missing",
				Details: map[string]any{"origin_columns": origin, "destination_columns": dest},
			})
		default:
			ev := newSpatialEval(tbl, sp)
			for i := range mask {
				if mask[i] && !ev.matches(i) {
					mask[i] = false
				}
			}
		}
	}

	return mask, issues, nil
}

func validTarget(t Target) bool {
	switch t {
	case TargetOrigin, TargetDestination, TargetBoth, TargetEither:
		return true
	default:
		return false
	}
}

// spatialColumnsPresent checks the columns the predicate needs for the
// targeted endpoints.
func spatialColumnsPresent(tbl *table.Table, sp Spatial) bool {
	origin, dest := sp.columns()
	has := func(cols []string) bool {
		for _, c := range cols {
			if !tbl.HasColumn(c) {
				return false
			}
		}

		return true
	}
	switch sp.target() {
	case TargetOrigin:
		return has(origin)
	case TargetDestination:
		return has(dest)
	case TargetEither:
		return has(origin) || has(dest)
	default:
		return has(origin) && has(dest)
	}
}

// FilterTrips returns a new dataset holding the rows that satisfy every
// predicate of opts. Values are never edited, so the validated flag of the
// input is preserved on the output. An empty opts is a pass-through that
// still stamps its event.
func FilterTrips(ds *dataset.TripDataset, opts Options) (*dataset.TripDataset, *report.OperationReport, error) {
	if ds == nil {
		return nil, nil, ErrNilDataset
	}

	b := report.NewBuilder(opts.MaxIssues)
	mask, issues, err := Mask(ds.Data, opts)
	if err != nil {
		return nil, nil, err
	}
	b.AddAll(issues)

	kept := 0
	for _, keep := range mask {
		if keep {
			kept++
		}
	}

	summary := map[string]any{
		"rows_in":      ds.Data.NumRows(),
		"rows_out":     kept,
		"rows_dropped": ds.Data.NumRows() - kept,
	}
	rep := b.Build(summary, opts.params())
	if opts.Strict && !rep.Ok {
		return nil, rep, fmt.Errorf("%w: %d error issues", ErrFilter, rep.CountByLevel(report.Error))
	}

	filtered, err := ds.Data.FilterMask(mask)
	if err != nil {
		return nil, nil, fmt.Errorf("filtering: apply mask: %w", err)
	}
	if opts.Logger != nil {
		opts.Logger.Info("trips filtered",
			"rows_in", ds.Data.NumRows(), "rows_out", kept)
	}

	// row subsetting keeps every surviving value intact, so the validated
	// flag carries over
	out := ds.Clone()
	out.Data = filtered
	out = out.WithEvent(dataset.NewEvent(EventFilterTrips, rep.Parameters, rep.Summary))

	return out, rep, nil
}
