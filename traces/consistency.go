package traces

import (
	"errors"
	"fmt"
	"strings"

	"github.com/katalvlaran/golondrina/dataset"
	"github.com/katalvlaran/golondrina/geo"
	"github.com/katalvlaran/golondrina/report"
	"github.com/katalvlaran/golondrina/schema"
	"github.com/katalvlaran/golondrina/table"
)

// EventValidateTraces is the metadata event stamped by ValidateTraces.
const EventValidateTraces = "validate_traces"

// ErrConsistency indicates error-level issues were present and
// Options.Strict was set.
var ErrConsistency = errors.New("traces: consistency validation failed")

// ValidateTraceConsistency checks a trace table read-only: required role
// columns, timestamp parseability, per-user timestamp monotonicity in row
// order, and coordinate plausibility (EPSG:4326 schemas only).
//
// Non-monotonic timestamps are a warning, since inference re-sorts per
// user; unparseable timestamps and out-of-bounds coordinates are errors.
func ValidateTraceConsistency(tbl *table.Table, sch *schema.TraceSchema, opts Options) (*report.ConsistencyReport, error) {
	if tbl == nil {
		return nil, ErrNilTable
	}
	if err := sch.Validate(); err != nil {
		return nil, err
	}

	b := report.NewBuilder(opts.MaxIssues)
	for _, name := range sch.RequiredFields() {
		if !tbl.HasColumn(name) {
			b.Add(report.Issue{
				Level:   report.Error,
				Code:    report.CodeMissingRequiredField,
				Message: fmt.Sprintf("required trace field %q is missing", name),
				Field:   name,
			})
		}
	}

	users, errUsers := tbl.Column(sch.UserIDField)
	times, errTimes := tbl.Column(sch.TimeField)
	if errUsers == nil && errTimes == nil {
		checkTimestamps(b, sch, users, times, opts)
	}

	if strings.EqualFold(sch.EffectiveCRS(), schema.DefaultCRS) {
		checkCoordinates(b, tbl, sch, opts)
	}

	summary := map[string]any{
		"rows":  tbl.NumRows(),
		"users": countUsers(users, errUsers == nil),
		"crs":   sch.EffectiveCRS(),
	}
	rep := b.Build(summary, opts.params())
	if opts.Strict && !rep.Ok {
		return rep, fmt.Errorf("%w: %d error issues", ErrConsistency, rep.CountByLevel(report.Error))
	}

	return rep, nil
}

// checkTimestamps verifies parseability of every timestamp and, per user,
// that timestamps do not decrease in row order.
func checkTimestamps(b *report.Builder, sch *schema.TraceSchema, users, times []any, opts Options) {
	var unparseable []int
	lastSeen := make(map[string]int64)
	nonMonotonic := make(map[string]struct{})
	var badRows []int
	for i := range times {
		if table.IsNull(times[i]) {
			continue
		}
		t, ok := table.AsTime(times[i])
		if !ok {
			unparseable = append(unparseable, i)

			continue
		}
		user := table.KeyString(users[i])
		if prev, seen := lastSeen[user]; seen && t.Unix() < prev {
			if _, counted := nonMonotonic[user]; !counted {
				nonMonotonic[user] = struct{}{}
			}
			badRows = append(badRows, i)
		}
		lastSeen[user] = t.Unix()
	}

	if len(unparseable) > 0 {
		b.Add(report.Issue{
			Level:    report.Error,
			Code:     report.CodeUnparseableTimestamp,
			Message:  fmt.Sprintf("field %q has %d unparseable timestamps", sch.TimeField, len(unparseable)),
			Field:    sch.TimeField,
			RowCount: len(unparseable),
			Details:  map[string]any{"sample_rows": capInts(unparseable, opts.SampleRowsPerIssue)},
		})
	}
	if len(badRows) > 0 {
		b.Add(report.Issue{
			Level:    report.Warning,
			Code:     report.CodeNonMonotonicTimestamps,
			Message:  fmt.Sprintf("%d users have non-monotonic timestamps in row order", len(nonMonotonic)),
			Field:    sch.TimeField,
			RowCount: len(badRows),
			Details: map[string]any{
				"users":       len(nonMonotonic),
				"sample_rows": capInts(badRows, opts.SampleRowsPerIssue),
			},
		})
	}
}

// checkCoordinates verifies lat/lon plausibility row-wise.
func checkCoordinates(b *report.Builder, tbl *table.Table, sch *schema.TraceSchema, opts Options) {
	lats, errLat := tbl.Column(sch.LatField)
	lons, errLon := tbl.Column(sch.LonField)
	if errLat != nil || errLon != nil {
		return
	}
	var badRows []int
	for i := range lats {
		if table.IsNull(lats[i]) || table.IsNull(lons[i]) {
			continue
		}
		lat, okLat := table.AsFloat(lats[i])
		lon, okLon := table.AsFloat(lons[i])
		if !okLat || !okLon || !geo.ValidLatLon(lat, lon) {
			badRows = append(badRows, i)
		}
	}
	if len(badRows) == 0 {
		return
	}
	b.Add(report.Issue{
		Level:    report.Error,
		Code:     report.CodeCoordsOutOfBounds,
		Message:  fmt.Sprintf("%d points have implausible coordinates", len(badRows)),
		Field:    sch.LatField,
		RowCount: len(badRows),
		Details:  map[string]any{"sample_rows": capInts(badRows, opts.SampleRowsPerIssue)},
	})
}

func countUsers(users []any, present bool) int {
	if !present {
		return 0
	}
	seen := make(map[string]struct{})
	for _, u := range users {
		if table.IsNull(u) {
			continue
		}
		seen[table.KeyString(u)] = struct{}{}
	}

	return len(seen)
}

func capInts(rows []int, limit int) []int {
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	return append([]int(nil), rows...)
}

// ValidateTraces runs the consistency checks over a trace dataset and
// returns a new dataset whose validated flag reflects the outcome, with a
// "validate_traces" event appended.
func ValidateTraces(ds *dataset.TraceDataset, opts Options) (*dataset.TraceDataset, *report.ConsistencyReport, error) {
	if ds == nil {
		return nil, nil, ErrNilDataset
	}
	rep, err := ValidateTraceConsistency(ds.Data, ds.Schema, opts)
	if err != nil {
		return nil, rep, err
	}

	out := ds.WithValidated(rep.Ok).
		WithEvent(dataset.NewEvent(EventValidateTraces, rep.Parameters, rep.Summary))

	return out, rep, nil
}
