package filtering_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/golondrina/dataset"
	"github.com/katalvlaran/golondrina/filtering"
	"github.com/katalvlaran/golondrina/geo"
	"github.com/katalvlaran/golondrina/report"
	"github.com/katalvlaran/golondrina/schema"
	"github.com/katalvlaran/golondrina/table"
)

// tripTable builds three canonical trips: two for u1 in central Santiago,
// one for u2 starting far north.
func tripTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.FromRows(
		[]string{schema.FieldUserID, schema.FieldOriginTime, schema.FieldDestTime,
			schema.FieldOriginLat, schema.FieldOriginLon,
			schema.FieldDestLat, schema.FieldDestLon, schema.FieldMode},
		[]any{"u1", "2024-03-01T08:00:00Z", "2024-03-01T08:40:00Z", -33.45, -70.66, -33.40, -70.60, "bus"},
		[]any{"u1", "2024-03-01T12:00:00Z", "2024-03-01T12:30:00Z", -33.44, -70.65, -33.41, -70.61, "metro"},
		[]any{"u2", "2024-03-01T22:00:00Z", "2024-03-01T23:10:00Z", -20.00, -70.10, -33.42, -70.62, "bus"},
	)
	require.NoError(t, err)

	return tbl
}

func tripDataset(t *testing.T) *dataset.TripDataset {
	t.Helper()

	return dataset.NewTripDataset(tripTable(t), schema.DefaultTripSchema())
}

// TestMask_Conditions exercises the per-field operators with AND semantics.
func TestMask_Conditions(t *testing.T) {
	tbl := tripTable(t)

	opts := filtering.DefaultOptions()
	opts.Conditions = []filtering.Condition{
		filtering.Eq(schema.FieldUserID, "u1"),
		filtering.In(schema.FieldMode, "bus", "metro"),
	}
	mask, issues, err := filtering.Mask(tbl, opts)
	require.NoError(t, err)
	require.Empty(t, issues)
	require.Equal(t, []bool{true, true, false}, mask)

	opts.Conditions = []filtering.Condition{filtering.Ne(schema.FieldMode, "bus")}
	mask, _, err = filtering.Mask(tbl, opts)
	require.NoError(t, err)
	require.Equal(t, []bool{false, true, false}, mask)

	opts.Conditions = []filtering.Condition{
		filtering.Between(schema.FieldOriginLat, -34.0, -33.0),
	}
	mask, _, err = filtering.Mask(tbl, opts)
	require.NoError(t, err)
	require.Equal(t, []bool{true, true, false}, mask)
}

// TestMask_MixedNumericOperands verifies that ordering operators compare
// numerically when the operand is a plain int and the column holds int64
// or float64 cells.
func TestMask_MixedNumericOperands(t *testing.T) {
	tbl, err := table.FromRows([]string{"count", "dist"},
		[]any{int64(10), 120.5},
		[]any{int64(3), 80.0},
	)
	require.NoError(t, err)

	mask, issues, err := filtering.Mask(tbl, filtering.Options{
		Conditions: []filtering.Condition{filtering.Gt("count", 5)},
		MaxIssues:  10,
	})
	require.NoError(t, err)
	require.Empty(t, issues)
	require.Equal(t, []bool{true, false}, mask)

	mask, _, err = filtering.Mask(tbl, filtering.Options{
		Conditions: []filtering.Condition{filtering.Between("dist", 100, 200)},
		MaxIssues:  10,
	})
	require.NoError(t, err)
	require.Equal(t, []bool{true, false}, mask)
}

// TestMask_NullHandling verifies nulls satisfy only the IsNull operator.
func TestMask_NullHandling(t *testing.T) {
	tbl, err := table.FromRows([]string{"v"}, []any{nil}, []any{int64(1)})
	require.NoError(t, err)

	mask, _, err := filtering.Mask(tbl, filtering.Options{
		Conditions: []filtering.Condition{filtering.IsNull("v")},
		MaxIssues:  10,
	})
	require.NoError(t, err)
	require.Equal(t, []bool{true, false}, mask)

	mask, _, err = filtering.Mask(tbl, filtering.Options{
		Conditions: []filtering.Condition{filtering.Gt("v", int64(0))},
		MaxIssues:  10,
	})
	require.NoError(t, err)
	require.Equal(t, []bool{false, true}, mask)
}

// TestMask_UnknownField checks the skip-with-warning contract and its strict
// escalation.
func TestMask_UnknownField(t *testing.T) {
	tbl := tripTable(t)
	opts := filtering.DefaultOptions()
	opts.Conditions = []filtering.Condition{filtering.Eq("no_such", 1)}

	mask, issues, err := filtering.Mask(tbl, opts)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	require.Equal(t, report.Warning, issues[0].Level)
	require.Equal(t, report.CodeFieldNotFound, issues[0].Code)
	require.Equal(t, []bool{true, true, true}, mask, "skipped condition filters nothing")

	opts.Strict = true
	_, issues, err = filtering.Mask(tbl, opts)
	require.NoError(t, err)
	require.Equal(t, report.Error, issues[0].Level)
}

// TestMask_TimeModes covers the four window relations over [Start, End).
func TestMask_TimeModes(t *testing.T) {
	tbl := tripTable(t)
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)

	cases := []struct {
		mode filtering.TimeMode
		want []bool
	}{
		{filtering.StartsWithin, []bool{true, true, false}},
		{filtering.EndsWithin, []bool{true, true, false}},
		{filtering.Contains, []bool{true, true, false}},
		{filtering.Overlaps, []bool{true, true, false}},
	}
	for _, tc := range cases {
		opts := filtering.DefaultOptions()
		opts.Time = &filtering.TimeFilter{Mode: tc.mode, Start: start, End: end}
		mask, _, err := filtering.Mask(tbl, opts)
		require.NoError(t, err)
		require.Equal(t, tc.want, mask, "mode %s", tc.mode)
	}

	// End boundary is exclusive: a trip starting exactly at End is out.
	opts := filtering.DefaultOptions()
	opts.Time = &filtering.TimeFilter{
		Mode:  filtering.StartsWithin,
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	mask, _, err := filtering.Mask(tbl, opts)
	require.NoError(t, err)
	require.Equal(t, []bool{true, false, false}, mask)
}

// TestMask_SpatialBBox keeps trips by endpoint coordinates per target.
func TestMask_SpatialBBox(t *testing.T) {
	tbl := tripTable(t)
	santiago := &geo.BBox{MinLat: -34.0, MaxLat: -33.0, MinLon: -71.0, MaxLon: -70.0}

	opts := filtering.DefaultOptions()
	opts.Spatial = &filtering.Spatial{BBox: santiago} // default target: both ends
	mask, _, err := filtering.Mask(tbl, opts)
	require.NoError(t, err)
	require.Equal(t, []bool{true, true, false}, mask)

	opts.Spatial = &filtering.Spatial{BBox: santiago, Target: filtering.TargetEither}
	mask, _, err = filtering.Mask(tbl, opts)
	require.NoError(t, err)
	require.Equal(t, []bool{true, true, true}, mask, "u2 arrives inside the box")

	opts.Spatial = &filtering.Spatial{BBox: santiago, Target: filtering.TargetOrigin}
	mask, _, err = filtering.Mask(tbl, opts)
	require.NoError(t, err)
	require.Equal(t, []bool{true, true, false}, mask)
}

// TestMask_SpatialCells matches stored H3 cells case-insensitively.
func TestMask_SpatialCells(t *testing.T) {
	cell, err := geo.CellString(-33.45, -70.66, geo.DefaultResolution)
	require.NoError(t, err)
	other, err := geo.CellString(10.0, 10.0, geo.DefaultResolution)
	require.NoError(t, err)

	tbl, err := table.FromRows(
		[]string{schema.FieldOriginH3, schema.FieldDestH3},
		[]any{cell, cell},
		[]any{other, other},
	)
	require.NoError(t, err)

	opts := filtering.DefaultOptions()
	opts.Spatial = &filtering.Spatial{Cells: []string{strings.ToUpper(cell)}}
	mask, _, err := filtering.Mask(tbl, opts)
	require.NoError(t, err)
	require.Equal(t, []bool{true, false}, mask)
}

// TestMask_InvalidSpatialSpec requires exactly one spatial predicate.
func TestMask_InvalidSpatialSpec(t *testing.T) {
	tbl := tripTable(t)
	opts := filtering.DefaultOptions()
	opts.Spatial = &filtering.Spatial{
		Cells: []string{"deadbeef"},
		BBox:  &geo.BBox{MinLat: -1, MaxLat: 1, MinLon: -1, MaxLon: 1},
	}
	mask, issues, err := filtering.Mask(tbl, opts)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	require.Equal(t, report.Error, issues[0].Level)
	require.Equal(t, report.CodeInvalidSpatialFilter, issues[0].Code)
	require.Equal(t, []bool{true, true, true}, mask)
}

// TestFilterTrips_PreservesValidatedFlag checks row subsetting keeps the
// validation outcome and stamps its event.
func TestFilterTrips_PreservesValidatedFlag(t *testing.T) {
	ds := tripDataset(t).WithValidated(true)

	opts := filtering.DefaultOptions()
	opts.Conditions = []filtering.Condition{filtering.Eq(schema.FieldUserID, "u1")}
	out, rep, err := filtering.FilterTrips(ds, opts)
	require.NoError(t, err)
	require.True(t, rep.Ok)
	require.True(t, out.IsValidated(), "subsetting does not invalidate")
	require.Equal(t, 2, out.Data.NumRows())
	require.Equal(t, 3, ds.Data.NumRows(), "input untouched")

	require.Equal(t, 3, rep.Summary["rows_in"])
	require.Equal(t, 2, rep.Summary["rows_out"])
	require.Equal(t, 1, rep.Summary["rows_dropped"])

	last := out.Metadata.Events[len(out.Metadata.Events)-1]
	require.Equal(t, filtering.EventFilterTrips, last.Name)
}

// TestFilterTrips_PassThrough stamps an event even when nothing is
// filtered.
func TestFilterTrips_PassThrough(t *testing.T) {
	ds := tripDataset(t)
	out, rep, err := filtering.FilterTrips(ds, filtering.DefaultOptions())
	require.NoError(t, err)
	require.True(t, rep.Ok)
	require.Equal(t, ds.Data.NumRows(), out.Data.NumRows())
	require.Len(t, out.Metadata.Events, 1)
}

// TestFilterTrips_StrictSpatialError verifies strict mode returns ErrFilter
// on a malformed predicate, report intact.
func TestFilterTrips_StrictSpatialError(t *testing.T) {
	ds := tripDataset(t)
	opts := filtering.DefaultOptions()
	opts.Strict = true
	opts.Spatial = &filtering.Spatial{} // no predicate set

	out, rep, err := filtering.FilterTrips(ds, opts)
	require.ErrorIs(t, err, filtering.ErrFilter)
	require.Nil(t, out)
	require.Equal(t, 1, rep.CountByCode(report.CodeInvalidSpatialFilter))
}

// TestHelpers_TimeAndDomain smoke-tests the convenience wrappers.
func TestHelpers_TimeAndDomain(t *testing.T) {
	ds := tripDataset(t)

	out, _, err := filtering.FilterByDomainValues(ds, schema.FieldMode, "metro")
	require.NoError(t, err)
	require.Equal(t, 1, out.Data.NumRows())

	out, _, err = filtering.FilterByTimeRange(ds, filtering.StartsWithin,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, 1, out.Data.NumRows())
}
