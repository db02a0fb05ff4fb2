package inference_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/golondrina/dataset"
	"github.com/katalvlaran/golondrina/geo"
	"github.com/katalvlaran/golondrina/inference"
	"github.com/katalvlaran/golondrina/report"
	"github.com/katalvlaran/golondrina/schema"
	"github.com/katalvlaran/golondrina/table"
)

// validatedTraces wraps canonical point rows into a validated trace dataset.
func validatedTraces(t *testing.T, rows ...[]any) *dataset.TraceDataset {
	t.Helper()
	tbl, err := table.FromRows(
		[]string{schema.DefaultUserIDField, schema.DefaultTimeField,
			schema.DefaultLonField, schema.DefaultLatField},
		rows...)
	require.NoError(t, err)

	return dataset.NewTraceDataset(tbl, schema.DefaultTraceSchema()).WithValidated(true)
}

// TestInferTrips_ConsecutivePairs turns three points of one user into two
// trips with sane duration, distance and H3 cells.
func TestInferTrips_ConsecutivePairs(t *testing.T) {
	ds := validatedTraces(t,
		[]any{"u1", "2024-03-01T08:00:00Z", -70.66, -33.45},
		[]any{"u1", "2024-03-01T08:10:00Z", -70.65, -33.44},
		[]any{"u1", "2024-03-01T08:30:00Z", -70.60, -33.40},
	)

	out, rep, err := inference.InferTripsFromTraces(ds, inference.Input{}, inference.DefaultOptions())
	require.NoError(t, err)
	require.True(t, rep.Ok)
	require.Equal(t, 2, out.Data.NumRows())
	require.Equal(t, 2, rep.Summary["trips_out"])

	dur, err := out.Data.Cell(schema.FieldDurationSecs, 0)
	require.NoError(t, err)
	require.Equal(t, int64(600), dur)

	dist, err := out.Data.Cell(schema.FieldDistanceMeters, 0)
	require.NoError(t, err)
	meters, ok := table.AsFloat(dist)
	require.True(t, ok)
	require.InDelta(t, 1450, meters, 300, "roughly 0.01 degrees of separation")

	cell, err := out.Data.Cell(schema.FieldOriginH3, 0)
	require.NoError(t, err)
	s, ok := table.AsString(cell)
	require.True(t, ok)
	require.True(t, geo.ValidCell(s))

	originTime, err := out.Data.Cell(schema.FieldOriginTime, 0)
	require.NoError(t, err)
	at, ok := table.AsTime(originTime)
	require.True(t, ok)
	require.Equal(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), at.UTC())

	require.Equal(t, ds.ID, out.Provenance["source_trace_id"])
	require.Equal(t, inference.EventInferTrips, out.Metadata.Events[0].Name)
	require.False(t, out.IsValidated(), "inferred trips start unvalidated")
}

// TestInferTrips_GapCut breaks the chain where the time delta exceeds
// MaxTimeDeltaS.
func TestInferTrips_GapCut(t *testing.T) {
	ds := validatedTraces(t,
		[]any{"u1", "2024-03-01T08:00:00Z", -70.66, -33.45},
		[]any{"u1", "2024-03-01T08:10:00Z", -70.65, -33.44},
		[]any{"u1", "2024-03-01T12:00:00Z", -70.60, -33.40},
	)

	opts := inference.DefaultOptions()
	opts.MaxTimeDeltaS = 3600
	out, rep, err := inference.InferTripsFromTraces(ds, inference.Input{}, opts)
	require.NoError(t, err)
	require.Equal(t, 1, out.Data.NumRows())
	require.Equal(t, 1, rep.Summary["pairs_skipped_gap"])
}

// TestInferTrips_SortsUnorderedPoints re-sorts each user's points by time
// before pairing.
func TestInferTrips_SortsUnorderedPoints(t *testing.T) {
	ds := validatedTraces(t,
		[]any{"u1", "2024-03-01T08:30:00Z", -70.60, -33.40},
		[]any{"u1", "2024-03-01T08:00:00Z", -70.66, -33.45},
	)

	out, _, err := inference.InferTripsFromTraces(ds, inference.Input{}, inference.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, out.Data.NumRows())

	dur, err := out.Data.Cell(schema.FieldDurationSecs, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1800), dur, "positive duration after sorting")
}

// TestInferTrips_RequireValidatedTraces refuses unvalidated input and
// downgrades to a warning when the gate is off.
func TestInferTrips_RequireValidatedTraces(t *testing.T) {
	ds := validatedTraces(t,
		[]any{"u1", "2024-03-01T08:00:00Z", -70.66, -33.45},
		[]any{"u1", "2024-03-01T08:10:00Z", -70.65, -33.44},
	).WithValidated(false)

	out, rep, err := inference.InferTripsFromTraces(ds, inference.Input{}, inference.DefaultOptions())
	require.ErrorIs(t, err, inference.ErrInference)
	require.Nil(t, out)
	require.Equal(t, 1, rep.CountByCode(report.CodeUnvalidatedInput))

	opts := inference.DefaultOptions()
	opts.RequireValidatedTraces = false
	out, rep, err = inference.InferTripsFromTraces(ds, inference.Input{}, opts)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.True(t, rep.Ok)
	require.Equal(t, 1, rep.CountByCode(report.CodeUnvalidatedInput))
}

// TestInferTrips_InvalidCoordinates drops the pair by default and produces
// a null-coordinate trip when DropInvalid is off.
func TestInferTrips_InvalidCoordinates(t *testing.T) {
	ds := validatedTraces(t,
		[]any{"u1", "2024-03-01T08:00:00Z", -70.66, -33.45},
		[]any{"u1", "2024-03-01T08:10:00Z", -70.65, 123.0},
	)

	out, rep, err := inference.InferTripsFromTraces(ds, inference.Input{}, inference.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 0, out.Data.NumRows())
	require.Equal(t, 1, rep.Summary["pairs_skipped_coords"])

	opts := inference.DefaultOptions()
	opts.DropInvalid = false
	out, _, err = inference.InferTripsFromTraces(ds, inference.Input{}, opts)
	require.NoError(t, err)
	require.Equal(t, 1, out.Data.NumRows())

	lat, err := out.Data.Cell(schema.FieldOriginLat, 0)
	require.NoError(t, err)
	require.True(t, table.IsNull(lat))

	dur, err := out.Data.Cell(schema.FieldDurationSecs, 0)
	require.NoError(t, err)
	require.Equal(t, int64(600), dur, "duration survives without coordinates")
}

// TestInferTrips_SkipsUnusablePoints counts points with no user or no
// parseable time.
func TestInferTrips_SkipsUnusablePoints(t *testing.T) {
	ds := validatedTraces(t,
		[]any{"u1", "2024-03-01T08:00:00Z", -70.66, -33.45},
		[]any{nil, "2024-03-01T08:05:00Z", -70.65, -33.44},
		[]any{"u1", "garbled", -70.65, -33.44},
		[]any{"u1", "2024-03-01T08:10:00Z", -70.65, -33.44},
	)

	out, rep, err := inference.InferTripsFromTraces(ds, inference.Input{}, inference.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, out.Data.NumRows())
	require.Equal(t, 2, rep.Summary["points_skipped"])
	require.Equal(t, 1, rep.CountByCode(report.CodeUnparseableTimestamp))
}

// TestInferTrips_ValueCorrespondence recodes produced columns, here the
// user identifier.
func TestInferTrips_ValueCorrespondence(t *testing.T) {
	ds := validatedTraces(t,
		[]any{"hash-1", "2024-03-01T08:00:00Z", -70.66, -33.45},
		[]any{"hash-1", "2024-03-01T08:10:00Z", -70.65, -33.44},
	)

	in := inference.Input{
		ValueCorrespondence: map[string]map[string]string{
			schema.FieldUserID: {"hash-1": "panel-07"},
		},
	}
	out, rep, err := inference.InferTripsFromTraces(ds, in, inference.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, rep.CountByCode(report.CodeValuesRecoded))

	user, err := out.Data.Cell(schema.FieldUserID, 0)
	require.NoError(t, err)
	require.Equal(t, "panel-07", user)
}

// TestInferTrips_NilAndBadInputs covers the structural error paths.
func TestInferTrips_NilAndBadInputs(t *testing.T) {
	_, _, err := inference.InferTripsFromTraces(nil, inference.Input{}, inference.DefaultOptions())
	require.ErrorIs(t, err, inference.ErrNilDataset)

	ds := validatedTraces(t, []any{"u1", "2024-03-01T08:00:00Z", -70.66, -33.45})
	opts := inference.DefaultOptions()
	opts.H3Resolution = -1
	_, _, err = inference.InferTripsFromTraces(ds, inference.Input{}, opts)
	require.ErrorIs(t, err, geo.ErrResolution)
}
