package fixing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/golondrina/dataset"
	"github.com/katalvlaran/golondrina/fixing"
	"github.com/katalvlaran/golondrina/report"
	"github.com/katalvlaran/golondrina/schema"
	"github.com/katalvlaran/golondrina/table"
)

func modeDataset(t *testing.T) *dataset.TripDataset {
	t.Helper()
	tbl, err := table.FromRows(
		[]string{schema.FieldUserID, "transport_mode", schema.FieldPurpose},
		[]any{"u1", "BUS", "work"},
		[]any{"u2", "METRO", "study"},
	)
	require.NoError(t, err)
	ds := dataset.NewTripDataset(tbl, schema.DefaultTripSchema())
	ds.FieldCorrespondence = map[string]string{
		schema.FieldUserID:  "persona",
		schema.FieldPurpose: "proposito",
	}

	return ds
}

// TestFixTripsCorrespondence_RenameAndRecode fixes a mistitled column and
// recodes its raw values, folding both into the recorded correspondences.
func TestFixTripsCorrespondence_RenameAndRecode(t *testing.T) {
	ds := modeDataset(t).WithValidated(true)

	out, rep, err := fixing.FixTripsCorrespondence(ds,
		map[string]string{"transport_mode": schema.FieldMode},
		map[string]map[string]string{schema.FieldMode: {"BUS": "bus", "METRO": "metro"}},
		fixing.DefaultOptions())
	require.NoError(t, err)
	require.True(t, rep.Ok)
	require.True(t, out.Data.HasColumn(schema.FieldMode))
	require.False(t, out.Data.HasColumn("transport_mode"))

	mode, err := out.Data.Cell(schema.FieldMode, 0)
	require.NoError(t, err)
	require.Equal(t, "bus", mode)

	require.Equal(t, 1, rep.CountByCode(report.CodeValuesRecoded))
	require.Equal(t, "transport_mode", out.FieldCorrespondence[schema.FieldMode],
		"rename recorded with the previous column as source")
	require.Equal(t, "persona", out.FieldCorrespondence[schema.FieldUserID],
		"untouched entries carried over")
	require.Equal(t, "bus", out.ValueCorrespondence[schema.FieldMode]["BUS"])

	require.False(t, out.IsValidated(), "corrections reset the flag")
	require.Equal(t, fixing.EventFixCorrespondence,
		out.Metadata.Events[len(out.Metadata.Events)-1].Name)
}

// TestFixTripsCorrespondence_RenamedCanonicalKeepsSource moves a recorded
// entry to the new canonical key when its column is renamed.
func TestFixTripsCorrespondence_RenamedCanonicalKeepsSource(t *testing.T) {
	ds := modeDataset(t)

	out, _, err := fixing.FixTripsCorrespondence(ds,
		map[string]string{schema.FieldPurpose: "activity"},
		nil, fixing.DefaultOptions())
	require.NoError(t, err)
	require.True(t, out.Data.HasColumn("activity"))

	require.Equal(t, "proposito", out.FieldCorrespondence["activity"])
	_, stale := out.FieldCorrespondence[schema.FieldPurpose]
	require.False(t, stale)
}

// TestFixTripsCorrespondence_SkipsAndErrors covers the missing column
// warning and the existing-target error, with strict escalation.
func TestFixTripsCorrespondence_SkipsAndErrors(t *testing.T) {
	ds := modeDataset(t)

	out, rep, err := fixing.FixTripsCorrespondence(ds,
		map[string]string{"no_such": "whatever"},
		nil, fixing.DefaultOptions())
	require.NoError(t, err)
	require.True(t, rep.Ok)
	require.Equal(t, 1, rep.CountByCode(report.CodeFieldNotFound))
	require.Equal(t, ds.Data.Columns(), out.Data.Columns())

	_, rep, err = fixing.FixTripsCorrespondence(ds,
		map[string]string{"transport_mode": schema.FieldPurpose},
		nil, fixing.DefaultOptions())
	require.NoError(t, err)
	require.False(t, rep.Ok)
	require.Equal(t, 1, rep.CountByCode(report.CodeDuplicateFieldMapping))

	strict := fixing.DefaultOptions()
	strict.Strict = true
	outStrict, repStrict, err := fixing.FixTripsCorrespondence(ds,
		map[string]string{"transport_mode": schema.FieldPurpose},
		nil, strict)
	require.ErrorIs(t, err, fixing.ErrFix)
	require.Nil(t, outStrict)
	require.NotNil(t, repStrict)
}

// TestFixTripsCorrespondence_ValueRecodeOnMissingColumn warns and moves on.
func TestFixTripsCorrespondence_ValueRecodeOnMissingColumn(t *testing.T) {
	ds := modeDataset(t)

	_, rep, err := fixing.FixTripsCorrespondence(ds, nil,
		map[string]map[string]string{"ghost": {"a": "b"}},
		fixing.DefaultOptions())
	require.NoError(t, err)
	require.True(t, rep.Ok)
	require.Equal(t, 1, rep.CountByCode(report.CodeFieldNotFound))
}

// TestFixTripsCorrespondence_NilDataset covers the structural error path.
func TestFixTripsCorrespondence_NilDataset(t *testing.T) {
	_, _, err := fixing.FixTripsCorrespondence(nil, nil, nil, fixing.DefaultOptions())
	require.ErrorIs(t, err, fixing.ErrNilDataset)
}
