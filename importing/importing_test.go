package importing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/golondrina/geo"
	"github.com/katalvlaran/golondrina/importing"
	"github.com/katalvlaran/golondrina/report"
	"github.com/katalvlaran/golondrina/schema"
	"github.com/katalvlaran/golondrina/table"
)

// sourceTable builds a small raw trip table with provider column names.
func sourceTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.FromRows(
		[]string{"persona", "inicio", "fin", "lat_o", "lon_o", "lat_d", "lon_d", "modo", "extra"},
		[]any{"u1", "2024-03-01T08:00:00Z", "2024-03-01T08:40:00Z", -33.45, -70.66, -33.40, -70.60, "subway", "x"},
		[]any{"u2", "2024-03-01T09:00:00Z", "2024-03-01T09:30:00Z", -33.50, -70.70, -33.42, -70.62, "bus", "y"},
	)
	require.NoError(t, err)

	return tbl
}

func sourceCorrespondence() map[string]string {
	return map[string]string{
		schema.FieldUserID:     "persona",
		schema.FieldOriginTime: "inicio",
		schema.FieldDestTime:   "fin",
		schema.FieldOriginLat:  "lat_o",
		schema.FieldOriginLon:  "lon_o",
		schema.FieldDestLat:    "lat_d",
		schema.FieldDestLon:    "lon_d",
		schema.FieldMode:       "modo",
	}
}

// TestImportTrips_HappyPath checks renaming, alias recoding, H3 derivation
// and the recorded correspondences of a clean import.
func TestImportTrips_HappyPath(t *testing.T) {
	sch := schema.DefaultTripSchema()
	in := importing.Input{
		SourceName:          "eod",
		FieldCorrespondence: sourceCorrespondence(),
	}

	ds, rep, err := importing.ImportTrips(sourceTable(t), sch, in, importing.DefaultOptions())
	require.NoError(t, err)
	require.True(t, rep.Ok)

	for _, name := range sch.Required {
		require.True(t, ds.Data.HasColumn(name), "canonical column %q", name)
	}
	require.True(t, ds.Data.HasColumn("extra"), "extras kept by default")

	// "subway" resolves to "metro" through the mode domain aliases.
	mode, err := ds.Data.Cell(schema.FieldMode, 0)
	require.NoError(t, err)
	require.Equal(t, "metro", mode)

	// Both H3 endpoint columns derived, valid at the default resolution.
	for _, col := range []string{schema.FieldOriginH3, schema.FieldDestH3} {
		cell, err := ds.Data.Cell(col, 0)
		require.NoError(t, err)
		s, ok := table.AsString(cell)
		require.True(t, ok)
		require.True(t, geo.ValidCell(s))
		require.Equal(t, geo.DefaultResolution, geo.CellResolution(s))
	}

	require.Equal(t, "persona", rep.FieldCorrespondence[schema.FieldUserID])
	require.Equal(t, sch.Version, rep.SchemaVersion)
	require.False(t, ds.IsValidated())
	require.Equal(t, "eod", ds.Provenance["source_name"])
	require.Equal(t, geo.DefaultResolution, ds.Metadata.Extra["h3_resolution"])

	require.Len(t, ds.Metadata.Events, 1)
	require.Equal(t, importing.EventImportTrips, ds.Metadata.Events[0].Name)
}

// TestImportTrips_MissingRequiredField maps a required field to an absent
// source column: error issue non-strict, ErrImport strict, same findings.
func TestImportTrips_MissingRequiredField(t *testing.T) {
	sch := schema.DefaultTripSchema()
	corr := sourceCorrespondence()
	corr[schema.FieldUserID] = "no_such_column"
	in := importing.Input{FieldCorrespondence: corr}

	ds, rep, err := importing.ImportTrips(sourceTable(t), sch, in, importing.DefaultOptions())
	require.NoError(t, err)
	require.NotNil(t, ds)
	require.False(t, rep.Ok)
	require.Equal(t, 1, rep.CountByCode(report.CodeMissingRequiredField))

	var found report.Issue
	for _, iss := range rep.Issues {
		if iss.Code == report.CodeMissingRequiredField {
			found = iss
		}
	}
	require.Equal(t, report.Error, found.Level)
	require.Equal(t, schema.FieldUserID, found.Field)
	require.Equal(t, "no_such_column", found.SourceField)

	strict := importing.DefaultOptions()
	strict.Strict = true
	dsStrict, repStrict, err := importing.ImportTrips(sourceTable(t), sch, in, strict)
	require.ErrorIs(t, err, importing.ErrImport)
	require.Nil(t, dsStrict)
	require.Equal(t, rep.Codes(), repStrict.Codes())
}

// TestImportTrips_NonExtendableDomain uses a schema whose mode domain is
// closed: unknown values raise per-row OUT_OF_DOMAIN_VALUE errors and the
// cells keep the offending value.
func TestImportTrips_NonExtendableDomain(t *testing.T) {
	sch := schema.DefaultTripSchema()
	spec := sch.Fields[schema.FieldMode]
	spec.Domain = &schema.DomainSpec{Values: []string{"bus", "metro"}}
	sch.Fields[schema.FieldMode] = spec

	tbl, err := table.FromRows(
		[]string{schema.FieldUserID, schema.FieldOriginTime, schema.FieldDestTime,
			schema.FieldOriginLat, schema.FieldOriginLon, schema.FieldDestLat, schema.FieldDestLon,
			schema.FieldMode},
		[]any{"u1", "2024-03-01T08:00:00Z", "2024-03-01T08:40:00Z", -33.45, -70.66, -33.40, -70.60, "teleport"},
		[]any{"u2", "2024-03-01T09:00:00Z", "2024-03-01T09:30:00Z", -33.50, -70.70, -33.42, -70.62, "teleport"},
		[]any{"u3", "2024-03-01T10:00:00Z", "2024-03-01T10:30:00Z", -33.50, -70.70, -33.42, -70.62, "bus"},
	)
	require.NoError(t, err)

	ds, rep, err := importing.ImportTrips(tbl, sch, importing.Input{}, importing.DefaultOptions())
	require.NoError(t, err)
	require.False(t, rep.Ok)
	require.Equal(t, 2, rep.CountByCode(report.CodeOutOfDomainValue))

	cell, err := ds.Data.Cell(schema.FieldMode, 0)
	require.NoError(t, err)
	require.Equal(t, "teleport", cell)
}

// TestImportTrips_DomainExtension checks the extendable path: one warning
// per distinct new value carrying the occurrence count, and the effective
// domain grown by the extension.
func TestImportTrips_DomainExtension(t *testing.T) {
	sch := schema.DefaultTripSchema()
	tbl, err := table.FromRows(
		[]string{schema.FieldUserID, schema.FieldOriginTime, schema.FieldDestTime,
			schema.FieldOriginLat, schema.FieldOriginLon, schema.FieldDestLat, schema.FieldDestLon,
			schema.FieldMode},
		[]any{"u1", "2024-03-01T08:00:00Z", "2024-03-01T08:40:00Z", -33.45, -70.66, -33.40, -70.60, "ferry"},
		[]any{"u2", "2024-03-01T09:00:00Z", "2024-03-01T09:30:00Z", -33.50, -70.70, -33.42, -70.62, "ferry"},
		[]any{"u3", "2024-03-01T10:00:00Z", "2024-03-01T10:30:00Z", -33.50, -70.70, -33.42, -70.62, "bus"},
	)
	require.NoError(t, err)

	ds, rep, err := importing.ImportTrips(tbl, sch, importing.Input{}, importing.DefaultOptions())
	require.NoError(t, err)
	require.True(t, rep.Ok, "extensions are warnings, not errors")
	require.Equal(t, 1, rep.CountByCode(report.CodeDomainExtended))

	var ext report.Issue
	for _, iss := range rep.Issues {
		if iss.Code == report.CodeDomainExtended {
			ext = iss
		}
	}
	require.Equal(t, report.Warning, ext.Level)
	require.Equal(t, 2, ext.RowCount)
	require.Contains(t, ds.DomainsEffective[schema.FieldMode], "ferry")

	// StrictDomains closes the domain for this call.
	opts := importing.DefaultOptions()
	opts.StrictDomains = true
	_, repStrict, err := importing.ImportTrips(tbl, sch, importing.Input{}, opts)
	require.NoError(t, err)
	require.Equal(t, 2, repStrict.CountByCode(report.CodeOutOfDomainValue))
}

// TestImportTrips_ValueCorrespondence recodes raw categorical values before
// domain checks and records the applied map.
func TestImportTrips_ValueCorrespondence(t *testing.T) {
	sch := schema.DefaultTripSchema()
	in := importing.Input{
		FieldCorrespondence: sourceCorrespondence(),
		ValueCorrespondence: map[string]map[string]string{
			schema.FieldMode: {"bus": "metro"},
		},
	}

	ds, rep, err := importing.ImportTrips(sourceTable(t), sch, in, importing.DefaultOptions())
	require.NoError(t, err)
	require.True(t, rep.Ok)

	cell, err := ds.Data.Cell(schema.FieldMode, 1)
	require.NoError(t, err)
	require.Equal(t, "metro", cell)
	require.Equal(t, "metro", rep.ValueCorrespondence[schema.FieldMode]["bus"])
}

// TestApplyFieldCorrespondence_Ambiguities covers a source column claimed by
// two canonical fields and a correspondence entry outside the catalog.
func TestApplyFieldCorrespondence_Ambiguities(t *testing.T) {
	sch := schema.DefaultTripSchema()
	tbl, err := table.FromRows([]string{"persona"}, []any{"u1"})
	require.NoError(t, err)

	corr := map[string]string{
		schema.FieldUserID: "persona",
		schema.FieldTripID: "persona",
		"not_a_field":      "persona",
	}
	_, applied, issues, err := importing.ApplyFieldCorrespondence(tbl, sch, corr, importing.DefaultOptions())
	require.NoError(t, err)

	counts := report.CountByCode(issues)
	require.Equal(t, 1, counts[report.CodeDuplicateFieldMapping])
	require.Equal(t, 1, counts[report.CodeFieldNotFound])

	// Exactly one canonical field won the contested source column.
	require.Len(t, applied, 1)
}

// TestImportTrips_FieldSelection exercises KeepExtraFields=false and an
// explicit SelectedFields list.
func TestImportTrips_FieldSelection(t *testing.T) {
	sch := schema.DefaultTripSchema()
	in := importing.Input{FieldCorrespondence: sourceCorrespondence()}

	opts := importing.DefaultOptions()
	opts.KeepExtraFields = false
	ds, _, err := importing.ImportTrips(sourceTable(t), sch, in, opts)
	require.NoError(t, err)
	require.False(t, ds.Data.HasColumn("extra"))
	require.True(t, ds.Data.HasColumn(schema.FieldMode))

	opts.SelectedFields = []string{} // required fields only
	ds, _, err = importing.ImportTrips(sourceTable(t), sch, in, opts)
	require.NoError(t, err)
	require.False(t, ds.Data.HasColumn(schema.FieldMode))
	for _, name := range sch.Required {
		require.True(t, ds.Data.HasColumn(name))
	}
}

// TestImportTrips_H3NullForImplausibleCoords leaves the derived cell null
// when an endpoint's coordinates cannot be a location.
func TestImportTrips_H3NullForImplausibleCoords(t *testing.T) {
	sch := schema.DefaultTripSchema()
	tbl, err := table.FromRows(
		[]string{schema.FieldUserID, schema.FieldOriginTime, schema.FieldDestTime,
			schema.FieldOriginLat, schema.FieldOriginLon, schema.FieldDestLat, schema.FieldDestLon},
		[]any{"u1", "2024-03-01T08:00:00Z", "2024-03-01T08:40:00Z", 123.0, -70.66, -33.40, -70.60},
	)
	require.NoError(t, err)

	ds, _, err := importing.ImportTrips(tbl, sch, importing.Input{}, importing.DefaultOptions())
	require.NoError(t, err)

	origin, err := ds.Data.Cell(schema.FieldOriginH3, 0)
	require.NoError(t, err)
	require.True(t, table.IsNull(origin))

	dest, err := ds.Data.Cell(schema.FieldDestH3, 0)
	require.NoError(t, err)
	require.False(t, table.IsNull(dest))
}

// TestImportTrips_NilAndBadInputs covers the structural error paths.
func TestImportTrips_NilAndBadInputs(t *testing.T) {
	sch := schema.DefaultTripSchema()
	_, _, err := importing.ImportTrips(nil, sch, importing.Input{}, importing.DefaultOptions())
	require.ErrorIs(t, err, importing.ErrNilTable)

	tbl, err := table.FromRows([]string{"a"}, []any{"x"})
	require.NoError(t, err)
	_, _, err = importing.ImportTrips(tbl, sch, importing.Input{H3Resolution: 99}, importing.DefaultOptions())
	require.ErrorIs(t, err, geo.ErrResolution)
}
