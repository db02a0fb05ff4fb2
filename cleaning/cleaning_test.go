package cleaning_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/golondrina/cleaning"
	"github.com/katalvlaran/golondrina/dataset"
	"github.com/katalvlaran/golondrina/report"
	"github.com/katalvlaran/golondrina/schema"
	"github.com/katalvlaran/golondrina/table"
)

func canonicalColumns() []string {
	return []string{schema.FieldUserID, schema.FieldOriginTime, schema.FieldDestTime,
		schema.FieldOriginLat, schema.FieldOriginLon,
		schema.FieldDestLat, schema.FieldDestLon}
}

func goodRow(user string) []any {
	return []any{user, "2024-03-01T08:00:00Z", "2024-03-01T08:40:00Z", -33.45, -70.66, -33.40, -70.60}
}

// TestCleanTrips_DropsByFirstRejectingRule builds one offender per rule and
// verifies per-rule attribution sums to the total dropped.
func TestCleanTrips_DropsByFirstRejectingRule(t *testing.T) {
	nullUser := goodRow("")
	nullUser[0] = nil
	badLat := goodRow("u2")
	badLat[3] = 123.0
	reversed := goodRow("u3")
	reversed[1], reversed[2] = "2024-03-01T10:00:00Z", "2024-03-01T09:00:00Z"

	tbl, err := table.FromRows(canonicalColumns(),
		goodRow("u1"), nullUser, badLat, reversed, goodRow("u1"))
	require.NoError(t, err)
	ds := dataset.NewTripDataset(tbl, schema.DefaultTripSchema()).WithValidated(true)

	out, rep, err := cleaning.CleanTrips(ds, cleaning.DefaultOptions())
	require.NoError(t, err)
	require.True(t, rep.Ok, "drops are informational")
	require.Equal(t, 1, out.Data.NumRows(), "one offender per rule plus the duplicate removed")

	require.Equal(t, 5, rep.Summary["rows_in"])
	dropped, ok := rep.Summary["dropped_by_rule"].(map[string]int)
	require.True(t, ok)
	require.Equal(t, 1, dropped[cleaning.RuleNullsRequired])
	require.Equal(t, 1, dropped[cleaning.RuleInvalidLatLon])
	require.Equal(t, 1, dropped[cleaning.RuleOriginAfterDest])
	require.Equal(t, 1, dropped[cleaning.RuleDuplicates])

	total := 0
	for _, n := range dropped {
		total += n
	}
	require.Equal(t, rep.Summary["rows_dropped"], total)

	require.False(t, out.IsValidated(), "row removal resets the flag")
	last := out.Metadata.Events[len(out.Metadata.Events)-1]
	require.Equal(t, cleaning.EventCleanTrips, last.Name)
}

// TestCleanTrips_RowsDroppedIssues emits one info issue per rule that
// actually dropped something.
func TestCleanTrips_RowsDroppedIssues(t *testing.T) {
	nullUser := goodRow("")
	nullUser[0] = nil
	tbl, err := table.FromRows(canonicalColumns(), goodRow("u1"), nullUser)
	require.NoError(t, err)
	ds := dataset.NewTripDataset(tbl, schema.DefaultTripSchema())

	_, rep, err := cleaning.CleanTrips(ds, cleaning.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, rep.CountByCode(report.CodeRowsDropped))
	require.Equal(t, cleaning.RuleNullsRequired, rep.Issues[0].Details["rule"])
	require.Equal(t, 1, rep.Issues[0].RowCount)
}

// TestCleanTrips_InvalidH3 drops rows whose stored cell does not parse,
// keeping null cells.
func TestCleanTrips_InvalidH3(t *testing.T) {
	cols := append(canonicalColumns(), schema.FieldOriginH3)
	tbl, err := table.FromRows(cols,
		append(goodRow("u1"), "zzzz"),
		append(goodRow("u2"), nil),
	)
	require.NoError(t, err)
	ds := dataset.NewTripDataset(tbl, schema.DefaultTripSchema())

	out, _, err := cleaning.CleanTrips(ds, cleaning.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, out.Data.NumRows())

	user, err := out.Data.Cell(schema.FieldUserID, 0)
	require.NoError(t, err)
	require.Equal(t, "u2", user)
}

// TestCleanTrips_NullFieldsAndDomain covers the opt-in rules: extra null
// columns and out-of-domain categorical values.
func TestCleanTrips_NullFieldsAndDomain(t *testing.T) {
	cols := append(canonicalColumns(), schema.FieldMode)
	tbl, err := table.FromRows(cols,
		append(goodRow("u1"), "bus"),
		append(goodRow("u2"), nil),
		append(goodRow("u3"), "hovercraft"),
	)
	require.NoError(t, err)
	ds := dataset.NewTripDataset(tbl, schema.DefaultTripSchema())

	opts := cleaning.DefaultOptions()
	opts.NullFields = []string{schema.FieldMode}
	opts.DropOutOfDomain = true
	out, rep, err := cleaning.CleanTrips(ds, opts)
	require.NoError(t, err)
	require.Equal(t, 1, out.Data.NumRows())

	dropped := rep.Summary["dropped_by_rule"].(map[string]int)
	require.Equal(t, 1, dropped[cleaning.RuleNullsFields])
	require.Equal(t, 1, dropped[cleaning.RuleCategoricalValue])
}

// TestCleanTrips_NoOpKeepsRows stamps the event even when nothing matches.
func TestCleanTrips_NoOpKeepsRows(t *testing.T) {
	tbl, err := table.FromRows(canonicalColumns(), goodRow("u1"))
	require.NoError(t, err)
	ds := dataset.NewTripDataset(tbl, schema.DefaultTripSchema())

	out, rep, err := cleaning.CleanTrips(ds, cleaning.DefaultOptions())
	require.NoError(t, err)
	require.True(t, rep.Ok)
	require.Equal(t, 1, out.Data.NumRows())
	require.Equal(t, 0, rep.Summary["rows_dropped"])
	require.Len(t, out.Metadata.Events, 1)
}

// TestCleanTrips_NilDataset covers the structural error path.
func TestCleanTrips_NilDataset(t *testing.T) {
	_, _, err := cleaning.CleanTrips(nil, cleaning.DefaultOptions())
	require.ErrorIs(t, err, cleaning.ErrNilDataset)
}
