package schema_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/golondrina/schema"
)

// TestDefaultTripSchema_Contract verifies the builtin catalog satisfies its
// own validation and exposes the canonical required set.
func TestDefaultTripSchema_Contract(t *testing.T) {
	sch := schema.DefaultTripSchema()
	require.NoError(t, sch.Validate())
	require.Equal(t, schema.SchemaVersion, sch.Version)

	require.Contains(t, sch.Required, schema.FieldUserID)
	require.Contains(t, sch.Required, schema.FieldOriginTime)
	require.NotContains(t, sch.Required, schema.FieldTripID)

	_, err := sch.Field(schema.FieldMode)
	require.NoError(t, err)
	_, err = sch.Field("no_such_field")
	require.ErrorIs(t, err, schema.ErrUnknownField)
}

// TestDefaultTripSchema_FreshInstances verifies callers get independent copies.
func TestDefaultTripSchema_FreshInstances(t *testing.T) {
	a := schema.DefaultTripSchema()
	b := schema.DefaultTripSchema()
	a.Fields[schema.FieldMode] = schema.FieldSpec{Name: schema.FieldMode, DType: schema.String}
	require.Equal(t, schema.Categorical, b.Fields[schema.FieldMode].DType)
}

// TestDomainSpec_AliasAndMembership covers alias resolution and Contains.
func TestDomainSpec_AliasAndMembership(t *testing.T) {
	sch := schema.DefaultTripSchema()
	dom := sch.Fields[schema.FieldMode].Domain
	require.NotNil(t, dom)

	require.Equal(t, "metro", dom.Canonical("subway"))
	require.Equal(t, "bus", dom.Canonical("bus"))
	require.True(t, dom.Contains("metro"))
	require.False(t, dom.Contains("hoverboard"))
	require.True(t, dom.Extendable)
}

// TestTripSchema_ValidateRejectsBrokenCatalogs exercises the catalog checks.
func TestTripSchema_ValidateRejectsBrokenCatalogs(t *testing.T) {
	var nilSchema *schema.TripSchema
	require.ErrorIs(t, nilSchema.Validate(), schema.ErrSchemaInvalid)

	broken := &schema.TripSchema{
		Version:  "1.0.0",
		Fields:   map[string]schema.FieldSpec{"a": {Name: "a", DType: schema.String}},
		Required: []string{"missing"},
	}
	require.ErrorIs(t, broken.Validate(), schema.ErrSchemaInvalid)
}

// TestTraceSchema_RolesAndDefaults covers role fallbacks and CRS defaulting.
func TestTraceSchema_RolesAndDefaults(t *testing.T) {
	sch := schema.DefaultTraceSchema()
	require.NoError(t, sch.Validate())
	require.Equal(t, schema.DefaultCRS, sch.EffectiveCRS())

	required := sch.RequiredFields()
	require.ElementsMatch(t,
		[]string{sch.UserIDField, sch.TimeField, sch.LonField, sch.LatField},
		required)

	sch.Required = []string{sch.TimeField}
	require.Equal(t, []string{sch.TimeField}, sch.RequiredFields())

	sch.UserIDField = ""
	require.ErrorIs(t, sch.Validate(), schema.ErrSchemaInvalid)
}

// TestSnapshots_AreJSONSafeViews spot-checks the structural snapshots.
func TestSnapshots_AreJSONSafeViews(t *testing.T) {
	trip := schema.DefaultTripSchema().Snapshot()
	require.Equal(t, schema.SchemaVersion, trip["version"])
	require.NotEmpty(t, trip["fields"])

	trace := schema.DefaultTraceSchema().Snapshot()
	require.Equal(t, schema.DefaultCRS, trace["crs"])
}
