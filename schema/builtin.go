package schema

// SchemaVersion is the version tag of the builtin Golondrina schemas.
const SchemaVersion = "1.1.0"

// Canonical Golondrina trip field names.
const (
	FieldTripID         = "trip_id"
	FieldUserID         = "user_id"
	FieldOriginTime     = "origin_time"
	FieldDestTime       = "destination_time"
	FieldOriginLat      = "origin_lat"
	FieldOriginLon      = "origin_lon"
	FieldDestLat        = "destination_lat"
	FieldDestLon        = "destination_lon"
	FieldOriginH3       = "origin_h3"
	FieldDestH3         = "destination_h3"
	FieldMode           = "mode"
	FieldPurpose        = "purpose"
	FieldDistanceMeters = "distance_m"
	FieldDurationSecs   = "duration_s"
)

// DefaultTripSchema returns the builtin Golondrina trip schema (v1.1).
// Callers may derive variants but must treat the returned value as their own
// copy; the function builds a fresh instance on every call.
func DefaultTripSchema() *TripSchema {
	fields := []FieldSpec{
		{Name: FieldTripID, DType: String},
		{Name: FieldUserID, DType: String, Required: true},
		{Name: FieldOriginTime, DType: Datetime, Required: true},
		{Name: FieldDestTime, DType: Datetime, Required: true},
		{Name: FieldOriginLat, DType: Float, Required: true, Constraints: latConstraints()},
		{Name: FieldOriginLon, DType: Float, Required: true, Constraints: lonConstraints()},
		{Name: FieldDestLat, DType: Float, Required: true, Constraints: latConstraints()},
		{Name: FieldDestLon, DType: Float, Required: true, Constraints: lonConstraints()},
		{Name: FieldOriginH3, DType: String, Constraints: map[string]any{ConstraintFormat: FormatH3}},
		{Name: FieldDestH3, DType: String, Constraints: map[string]any{ConstraintFormat: FormatH3}},
		{Name: FieldMode, DType: Categorical, Domain: defaultModeDomain()},
		{Name: FieldPurpose, DType: Categorical, Domain: defaultPurposeDomain()},
		{Name: FieldDistanceMeters, DType: Float, Constraints: map[string]any{ConstraintNonNegative: true}},
		{Name: FieldDurationSecs, DType: Float, Constraints: map[string]any{ConstraintNonNegative: true}},
	}
	catalog := make(map[string]FieldSpec, len(fields))
	for _, spec := range fields {
		catalog[spec.Name] = spec
	}

	return &TripSchema{
		Version: SchemaVersion,
		Fields:  catalog,
		Required: []string{
			FieldUserID,
			FieldOriginTime, FieldDestTime,
			FieldOriginLat, FieldOriginLon,
			FieldDestLat, FieldDestLon,
		},
	}
}

// DefaultTraceSchema returns the builtin Golondrina trace schema (v1.1):
// user/time/lon/lat roles, EPSG:4326, timestamps interpreted as UTC.
func DefaultTraceSchema() *TraceSchema {
	fields := map[string]FieldSpec{
		DefaultUserIDField: {Name: DefaultUserIDField, DType: String, Required: true},
		DefaultTimeField:   {Name: DefaultTimeField, DType: Datetime, Required: true},
		DefaultLonField:    {Name: DefaultLonField, DType: Float, Required: true, Constraints: lonConstraints()},
		DefaultLatField:    {Name: DefaultLatField, DType: Float, Required: true, Constraints: latConstraints()},
	}

	return &TraceSchema{
		Version:     SchemaVersion,
		Fields:      fields,
		UserIDField: DefaultUserIDField,
		TimeField:   DefaultTimeField,
		LonField:    DefaultLonField,
		LatField:    DefaultLatField,
		CRS:         DefaultCRS,
	}
}

func latConstraints() map[string]any {
	return map[string]any{ConstraintMin: -90.0, ConstraintMax: 90.0}
}

func lonConstraints() map[string]any {
	return map[string]any{ConstraintMin: -180.0, ConstraintMax: 180.0}
}

func defaultModeDomain() *DomainSpec {
	return &DomainSpec{
		Values:     []string{"bus", "metro", "train", "car", "taxi", "bike", "walk", "other"},
		Extendable: true,
		Aliases: map[string]string{
			"subway":  "metro",
			"bicycle": "bike",
			"walking": "walk",
			"auto":    "car",
		},
	}
}

func defaultPurposeDomain() *DomainSpec {
	return &DomainSpec{
		Values:     []string{"work", "study", "home", "shopping", "health", "leisure", "other"},
		Extendable: true,
		Aliases: map[string]string{
			"education": "study",
			"school":    "study",
			"errand":    "shopping",
		},
	}
}
