package schema

import "fmt"

// Default role field names and context for trace schemas.
const (
	DefaultUserIDField = "user_id"
	DefaultTimeField   = "timestamp"
	DefaultLonField    = "lon"
	DefaultLatField    = "lat"
	DefaultCRS         = "EPSG:4326"
)

// TraceSchema is the catalog for point/trace data. Besides the field
// catalog it carries four role fields identifying the user, timestamp and
// coordinate columns, plus the CRS and timezone context used to interpret
// them.
type TraceSchema struct {
	Version  string
	Fields   map[string]FieldSpec
	Required []string

	// Role fields. When Required is empty the minimal operative contract is
	// the four roles.
	UserIDField string
	TimeField   string
	LonField    string
	LatField    string

	// CRS of the coordinate columns, EPSG:4326 when empty.
	CRS string

	// Timezone used to interpret naive timestamps; empty means UTC.
	Timezone string
}

// Field returns the FieldSpec for a canonical name.
func (s *TraceSchema) Field(name string) (FieldSpec, error) {
	spec, ok := s.Fields[name]
	if !ok {
		return FieldSpec{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	return spec, nil
}

// Validate checks the trace schema's own contract.
func (s *TraceSchema) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil TraceSchema", ErrSchemaInvalid)
	}
	if s.UserIDField == "" || s.TimeField == "" || s.LonField == "" || s.LatField == "" {
		return fmt.Errorf("%w: trace role fields must be non-empty", ErrSchemaInvalid)
	}
	for _, name := range s.Required {
		if _, ok := s.Fields[name]; !ok {
			return fmt.Errorf("%w: required field %q not in catalog", ErrSchemaInvalid, name)
		}
	}

	return nil
}

// RequiredFields returns the effective required-field list: Required when
// explicitly set, otherwise the four role fields.
func (s *TraceSchema) RequiredFields() []string {
	if len(s.Required) > 0 {
		return append([]string(nil), s.Required...)
	}

	return []string{s.UserIDField, s.TimeField, s.LonField, s.LatField}
}

// EffectiveCRS returns CRS, defaulting to EPSG:4326.
func (s *TraceSchema) EffectiveCRS() string {
	if s.CRS == "" {
		return DefaultCRS
	}

	return s.CRS
}

// Snapshot produces a JSON-safe structural view of the trace schema.
func (s *TraceSchema) Snapshot() map[string]any {
	fields := make([]map[string]any, 0, len(s.Fields))
	trip := TripSchema{Fields: s.Fields}
	for _, name := range trip.FieldNames() {
		fields = append(fields, fieldSnapshot(s.Fields[name]))
	}

	return map[string]any{
		"version":       s.Version,
		"fields":        fields,
		"required":      s.RequiredFields(),
		"user_id_field": s.UserIDField,
		"time_field":    s.TimeField,
		"lon_field":     s.LonField,
		"lat_field":     s.LatField,
		"crs":           s.EffectiveCRS(),
		"timezone":      s.Timezone,
	}
}
