package schema

import (
	"fmt"
	"sort"
)

// TripSchema is the versioned catalog of canonical trip fields plus the
// required-field contract. Constructed once, referenced by every dataset
// that uses it, never mutated.
type TripSchema struct {
	// Version identifies the schema for traceability and reproducibility.
	Version string

	// Fields maps canonical name → FieldSpec.
	Fields map[string]FieldSpec

	// Required lists field names that must exist in a conforming table.
	// Every entry must be a key of Fields.
	Required []string

	// SemanticRules is advisory metadata only; the engine never enforces it.
	SemanticRules map[string]any
}

// Field returns the FieldSpec for a canonical name.
func (s *TripSchema) Field(name string) (FieldSpec, error) {
	spec, ok := s.Fields[name]
	if !ok {
		return FieldSpec{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	return spec, nil
}

// Validate checks the schema's own contract: non-nil, and every required
// name present in the field catalog.
func (s *TripSchema) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil TripSchema", ErrSchemaInvalid)
	}
	for name, spec := range s.Fields {
		if name == "" || spec.Name == "" {
			return fmt.Errorf("%w: empty field name", ErrSchemaInvalid)
		}
		if spec.Name != name {
			return fmt.Errorf("%w: field key %q names itself %q", ErrSchemaInvalid, name, spec.Name)
		}
	}
	for _, name := range s.Required {
		if _, ok := s.Fields[name]; !ok {
			return fmt.Errorf("%w: required field %q not in catalog", ErrSchemaInvalid, name)
		}
	}

	return nil
}

// FieldNames returns the catalog's field names sorted ascending.
func (s *TripSchema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Snapshot produces a JSON-safe structural view of the schema, sufficient to
// reconstruct an equivalent schema. Key ordering is stable across runs.
func (s *TripSchema) Snapshot() map[string]any {
	fields := make([]map[string]any, 0, len(s.Fields))
	domains := make(map[string]any)
	for _, name := range s.FieldNames() {
		spec := s.Fields[name]
		fields = append(fields, fieldSnapshot(spec))
		if spec.Domain != nil {
			domains[name] = domainSnapshot(*spec.Domain)
		}
	}

	return map[string]any{
		"version":  s.Version,
		"fields":   fields,
		"required": append([]string(nil), s.Required...),
		"domains":  domains,
	}
}

func fieldSnapshot(spec FieldSpec) map[string]any {
	out := map[string]any{
		"name":     spec.Name,
		"dtype":    string(spec.DType),
		"required": spec.Required,
	}
	if len(spec.Constraints) > 0 {
		constraints := make(map[string]any, len(spec.Constraints))
		for k, v := range spec.Constraints {
			constraints[k] = v
		}
		out["constraints"] = constraints
	}

	return out
}

func domainSnapshot(d DomainSpec) map[string]any {
	out := map[string]any{
		"values":     append([]string(nil), d.Values...),
		"extendable": d.Extendable,
	}
	if len(d.Aliases) > 0 {
		aliases := make(map[string]string, len(d.Aliases))
		for k, v := range d.Aliases {
			aliases[k] = v
		}
		out["aliases"] = aliases
	}

	return out
}
