package importing

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/golondrina/report"
	"github.com/katalvlaran/golondrina/schema"
	"github.com/katalvlaran/golondrina/table"
)

// StandardizeCategoricalValues recodes every categorical column with a
// DomainSpec onto canonical category values and registers the effective
// domains.
//
// Per cell, in order: the explicit value correspondence for the field, then
// alias resolution from the DomainSpec. A resulting value absent from the
// base domain is either registered once as a controlled extension (domain
// extendable and StrictDomains unset; one warning issue per new value) or
// reported as an error-level OUT_OF_DOMAIN_VALUE issue per offending row.
// The cell always keeps the recoded value — unknown categories are never
// dropped or coerced silently.
//
// Returns the recoded table, the effective domains (base ∪ extensions, in
// base order then first-seen order), the value maps actually applied per
// field, and the issue list.
func StandardizeCategoricalValues(
	tbl *table.Table,
	sch *schema.TripSchema,
	valueCorr map[string]map[string]string,
	opts Options,
) (*table.Table, map[string][]string, map[string]map[string]string, []report.Issue, error) {
	if tbl == nil {
		return nil, nil, nil, nil, ErrNilTable
	}
	if err := sch.Validate(); err != nil {
		return nil, nil, nil, nil, err
	}

	out := tbl
	domainsEffective := make(map[string][]string)
	appliedMaps := make(map[string]map[string]string)
	var issues []report.Issue

	for _, name := range sch.FieldNames() {
		spec := sch.Fields[name]
		if spec.DType != schema.Categorical || spec.Domain == nil || !out.HasColumn(name) {
			continue
		}
		recoded, effective, appliedMap, fieldIssues, err := standardizeField(out, name, *spec.Domain, valueCorr[name], opts)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		out = recoded
		domainsEffective[name] = effective
		if len(appliedMap) > 0 {
			appliedMaps[name] = appliedMap
		}
		issues = append(issues, fieldIssues...)
	}

	return out, domainsEffective, appliedMaps, issues, nil
}

func standardizeField(
	tbl *table.Table,
	field string,
	domain schema.DomainSpec,
	corr map[string]string,
	opts Options,
) (*table.Table, []string, map[string]string, []report.Issue, error) {
	src, err := tbl.Column(field)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("importing: standardizing %q: %w", field, err)
	}

	cells := make([]any, len(src))
	applied := make(map[string]string)
	var extensions []string
	extCounts := make(map[string]int)
	var rowIssues []report.Issue

	for i, raw := range src {
		if table.IsNull(raw) {
			cells[i] = nil

			continue
		}
		v, _ := table.AsString(raw)
		if mapped, ok := corr[v]; ok {
			applied[v] = mapped
			v = mapped
		}
		v = domain.Canonical(v)
		cells[i] = v
		if domain.Contains(v) {
			continue
		}
		if n, known := extCounts[v]; known {
			extCounts[v] = n + 1

			continue
		}
		if domain.Extendable && !opts.StrictDomains {
			extensions = append(extensions, v)
			extCounts[v] = 1

			continue
		}
		rowIssues = append(rowIssues, report.Issue{
			Level:   report.Error,
			Code:    report.CodeOutOfDomainValue,
			Message: fmt.Sprintf("value %q of field %q is outside its non-extendable domain", v, field),
			Field:   field,
			Details: map[string]any{"value": v, "row": i},
		})
	}

	issues := make([]report.Issue, 0, len(extensions)+len(rowIssues))
	for _, v := range extensions {
		issues = append(issues, report.Issue{
			Level:    report.Warning,
			Code:     report.CodeDomainExtended,
			Message:  fmt.Sprintf("field %q extended with controlled value %q", field, v),
			Field:    field,
			RowCount: extCounts[v],
			Details:  map[string]any{"value": v},
		})
	}
	issues = append(issues, rowIssues...)

	out, err := tbl.WithColumn(field, cells)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("importing: standardizing %q: %w", field, err)
	}
	effective := append(append([]string(nil), domain.Values...), extensions...)

	return out, effective, applied, issues, nil
}

// RecodeColumn applies one raw → canonical value map to a column, returning
// the recoded table and the number of cells changed. Shared by the
// correspondence-fixing and inference operations.
func RecodeColumn(tbl *table.Table, field string, mapping map[string]string) (*table.Table, int, error) {
	src, err := tbl.Column(field)
	if err != nil {
		return nil, 0, err
	}
	cells := make([]any, len(src))
	changed := 0
	for i, raw := range src {
		cells[i] = raw
		if table.IsNull(raw) {
			continue
		}
		v, _ := table.AsString(raw)
		if mapped, ok := mapping[v]; ok && mapped != v {
			cells[i] = mapped
			changed++
		}
	}
	out, err := tbl.WithColumn(field, cells)
	if err != nil {
		return nil, 0, err
	}

	return out, changed, nil
}

// sortedKeys returns map keys sorted ascending; used to keep report payloads
// deterministic.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
