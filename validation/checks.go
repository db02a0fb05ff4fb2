package validation

import (
	"fmt"

	"github.com/katalvlaran/golondrina/geo"
	"github.com/katalvlaran/golondrina/report"
	"github.com/katalvlaran/golondrina/schema"
	"github.com/katalvlaran/golondrina/table"
)

// CheckRequiredFields verifies every schema-required name is a column of the
// table; each missing field is one error-level MISSING_REQUIRED_FIELD issue.
func CheckRequiredFields(tbl *table.Table, sch *schema.TripSchema, _ Options) []report.Issue {
	var issues []report.Issue
	for _, name := range sch.Required {
		if !tbl.HasColumn(name) {
			issues = append(issues, report.Issue{
				Level:   report.Error,
				Code:    report.CodeMissingRequiredField,
				Message: fmt.Sprintf("required field %q is missing from the table", name),
				Field:   name,
			})
		}
	}

	return issues
}

// CheckTypesAndFormats attempts logical coercion per declared dtype and
// aggregates parse failures per field, with a bounded row sample.
func CheckTypesAndFormats(tbl *table.Table, sch *schema.TripSchema, opts Options) []report.Issue {
	var issues []report.Issue
	for _, name := range sch.FieldNames() {
		spec := sch.Fields[name]
		if !tbl.HasColumn(name) {
			continue
		}
		cells, _ := tbl.Column(name)
		var badRows []int
		var badValues []any
		for i, v := range cells {
			if table.IsNull(v) {
				continue
			}
			if !coercible(v, spec.DType) {
				badRows = append(badRows, i)
				badValues = append(badValues, v)
			}
		}
		if len(badRows) == 0 {
			continue
		}
		issues = append(issues, report.Issue{
			Level:    report.Error,
			Code:     report.CodeTypeCoercionFailed,
			Message:  fmt.Sprintf("field %q has %d values that do not coerce to %s", name, len(badRows), spec.DType),
			Field:    name,
			RowCount: len(badRows),
			Details: map[string]any{
				"dtype":         string(spec.DType),
				"sample_rows":   capInts(badRows, opts.SampleRowsPerIssue),
				"sample_values": capAnys(badValues, opts.SampleRowsPerIssue),
			},
		})
	}

	return issues
}

func coercible(v any, dtype schema.DType) bool {
	switch dtype {
	case schema.Datetime:
		_, ok := table.AsTime(v)

		return ok
	case schema.Int:
		_, ok := table.AsInt(v)

		return ok
	case schema.Float:
		_, ok := table.AsFloat(v)

		return ok
	default:
		// string and categorical: every non-null cell renders as a string.
		_, ok := table.AsString(v)

		return ok
	}
}

// CheckConstraints evaluates structured per-field constraints row-wise and
// aggregates violations per constraint per field: nullability of required
// fields, numeric min/max, non-negativity, H3 cell format.
func CheckConstraints(tbl *table.Table, sch *schema.TripSchema, opts Options) []report.Issue {
	var issues []report.Issue
	for _, name := range sch.FieldNames() {
		spec := sch.Fields[name]
		if !tbl.HasColumn(name) {
			continue
		}
		cells, _ := tbl.Column(name)

		if spec.Required {
			if nulls := nullRows(cells); len(nulls) > 0 {
				issues = append(issues, report.Issue{
					Level:    report.Error,
					Code:     report.CodeNullInRequiredField,
					Message:  fmt.Sprintf("required field %q has %d null values", name, len(nulls)),
					Field:    name,
					RowCount: len(nulls),
					Details:  map[string]any{"sample_rows": capInts(nulls, opts.SampleRowsPerIssue)},
				})
			}
		}
		if len(spec.Constraints) == 0 {
			continue
		}
		if minVal, ok := constraintFloat(spec.Constraints, schema.ConstraintMin); ok {
			issues = appendRangeIssue(issues, name, schema.ConstraintMin, cells, opts,
				func(f float64) bool { return f < minVal })
		}
		if maxVal, ok := constraintFloat(spec.Constraints, schema.ConstraintMax); ok {
			issues = appendRangeIssue(issues, name, schema.ConstraintMax, cells, opts,
				func(f float64) bool { return f > maxVal })
		}
		if nonNeg, _ := spec.Constraints[schema.ConstraintNonNegative].(bool); nonNeg {
			issues = appendRangeIssue(issues, name, schema.ConstraintNonNegative, cells, opts,
				func(f float64) bool { return f < 0 })
		}
		if format, _ := spec.Constraints[schema.ConstraintFormat].(string); format == schema.FormatH3 {
			var badRows []int
			for i, v := range cells {
				if table.IsNull(v) {
					continue
				}
				s, _ := table.AsString(v)
				if !geo.ValidCell(s) {
					badRows = append(badRows, i)
				}
			}
			if len(badRows) > 0 {
				issues = append(issues, report.Issue{
					Level:    report.Error,
					Code:     report.CodeConstraintViolation,
					Message:  fmt.Sprintf("field %q has %d invalid H3 cell indices", name, len(badRows)),
					Field:    name,
					RowCount: len(badRows),
					Details: map[string]any{
						"constraint":  schema.ConstraintFormat,
						"format":      schema.FormatH3,
						"sample_rows": capInts(badRows, opts.SampleRowsPerIssue),
					},
				})
			}
		}
	}

	return issues
}

func appendRangeIssue(issues []report.Issue, field, constraint string, cells []any, opts Options, violates func(float64) bool) []report.Issue {
	var badRows []int
	for i, v := range cells {
		if table.IsNull(v) {
			continue
		}
		f, ok := table.AsFloat(v)
		if !ok {
			continue // type failures belong to the types check
		}
		if violates(f) {
			badRows = append(badRows, i)
		}
	}
	if len(badRows) == 0 {
		return issues
	}

	return append(issues, report.Issue{
		Level:    report.Error,
		Code:     report.CodeConstraintViolation,
		Message:  fmt.Sprintf("field %q violates constraint %q in %d rows", field, constraint, len(badRows)),
		Field:    field,
		RowCount: len(badRows),
		Details: map[string]any{
			"constraint":  constraint,
			"sample_rows": capInts(badRows, opts.SampleRowsPerIssue),
		},
	})
}

// CheckDomains validates categorical values against the effective domains
// (base values when no effective set is recorded), honoring aliases.
//
// Severity is graduated by the observed in-domain ratio r:
// r < DomainsMinInDomainRatio → error; r < 1.0 → warning; r == 1.0 → no
// issue. DomainsSample mode checks a deterministic stride sample of rows so
// repeated runs see identical findings.
func CheckDomains(tbl *table.Table, sch *schema.TripSchema, domainsEffective map[string][]string, opts Options) []report.Issue {
	if opts.Domains == DomainsOff {
		return nil
	}
	var issues []report.Issue
	for _, name := range sch.FieldNames() {
		spec := sch.Fields[name]
		if spec.DType != schema.Categorical || spec.Domain == nil || !tbl.HasColumn(name) {
			continue
		}
		allowed := make(map[string]struct{})
		values := spec.Domain.Values
		if eff, ok := domainsEffective[name]; ok {
			values = eff
		}
		for _, v := range values {
			allowed[v] = struct{}{}
		}

		cells, _ := tbl.Column(name)
		rows := sampleIndices(len(cells), opts)
		checked, inDomain := 0, 0
		unknown := make(map[string]int)
		var unknownOrder []string
		for _, i := range rows {
			if table.IsNull(cells[i]) {
				continue
			}
			s, _ := table.AsString(cells[i])
			s = spec.Domain.Canonical(s)
			checked++
			if _, ok := allowed[s]; ok {
				inDomain++

				continue
			}
			if _, seen := unknown[s]; !seen {
				unknownOrder = append(unknownOrder, s)
			}
			unknown[s]++
		}
		if checked == 0 {
			continue
		}
		ratio := float64(inDomain) / float64(checked)
		if ratio >= 1.0 {
			continue // full conformance is a quiet pass
		}
		level := report.Warning
		if ratio < opts.DomainsMinInDomainRatio {
			level = report.Error
		}
		sample := make(map[string]int, opts.SampleRowsPerIssue)
		for i, v := range unknownOrder {
			if i >= opts.SampleRowsPerIssue && opts.SampleRowsPerIssue > 0 {
				break
			}
			sample[v] = unknown[v]
		}
		issues = append(issues, report.Issue{
			Level:    level,
			Code:     report.CodeOutOfDomainRatio,
			Message:  fmt.Sprintf("field %q: %.4f of checked values in domain (threshold %.4f)", name, ratio, opts.DomainsMinInDomainRatio),
			Field:    name,
			RowCount: checked - inDomain,
			Details: map[string]any{
				"ratio":          ratio,
				"checked":        checked,
				"mode":           string(opts.Domains),
				"unknown_values": sample,
			},
		})
	}

	return issues
}

// sampleIndices returns the row indices a domain check visits: all rows in
// full mode, a deterministic stride sample in sample mode.
func sampleIndices(rows int, opts Options) []int {
	idx := make([]int, 0, rows)
	if opts.Domains != DomainsSample || opts.DomainsSampleFrac >= 1.0 || rows == 0 {
		for i := 0; i < rows; i++ {
			idx = append(idx, i)
		}

		return idx
	}
	n := int(float64(rows) * opts.DomainsSampleFrac)
	if n < 1 {
		n = 1
	}
	step := rows / n
	if step < 1 {
		step = 1
	}
	for i := 0; i < rows; i += step {
		idx = append(idx, i)
	}

	return idx
}

// CheckTemporalConsistency verifies origin_time ≤ destination_time row-wise.
// Unparseable timestamps are skipped here; they belong to the types check.
func CheckTemporalConsistency(tbl *table.Table, sch *schema.TripSchema, opts Options) []report.Issue {
	if !tbl.HasColumn(schema.FieldOriginTime) || !tbl.HasColumn(schema.FieldDestTime) {
		return nil
	}
	origins, _ := tbl.Column(schema.FieldOriginTime)
	dests, _ := tbl.Column(schema.FieldDestTime)
	var badRows []int
	for i := range origins {
		ot, okO := table.AsTime(origins[i])
		dt, okD := table.AsTime(dests[i])
		if !okO || !okD {
			continue
		}
		if ot.After(dt) {
			badRows = append(badRows, i)
		}
	}
	if len(badRows) == 0 {
		return nil
	}

	return []report.Issue{{
		Level:    report.Error,
		Code:     report.CodeTemporalInconsistency,
		Message:  fmt.Sprintf("%d trips start after they end (%s > %s)", len(badRows), schema.FieldOriginTime, schema.FieldDestTime),
		Field:    schema.FieldOriginTime,
		RowCount: len(badRows),
		Details:  map[string]any{"sample_rows": capInts(badRows, opts.SampleRowsPerIssue)},
	}}
}

// CheckCrossfieldConsistency verifies stored H3 cells against the lat/lon
// pair at the expected resolution, for the origin and destination triples.
func CheckCrossfieldConsistency(tbl *table.Table, sch *schema.TripSchema, resolution int, opts Options) []report.Issue {
	if geo.CheckResolution(resolution) != nil {
		return nil
	}
	triples := []struct{ cell, lat, lon string }{
		{schema.FieldOriginH3, schema.FieldOriginLat, schema.FieldOriginLon},
		{schema.FieldDestH3, schema.FieldDestLat, schema.FieldDestLon},
	}
	var issues []report.Issue
	for _, tr := range triples {
		if !tbl.HasColumn(tr.cell) || !tbl.HasColumn(tr.lat) || !tbl.HasColumn(tr.lon) {
			continue
		}
		cells, _ := tbl.Column(tr.cell)
		lats, _ := tbl.Column(tr.lat)
		lons, _ := tbl.Column(tr.lon)
		var badRows []int
		for i := range cells {
			if table.IsNull(cells[i]) {
				continue
			}
			lat, okLat := table.AsFloat(lats[i])
			lon, okLon := table.AsFloat(lons[i])
			if !okLat || !okLon {
				continue
			}
			stored, _ := table.AsString(cells[i])
			if !geo.CellMatches(stored, lat, lon, resolution) {
				badRows = append(badRows, i)
			}
		}
		if len(badRows) == 0 {
			continue
		}
		issues = append(issues, report.Issue{
			Level:    report.Error,
			Code:     report.CodeH3LatLonMismatch,
			Message:  fmt.Sprintf("field %q disagrees with %s/%s at resolution %d in %d rows", tr.cell, tr.lat, tr.lon, resolution, len(badRows)),
			Field:    tr.cell,
			RowCount: len(badRows),
			Details: map[string]any{
				"resolution":  resolution,
				"sample_rows": capInts(badRows, opts.SampleRowsPerIssue),
			},
		})
	}

	return issues
}

// Default duplicate-detection key, filtered to the columns present.
var defaultDuplicatesSubset = []string{
	schema.FieldUserID,
	schema.FieldOriginTime,
	schema.FieldOriginH3,
	schema.FieldDestH3,
}

// CheckDuplicates detects exact-match duplicate rows over the configured key
// tuple, or over the schema-derived default when none is configured.
func CheckDuplicates(tbl *table.Table, opts Options) []report.Issue {
	candidates := opts.DuplicatesSubset
	if len(candidates) == 0 {
		candidates = defaultDuplicatesSubset
	}
	var key []string
	for _, name := range candidates {
		if tbl.HasColumn(name) {
			key = append(key, name)
		}
	}
	if len(key) == 0 {
		return []report.Issue{{
			Level:   report.Info,
			Code:    report.CodeFieldNotFound,
			Message: "no duplicate-detection key columns present; duplicates check skipped",
		}}
	}
	mask, err := tbl.DistinctMask(key)
	if err != nil {
		return nil
	}
	var dupRows []int
	for i, first := range mask {
		if !first {
			dupRows = append(dupRows, i)
		}
	}
	if len(dupRows) == 0 {
		return nil
	}

	return []report.Issue{{
		Level:    report.Warning,
		Code:     report.CodeDuplicateRows,
		Message:  fmt.Sprintf("%d duplicate rows over key %v", len(dupRows), key),
		RowCount: len(dupRows),
		Details: map[string]any{
			"key":         key,
			"sample_rows": capInts(dupRows, opts.SampleRowsPerIssue),
		},
	}}
}

// constraintFloat reads a numeric constraint value regardless of how the
// schema author typed it.
func constraintFloat(constraints map[string]any, key string) (float64, bool) {
	v, ok := constraints[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func nullRows(cells []any) []int {
	var out []int
	for i, v := range cells {
		if table.IsNull(v) {
			out = append(out, i)
		}
	}

	return out
}

func capInts(rows []int, limit int) []int {
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	return append([]int(nil), rows...)
}

func capAnys(values []any, limit int) []any {
	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}

	return append([]any(nil), values...)
}
