package report

import "sort"

// Report is the outcome of one operation invocation: ordered issues, a
// JSON-safe summary, and the effective parameters used. Immutable after
// return.
type Report struct {
	// Ok is true iff Issues holds no Level Error entry.
	Ok bool `json:"ok"`

	// Issues is the ordered finding list, already capped by the emitter.
	Issues []Issue `json:"issues"`

	// Summary is a JSON-safe aggregate (counts by level/code, checks run,
	// truncation record).
	Summary map[string]any `json:"summary"`

	// Parameters records the effective options the operation ran with.
	Parameters map[string]any `json:"parameters"`
}

// Typed report aliases. They share one shape; the alias names keep call
// sites self-describing and mirror the operation families.
type (
	// ValidationReport is produced by validation.Run and validation.ValidateTrips.
	ValidationReport = Report

	// InferenceReport is produced by inference.InferTripsFromTraces.
	InferenceReport = Report

	// FlowBuildReport is produced by flows.BuildFlows.
	FlowBuildReport = Report

	// ConsistencyReport is produced by traces.ValidateTraceConsistency.
	ConsistencyReport = Report

	// OperationReport is the generic report of derived-dataset operations
	// (fixing, filtering, cleaning, flow filtering).
	OperationReport = Report
)

// ImportReport extends Report with the correspondence actually applied, for
// persistence alongside the imported dataset.
type ImportReport struct {
	Report

	// FieldCorrespondence is the canonical → source column map applied.
	FieldCorrespondence map[string]string `json:"field_correspondence"`

	// ValueCorrespondence is the per-field raw → canonical value maps applied.
	ValueCorrespondence map[string]map[string]string `json:"value_correspondence"`

	// SchemaVersion is the schema version the import targeted.
	SchemaVersion string `json:"schema_version"`
}

// HasError reports whether the report holds at least one Level Error issue.
func (r *Report) HasError() bool { return HasError(r.Issues) }

// CountByLevel reports how many issues carry the given severity.
func (r *Report) CountByLevel(level Level) int {
	n := 0
	for _, iss := range r.Issues {
		if iss.Level == level {
			n++
		}
	}

	return n
}

// CountByCode reports how many issues carry the given stable code.
func (r *Report) CountByCode(code string) int {
	n := 0
	for _, iss := range r.Issues {
		if iss.Code == code {
			n++
		}
	}

	return n
}

// Codes returns the distinct issue codes present, sorted ascending.
func (r *Report) Codes() []string { return Codes(r.Issues) }

// HasError reports whether issues contains at least one Level Error entry.
func HasError(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Level == Error {
			return true
		}
	}

	return false
}

// CountByLevel aggregates issue counts per severity. Always carries all
// three levels so summaries are shape-stable.
func CountByLevel(issues []Issue) map[string]int {
	counts := map[string]int{string(Info): 0, string(Warning): 0, string(Error): 0}
	for _, iss := range issues {
		counts[string(iss.Level)]++
	}

	return counts
}

// CountByCode aggregates issue counts per stable code.
func CountByCode(issues []Issue) map[string]int {
	counts := make(map[string]int)
	for _, iss := range issues {
		counts[iss.Code]++
	}

	return counts
}

// Codes returns the distinct issue codes present, sorted ascending.
func Codes(issues []Issue) []string {
	byCode := CountByCode(issues)
	out := make([]string, 0, len(byCode))
	for code := range byCode {
		out = append(out, code)
	}
	sort.Strings(out)

	return out
}
