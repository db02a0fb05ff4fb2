// Package validation is the rule-based conformance engine of the Golondrina
// format: a state-free, multi-check evaluator over (table, schema, options).
//
// Checks run in a fixed order (required fields, types/formats, constraints,
// domains, temporal consistency, crossfield consistency, duplicates), each
// independently toggleable, so the issue list is deterministic for identical
// input. Row-level findings are aggregated per field (bounded samples in
// Issue.Details), never reported row by row, to keep issue volume bounded;
// the whole list is additionally capped at Options.MaxIssues with the
// truncation recorded in the summary.
//
// Two entry points:
//
//   - Run(table, schema, domainsEffective, options): the engine proper;
//     produces the ValidationReport and nothing else.
//   - ValidateTrips(dataset, options): the dataset wrapper; runs the engine
//     against the dataset's own schema and effective domains, stamps a
//     validate_trips event, and returns a copy with the validated flag set
//     iff the run found no error-level issue.
//
// Strictness changes escalation only: the issue content for a given input
// is identical under Strict true and false; Strict merely converts a
// not-Ok report into a returned ErrValidation.
package validation
