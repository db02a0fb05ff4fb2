// Package report models the structured, severity-leveled findings every
// Golondrina operation emits: Issue values accumulated into Report objects.
//
// The contract, shared by import, validation, fixing, flows, inference and
// the derived-dataset operations:
//
//   - recoverable conditions become Issues, never errors; only aggregate
//     strictness policy escalates error-level Issues into a returned error,
//     and that decision belongs to the emitting package, not to this one;
//   - a Report is created once per operation invocation and is immutable
//     after return; Ok is true iff no issue at Level Error is present;
//   - issue lists are capped; a truncated list records the suppressed count
//     in the summary so no finding disappears silently;
//   - issues, summary and parameters round-trip losslessly through JSON for
//     persistence in sidecar files or logs.
//
// Builder is the accumulation helper operations use to enforce the cap and
// compute the summary counts deterministically.
package report
