// Package traces imports and checks raw location point data (GPS, XDR,
// check-ins) ahead of trip inference.
//
// ImportTraces standardizes column names onto a trace schema and runs an
// optional preprocessing hook. ValidateTraceConsistency is a read-only
// engine checking per-user timestamp monotonicity and coordinate
// plausibility; ValidateTraces wraps it to stamp the outcome onto the
// dataset. ComputeTraceStats summarizes coverage without modifying
// anything.
package traces
