// Package dataset defines the state containers of the Golondrina format:
// TripDataset, FlowDataset and TraceDataset, plus the Metadata event log
// and validated flag they carry.
//
// Datasets are value containers with pure-function mutation: every
// operation that "changes" a dataset returns a new instance and leaves the
// caller's object untouched, so concurrent read-only use is safe. The
// validated flag is true iff the last validation-producing operation on
// this exact table succeeded without unresolved errors; WithData always
// resets it, because any structural change invalidates prior validation.
package dataset
