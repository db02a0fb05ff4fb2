// Package flows aggregates trips into origin-destination flows.
//
// BuildFlows groups trips by origin and destination H3 cell at a chosen
// resolution, optionally segmented by extra attribute columns and a time
// bucket (hour, day, week, month), and emits one flow row per group with a
// trip count. The grouping is deterministic: identical inputs and options
// produce byte-identical flow tables, flow IDs excepted.
//
// FilterFlows subsets an existing flow table by attribute conditions and
// H3 cell membership, trimming the flow-to-trips linkage to match.
package flows
