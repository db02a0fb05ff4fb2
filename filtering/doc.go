// Package filtering selects trip subsets by attribute, time window and
// spatial predicates without changing any cell.
//
// The three predicate families compose with AND semantics inside one
// FilterTrips call:
//
//   - Condition: per-field comparisons (Eq, In, Between, NotNull, ...)
//   - TimeFilter: window relations over origin/destination times
//     (StartsWithin, EndsWithin, Contains, Overlaps), windows half-open
//     [Start, End)
//   - Spatial: H3 cell membership, bounding box or polygon containment,
//     applied to the origin, destination, both or either trip end
//
// Filtering removes rows but never edits values, so a filtered subset of a
// validated dataset is itself valid: FilterTrips preserves the validated
// flag. Mask exposes the row selection for callers that aggregate rather
// than subset, such as flow filtering.
package filtering
