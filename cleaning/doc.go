// Package cleaning drops trips that cannot be repaired: structural nulls,
// impossible coordinates, malformed H3 cells, inverted time spans, exact
// duplicates and, optionally, out-of-domain categorical values.
//
// Rules run in a fixed order and each dropped row is attributed to the first
// rule that rejected it, so the per-rule counts in the report sum to the
// total rows dropped. Cleaning removes rows it judges invalid, which is a
// statement about the data the validator has not made, so the returned
// dataset has its validated flag cleared.
package cleaning
