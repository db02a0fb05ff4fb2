// Package concat merges multiple trip datasets into one.
//
// ConcatTripDatasets unions the tables column-wise (a column absent in one
// input is null in its rows), reconciles schema versions and effective
// domains, and optionally deduplicates the result. Merged tables need a
// fresh validation pass, so the returned dataset has its validated flag
// cleared.
package concat
