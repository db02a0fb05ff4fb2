// Package enrich joins external attribute tables onto a trip dataset.
//
// EnrichTrips performs a left or inner hash join on a configurable key
// mapping (trip column → enrichment column) and appends the selected
// enrichment columns. Joins can change row multiplicity and introduce new
// values, so the returned dataset has its validated flag cleared.
package enrich
