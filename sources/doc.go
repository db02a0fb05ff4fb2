// Package sources keeps reusable per-provider import profiles.
//
// A Profile bundles the schema, field and value correspondences and H3
// resolution a known data source needs, so importing from that provider is
// one call instead of a hand-assembled correspondence. Profiles live in a
// Registry; DefaultRegistry ships with profiles for the Santiago
// origin-destination survey (EOD) and ADATRAP smart card exports.
//
// ImportTripsFromSource merges the profile with caller overrides, caller
// entries winning, and delegates to the importing package.
package sources
