// Package geo wraps the spatial primitives shared by importing, validation,
// filtering, cleaning and flow aggregation: H3 cell derivation (uber/h3-go)
// and planar containment predicates (paulmach/orb).
//
// Boundary semantics: bbox and polygon predicates treat boundary points as
// inside (inclusive containment).
package geo
