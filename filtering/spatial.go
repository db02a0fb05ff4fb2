package filtering

import (
	"strings"

	"github.com/paulmach/orb"

	"github.com/katalvlaran/golondrina/geo"
	"github.com/katalvlaran/golondrina/schema"
	"github.com/katalvlaran/golondrina/table"
)

// Target selects which trip end a spatial predicate applies to.
type Target string

// Spatial targets.
const (
	// TargetOrigin applies the predicate to the trip origin.
	TargetOrigin Target = "origin"

	// TargetDestination applies the predicate to the trip destination.
	TargetDestination Target = "destination"

	// TargetBoth keeps trips whose both ends satisfy the predicate.
	TargetBoth Target = "both"

	// TargetEither keeps trips where at least one end satisfies it.
	TargetEither Target = "either"
)

// Spatial keeps trips by one spatial predicate applied to Target.
// Exactly one of Cells, BBox, Polygon must be set.
type Spatial struct {
	// Target defaults to TargetBoth when empty.
	Target Target

	// Cells matches the endpoint's H3 cell against this set,
	// case-insensitive.
	Cells []string

	// BBox matches the endpoint's lat/lon against the box, boundary
	// inclusive.
	BBox *geo.BBox

	// Polygon matches the endpoint's lat/lon against the ring set, boundary
	// inclusive.
	Polygon orb.Polygon
}

// predicateCount reports how many of the three predicates are set.
func (s Spatial) predicateCount() int {
	n := 0
	if len(s.Cells) > 0 {
		n++
	}
	if s.BBox != nil {
		n++
	}
	if len(s.Polygon) > 0 {
		n++
	}

	return n
}

func (s Spatial) target() Target {
	if s.Target == "" {
		return TargetBoth
	}

	return s.Target
}

// columns reports the table columns the predicate reads per endpoint.
func (s Spatial) columns() (origin, dest []string) {
	if len(s.Cells) > 0 {
		return []string{schema.FieldOriginH3}, []string{schema.FieldDestH3}
	}

	return []string{schema.FieldOriginLat, schema.FieldOriginLon},
		[]string{schema.FieldDestLat, schema.FieldDestLon}
}

// spatialEval is the predicate bound to a concrete table.
type spatialEval struct {
	spec     Spatial
	cellSet  map[string]struct{}
	originH3 []any
	destH3   []any
	oLat     []any
	oLon     []any
	dLat     []any
	dLon     []any
}

func newSpatialEval(tbl *table.Table, spec Spatial) spatialEval {
	ev := spatialEval{spec: spec}
	if len(spec.Cells) > 0 {
		ev.cellSet = make(map[string]struct{}, len(spec.Cells))
		for _, c := range spec.Cells {
			ev.cellSet[strings.ToLower(c)] = struct{}{}
		}
		ev.originH3, _ = tbl.Column(schema.FieldOriginH3)
		ev.destH3, _ = tbl.Column(schema.FieldDestH3)
	} else {
		ev.oLat, _ = tbl.Column(schema.FieldOriginLat)
		ev.oLon, _ = tbl.Column(schema.FieldOriginLon)
		ev.dLat, _ = tbl.Column(schema.FieldDestLat)
		ev.dLon, _ = tbl.Column(schema.FieldDestLon)
	}

	return ev
}

// matches evaluates the predicate for one row.
func (ev spatialEval) matches(row int) bool {
	switch ev.spec.target() {
	case TargetOrigin:
		return ev.endpoint(row, true)
	case TargetDestination:
		return ev.endpoint(row, false)
	case TargetEither:
		return ev.endpoint(row, true) || ev.endpoint(row, false)
	default:
		return ev.endpoint(row, true) && ev.endpoint(row, false)
	}
}

// endpoint evaluates one trip end. Missing or null coordinates reject the
// endpoint.
func (ev spatialEval) endpoint(row int, origin bool) bool {
	if ev.cellSet != nil {
		cells := ev.destH3
		if origin {
			cells = ev.originH3
		}
		if cells == nil || table.IsNull(cells[row]) {
			return false
		}
		s, _ := table.AsString(cells[row])
		_, ok := ev.cellSet[strings.ToLower(s)]

		return ok
	}

	lats, lons := ev.dLat, ev.dLon
	if origin {
		lats, lons = ev.oLat, ev.oLon
	}
	if lats == nil || lons == nil {
		return false
	}
	lat, okLat := table.AsFloat(lats[row])
	lon, okLon := table.AsFloat(lons[row])
	if !okLat || !okLon {
		return false
	}
	if ev.spec.BBox != nil {
		return ev.spec.BBox.Contains(lon, lat)
	}

	return geo.PolygonContains(ev.spec.Polygon, lon, lat)
}
