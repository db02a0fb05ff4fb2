package geo

import (
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// BBox is an axis-aligned bounding box in lon/lat order (minx, miny, maxx, maxy).
type BBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// Contains reports whether (lon, lat) lies inside the box, boundary inclusive.
func (b BBox) Contains(lon, lat float64) bool {
	bound := orb.Bound{Min: orb.Point{b.MinLon, b.MinLat}, Max: orb.Point{b.MaxLon, b.MaxLat}}

	return bound.Contains(orb.Point{lon, lat})
}

// PolygonContains reports whether (lon, lat) lies inside poly.
// Boundary points are considered inside.
func PolygonContains(poly orb.Polygon, lon, lat float64) bool {
	return planar.PolygonContains(poly, orb.Point{lon, lat})
}

// MultiPolygonContains reports whether (lon, lat) lies inside any member polygon.
func MultiPolygonContains(mp orb.MultiPolygon, lon, lat float64) bool {
	return planar.MultiPolygonContains(mp, orb.Point{lon, lat})
}

// DistanceMeters returns the great-circle distance between two EPSG:4326
// points in meters.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	return orbgeo.Distance(orb.Point{lon1, lat1}, orb.Point{lon2, lat2})
}

// ValidLatLon reports whether the pair is a plausible EPSG:4326 coordinate.
func ValidLatLon(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
