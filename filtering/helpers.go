package filtering

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/katalvlaran/golondrina/dataset"
	"github.com/katalvlaran/golondrina/geo"
	"github.com/katalvlaran/golondrina/report"
)

// FilterByH3Cells keeps trips whose targeted endpoint falls in cells.
func FilterByH3Cells(ds *dataset.TripDataset, cells []string, target Target) (*dataset.TripDataset, *report.OperationReport, error) {
	opts := DefaultOptions()
	opts.Spatial = &Spatial{Target: target, Cells: cells}

	return FilterTrips(ds, opts)
}

// FilterByBBox keeps trips whose targeted endpoint falls inside box.
func FilterByBBox(ds *dataset.TripDataset, box geo.BBox, target Target) (*dataset.TripDataset, *report.OperationReport, error) {
	opts := DefaultOptions()
	opts.Spatial = &Spatial{Target: target, BBox: &box}

	return FilterTrips(ds, opts)
}

// FilterByPolygon keeps trips whose targeted endpoint falls inside poly,
// boundary inclusive.
func FilterByPolygon(ds *dataset.TripDataset, poly orb.Polygon, target Target) (*dataset.TripDataset, *report.OperationReport, error) {
	opts := DefaultOptions()
	opts.Spatial = &Spatial{Target: target, Polygon: poly}

	return FilterTrips(ds, opts)
}

// FilterByDomainValues keeps trips whose field value is one of values.
func FilterByDomainValues(ds *dataset.TripDataset, field string, values ...string) (*dataset.TripDataset, *report.OperationReport, error) {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	opts := DefaultOptions()
	opts.Conditions = []Condition{In(field, vs...)}

	return FilterTrips(ds, opts)
}

// FilterByTimeRange keeps trips related to [start, end) per mode.
func FilterByTimeRange(ds *dataset.TripDataset, mode TimeMode, start, end time.Time) (*dataset.TripDataset, *report.OperationReport, error) {
	opts := DefaultOptions()
	opts.Time = &TimeFilter{Mode: mode, Start: start, End: end}

	return FilterTrips(ds, opts)
}
