package flows

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/katalvlaran/golondrina/dataset"
	"github.com/katalvlaran/golondrina/geo"
	"github.com/katalvlaran/golondrina/report"
	"github.com/katalvlaran/golondrina/schema"
	"github.com/katalvlaran/golondrina/table"
)

// EventBuildFlows is the metadata event stamped by BuildFlows.
const EventBuildFlows = "build_flows"

// ErrFlows indicates the flow build could not proceed or, under
// Options.Strict, that error-level issues were present.
var ErrFlows = errors.New("flows: flow build failed")

// ErrNilDataset indicates a nil input dataset.
var ErrNilDataset = errors.New("flows: dataset is nil")

// Flow table column names.
const (
	ColFlowID     = "flow_id"
	ColOriginCell = "origin_cell"
	ColDestCell   = "destination_cell"
	ColTimeBucket = "time_bucket"
	ColCount      = "count"
	ColTripID     = "trip_id"
	ColTripRow    = "trip_row"
)

// TimeAggregation selects the temporal bucket of a flow key.
type TimeAggregation string

// Temporal buckets.
const (
	AggNone  TimeAggregation = "none"
	AggHour  TimeAggregation = "hour"
	AggDay   TimeAggregation = "day"
	AggWeek  TimeAggregation = "week"
	AggMonth TimeAggregation = "month"
)

// TimeBasis selects which trip end timestamps the bucket is taken from.
type TimeBasis string

// Temporal bases.
const (
	BasisOrigin      TimeBasis = "origin"
	BasisDestination TimeBasis = "destination"
)

// Flow build defaults.
const (
	DefaultMinTripsPerFlow = 1
	DefaultMaxIssues       = 1000
)

// Options controls one flow build.
type Options struct {
	// H3Resolution is the cell resolution flows are aggregated at. Cells
	// are recomputed from lat/lon when coordinates are present; stored H3
	// columns are the fallback.
	H3Resolution int

	// GroupBy lists extra trip columns folded into the flow key.
	GroupBy []string

	// TimeAggregation buckets flows temporally; AggNone disables it.
	TimeAggregation TimeAggregation

	// TimeBasis picks the timestamp the bucket is derived from.
	TimeBasis TimeBasis

	// MinTripsPerFlow drops flows with fewer member trips.
	MinTripsPerFlow int

	// KeepFlowToTrips emits the flow → member-trip linkage table.
	KeepFlowToTrips bool

	// RequireValidated refuses unvalidated input. When false, unvalidated
	// input is a warning.
	RequireValidated bool

	// Strict escalates error-level issues into a returned ErrFlows.
	Strict bool

	// MaxIssues caps the emitted issue list.
	MaxIssues int

	// Logger, when non-nil, receives build diagnostics.
	Logger *slog.Logger
}

// DefaultOptions returns the flow build defaults: resolution 8, no
// segmentation, no time bucket, validated input required.
func DefaultOptions() Options {
	return Options{
		H3Resolution:     geo.DefaultResolution,
		TimeAggregation:  AggNone,
		TimeBasis:        BasisOrigin,
		MinTripsPerFlow:  DefaultMinTripsPerFlow,
		RequireValidated: true,
		MaxIssues:        DefaultMaxIssues,
	}
}

func (o Options) params() map[string]any {
	out := map[string]any{
		"h3_resolution":      o.H3Resolution,
		"time_aggregation":   string(o.aggregation()),
		"time_basis":         string(o.basis()),
		"min_trips_per_flow": o.MinTripsPerFlow,
		"keep_flow_to_trips": o.KeepFlowToTrips,
		"require_validated":  o.RequireValidated,
		"strict":             o.Strict,
	}
	if len(o.GroupBy) > 0 {
		out["group_by"] = append([]string(nil), o.GroupBy...)
	}

	return out
}

func (o Options) aggregation() TimeAggregation {
	if o.TimeAggregation == "" {
		return AggNone
	}

	return o.TimeAggregation
}

func (o Options) basis() TimeBasis {
	if o.TimeBasis == "" {
		return BasisOrigin
	}

	return o.TimeBasis
}

// BuildFlows aggregates the trips of ds into OD flows per opts. The
// resulting flow table is sorted by its full key, so repeated builds over
// the same input are identical apart from generated flow IDs.
func BuildFlows(ds *dataset.TripDataset, opts Options) (*dataset.FlowDataset, *report.FlowBuildReport, error) {
	if ds == nil {
		return nil, nil, ErrNilDataset
	}
	if err := geo.CheckResolution(opts.H3Resolution); err != nil {
		return nil, nil, fmt.Errorf("flows: %w", err)
	}
	agg := opts.aggregation()
	switch agg {
	case AggNone, AggHour, AggDay, AggWeek, AggMonth:
	default:
		return nil, nil, fmt.Errorf("flows: unknown time aggregation %q", agg)
	}

	b := report.NewBuilder(opts.MaxIssues)
	if !ds.IsValidated() {
		if opts.RequireValidated {
			b.Add(report.Issue{
				Level:   report.Error,
				Code:    report.CodeUnvalidatedInput,
				Message: "input dataset is not validated; pass it through validation first or unset RequireValidated",
			})
			rep := b.Build(map[string]any{"rows_in": ds.Data.NumRows()}, opts.params())

			return nil, rep, fmt.Errorf("%w: input not validated", ErrFlows)
		}
		b.Add(report.Issue{
			Level:   report.Warning,
			Code:    report.CodeUnvalidatedInput,
			Message: "building flows from an unvalidated dataset",
		})
	}

	keys, skipped, err := flowKeys(ds.Data, opts)
	if err != nil {
		return nil, nil, err
	}
	if skipped > 0 {
		b.Add(report.Issue{
			Level:    report.Warning,
			Code:     report.CodeRowsDropped,
			Message:  fmt.Sprintf("%d trips lacked a usable flow key and were skipped", skipped),
			RowCount: skipped,
		})
	}

	// group member rows per rendered key, then order keys for determinism
	groups := make(map[string][]int)
	parts := make(map[string][]any)
	for row, k := range keys {
		if k == nil {
			continue
		}
		rendered := renderKey(k)
		groups[rendered] = append(groups[rendered], row)
		parts[rendered] = k
	}
	ordered := make([]string, 0, len(groups))
	for k := range groups {
		ordered = append(ordered, k)
	}
	sort.Strings(ordered)

	keyCols := flowKeyColumns(opts)
	names := append([]string{ColFlowID}, keyCols...)
	names = append(names, ColCount)

	minTrips := opts.MinTripsPerFlow
	if minTrips < 1 {
		minTrips = 1
	}

	var flowRows [][]any
	var links []memberLink
	droppedFlows := 0
	for _, rendered := range ordered {
		members := groups[rendered]
		if len(members) < minTrips {
			droppedFlows++

			continue
		}
		id := uuid.NewString()
		row := make([]any, 0, len(names))
		row = append(row, id)
		row = append(row, parts[rendered]...)
		row = append(row, int64(len(members)))
		flowRows = append(flowRows, row)
		if opts.KeepFlowToTrips {
			links = append(links, memberLink{id, members})
		}
	}

	flowTable, err := table.FromRows(names, flowRows...)
	if err != nil {
		return nil, nil, fmt.Errorf("flows: assemble flow table: %w", err)
	}

	var linkTable *table.Table
	if opts.KeepFlowToTrips {
		linkTable, err = buildLinkage(ds.Data, links)
		if err != nil {
			return nil, nil, err
		}
	}

	summary := map[string]any{
		"rows_in":          ds.Data.NumRows(),
		"flows_out":        flowTable.NumRows(),
		"trips_skipped":    skipped,
		"flows_below_min":  droppedFlows,
		"time_aggregation": string(agg),
		"h3_resolution":    opts.H3Resolution,
	}
	rep := b.Build(summary, opts.params())
	if opts.Strict && !rep.Ok {
		return nil, rep, fmt.Errorf("%w: %d error issues", ErrFlows, rep.CountByLevel(report.Error))
	}
	if opts.Logger != nil {
		opts.Logger.Info("flows built",
			"trips", ds.Data.NumRows(), "flows", flowTable.NumRows(), "resolution", opts.H3Resolution)
	}

	fd := &dataset.FlowDataset{
		ID:              uuid.NewString(),
		Flows:           flowTable,
		FlowToTrips:     linkTable,
		AggregationSpec: opts.params(),
		SourceTrips:     ds,
		Provenance:      map[string]any{"operation": "build_flows", "source_id": ds.ID},
	}
	fd.Metadata = fd.Metadata.WithEvent(dataset.NewEvent(EventBuildFlows, rep.Parameters, rep.Summary))

	return fd, rep, nil
}

// flowKeyColumns lists the key columns of the flow table in order.
func flowKeyColumns(opts Options) []string {
	cols := []string{ColOriginCell, ColDestCell}
	cols = append(cols, opts.GroupBy...)
	if opts.aggregation() != AggNone {
		cols = append(cols, ColTimeBucket)
	}

	return cols
}

// flowKeys computes the key tuple per trip row; a nil entry marks a row
// skipped for lacking a usable key component.
func flowKeys(tbl *table.Table, opts Options) ([][]any, int, error) {
	rows := tbl.NumRows()
	keys := make([][]any, rows)

	originCells, err := endpointCells(tbl, schema.FieldOriginLat, schema.FieldOriginLon, schema.FieldOriginH3, opts.H3Resolution)
	if err != nil {
		return nil, 0, err
	}
	destCells, err := endpointCells(tbl, schema.FieldDestLat, schema.FieldDestLon, schema.FieldDestH3, opts.H3Resolution)
	if err != nil {
		return nil, 0, err
	}

	groupCols := make([][]any, len(opts.GroupBy))
	for i, name := range opts.GroupBy {
		col, colErr := tbl.Column(name)
		if colErr != nil {
			return nil, 0, fmt.Errorf("flows: group-by column: %w", colErr)
		}
		groupCols[i] = col
	}

	agg := opts.aggregation()
	var timeCol []any
	if agg != AggNone {
		basis := schema.FieldOriginTime
		if opts.basis() == BasisDestination {
			basis = schema.FieldDestTime
		}
		if timeCol, err = tbl.Column(basis); err != nil {
			return nil, 0, fmt.Errorf("flows: time basis column: %w", err)
		}
	}

	skipped := 0
	for row := 0; row < rows; row++ {
		oc, dc := originCells[row], destCells[row]
		if oc == "" || dc == "" {
			skipped++

			continue
		}
		key := make([]any, 0, 2+len(groupCols)+1)
		key = append(key, oc, dc)
		for _, col := range groupCols {
			key = append(key, col[row])
		}
		if agg != AggNone {
			t, ok := table.AsTime(timeCol[row])
			if !ok {
				skipped++

				continue
			}
			key = append(key, timeBucket(t, agg))
		}
		keys[row] = key
	}

	return keys, skipped, nil
}

// endpointCells resolves one H3 cell per row for a trip end: recomputed
// from coordinates when both are parseable, else the stored cell, else "".
func endpointCells(tbl *table.Table, latName, lonName, cellName string, res int) ([]string, error) {
	rows := tbl.NumRows()
	out := make([]string, rows)

	lats, errLat := tbl.Column(latName)
	lons, errLon := tbl.Column(lonName)
	haveCoords := errLat == nil && errLon == nil
	stored, errCell := tbl.Column(cellName)
	haveStored := errCell == nil

	if !haveCoords && !haveStored {
		return nil, fmt.Errorf("flows: %w: neither %s/%s nor %s present",
			ErrFlows, latName, lonName, cellName)
	}

	for row := 0; row < rows; row++ {
		if haveCoords {
			lat, okLat := table.AsFloat(lats[row])
			lon, okLon := table.AsFloat(lons[row])
			if okLat && okLon {
				if cell, err := geo.CellString(lat, lon, res); err == nil {
					out[row] = cell

					continue
				}
			}
		}
		if haveStored && !table.IsNull(stored[row]) {
			s, _ := table.AsString(stored[row])
			if geo.ValidCell(s) {
				out[row] = strings.ToLower(s)
			}
		}
	}

	return out, nil
}

// timeBucket renders t into the bucket label of the aggregation, in UTC.
func timeBucket(t time.Time, agg TimeAggregation) string {
	t = t.UTC()
	switch agg {
	case AggHour:
		return t.Format("2006-01-02T15")
	case AggDay:
		return t.Format("2006-01-02")
	case AggWeek:
		year, week := t.ISOWeek()

		return fmt.Sprintf("%04d-W%02d", year, week)
	case AggMonth:
		return t.Format("2006-01")
	default:
		return ""
	}
}

// renderKey gives the sort/group string of one key tuple.
func renderKey(key []any) string {
	parts := make([]string, len(key))
	for i, v := range key {
		parts[i] = table.KeyString(v)
	}

	return strings.Join(parts, "\x1f")
}

// memberLink ties one flow ID to its member trip rows.
type memberLink struct {
	flowID string
	rows   []int
}

// buildLinkage assembles the flow → member-trip table, keyed by trip_id
// when the trip table carries one and by row position otherwise.
func buildLinkage(trips *table.Table, links []memberLink) (*table.Table, error) {
	tripIDs, errID := trips.Column(schema.FieldTripID)
	byID := errID == nil

	memberCol := ColTripRow
	if byID {
		memberCol = ColTripID
	}
	var rows [][]any
	for _, l := range links {
		for _, r := range l.rows {
			member := any(int64(r))
			if byID && !table.IsNull(tripIDs[r]) {
				member, _ = table.AsString(tripIDs[r])
			}
			rows = append(rows, []any{l.flowID, member})
		}
	}

	linkTable, err := table.FromRows([]string{ColFlowID, memberCol}, rows...)
	if err != nil {
		return nil, fmt.Errorf("flows: assemble linkage table: %w", err)
	}

	return linkTable, nil
}
