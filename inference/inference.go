package inference

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/katalvlaran/golondrina/dataset"
	"github.com/katalvlaran/golondrina/geo"
	"github.com/katalvlaran/golondrina/importing"
	"github.com/katalvlaran/golondrina/report"
	"github.com/katalvlaran/golondrina/schema"
	"github.com/katalvlaran/golondrina/table"
)

// EventInferTrips is the metadata event stamped on the produced dataset.
const EventInferTrips = "infer_trips_from_traces"

// ErrInference indicates inference could not proceed or, under
// Options.Strict, that error-level issues were present.
var ErrInference = errors.New("inference: trip inference failed")

// ErrNilDataset indicates a nil input trace dataset.
var ErrNilDataset = errors.New("inference: trace dataset is nil")

// DefaultMaxIssues caps the issue list of one inference report.
const DefaultMaxIssues = 500

// Options controls one inference run.
type Options struct {
	// MaxTimeDeltaS is the largest gap in seconds between consecutive
	// points that still forms a trip; 0 disables the gap cut.
	MaxTimeDeltaS int64

	// DropInvalid skips pairs with unparseable or implausible coordinates.
	// When false such pairs become trips with null coordinate fields.
	DropInvalid bool

	// RequireValidatedTraces refuses unvalidated trace input. When false,
	// unvalidated input is a warning.
	RequireValidatedTraces bool

	// H3Resolution is the cell resolution of the derived H3 columns.
	H3Resolution int

	// Strict escalates error-level issues into a returned ErrInference.
	Strict bool

	// MaxIssues caps the emitted issue list.
	MaxIssues int

	// Logger, when non-nil, receives inference diagnostics.
	Logger *slog.Logger
}

// DefaultOptions returns the inference defaults: no gap cut, invalid pairs
// dropped, validated traces required, resolution 8.
func DefaultOptions() Options {
	return Options{
		DropInvalid:            true,
		RequireValidatedTraces: true,
		H3Resolution:           geo.DefaultResolution,
		MaxIssues:              DefaultMaxIssues,
	}
}

func (o Options) params() map[string]any {
	return map[string]any{
		"max_time_delta_s":         o.MaxTimeDeltaS,
		"drop_invalid":             o.DropInvalid,
		"require_validated_traces": o.RequireValidatedTraces,
		"h3_resolution":            o.H3Resolution,
		"strict":                   o.Strict,
	}
}

// Input carries the inference target context.
type Input struct {
	// TripSchema is the schema of the produced dataset; nil selects the
	// builtin trip schema.
	TripSchema *schema.TripSchema

	// ValueCorrespondence recodes values of the named produced columns,
	// for sources whose user identifiers or carried attributes need
	// standardization.
	ValueCorrespondence map[string]map[string]string

	// Context is caller-supplied provenance, kept verbatim.
	Context map[string]any
}

// tracePoint is one parsed trace row of a single user.
type tracePoint struct {
	at   time.Time
	lat  float64
	lon  float64
	okLL bool
}

// InferTripsFromTraces turns every consecutive point pair per user into one
// trip. Users are processed in sorted order and points in time order, so the
// produced table is deterministic apart from generated trip IDs.
func InferTripsFromTraces(traces *dataset.TraceDataset, in Input, opts Options) (*dataset.TripDataset, *report.InferenceReport, error) {
	if traces == nil || traces.Data == nil {
		return nil, nil, ErrNilDataset
	}
	if err := geo.CheckResolution(opts.H3Resolution); err != nil {
		return nil, nil, fmt.Errorf("inference: %w", err)
	}
	tripSchema := in.TripSchema
	if tripSchema == nil {
		tripSchema = schema.DefaultTripSchema()
	}

	b := report.NewBuilder(opts.MaxIssues)
	if !traces.IsValidated() {
		if opts.RequireValidatedTraces {
			b.Add(report.Issue{
				Level:   report.Error,
				Code:    report.CodeUnvalidatedInput,
				Message: "trace dataset is not validated; run trace validation first or unset RequireValidatedTraces",
			})
			rep := &report.InferenceReport{}
			*rep = *b.Build(map[string]any{"points_in": traces.Data.NumRows()}, opts.params())

			return nil, rep, fmt.Errorf("%w: input not validated", ErrInference)
		}
		b.Add(report.Issue{
			Level:   report.Warning,
			Code:    report.CodeUnvalidatedInput,
			Message: "inferring trips from an unvalidated trace dataset",
		})
	}

	byUser, droppedPoints, err := groupPoints(traces.Data, traces.Schema)
	if err != nil {
		return nil, nil, err
	}
	if droppedPoints > 0 {
		b.Add(report.Issue{
			Level:    report.Warning,
			Code:     report.CodeUnparseableTimestamp,
			Message:  fmt.Sprintf("%d points lacked a usable user or timestamp and were skipped", droppedPoints),
			RowCount: droppedPoints,
		})
	}

	users := make([]string, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	sort.Strings(users)

	names := []string{
		schema.FieldTripID,
		schema.FieldUserID,
		schema.FieldOriginTime,
		schema.FieldDestTime,
		schema.FieldOriginLat,
		schema.FieldOriginLon,
		schema.FieldDestLat,
		schema.FieldDestLon,
		schema.FieldOriginH3,
		schema.FieldDestH3,
		schema.FieldDistanceMeters,
		schema.FieldDurationSecs,
	}

	var rows [][]any
	skippedGap, skippedInvalid := 0, 0
	for _, user := range users {
		points := byUser[user]
		sort.SliceStable(points, func(i, j int) bool { return points[i].at.Before(points[j].at) })
		for i := 1; i < len(points); i++ {
			a, z := points[i-1], points[i]
			delta := z.at.Unix() - a.at.Unix()
			if opts.MaxTimeDeltaS > 0 && delta > opts.MaxTimeDeltaS {
				skippedGap++

				continue
			}
			if !a.okLL || !z.okLL {
				if opts.DropInvalid {
					skippedInvalid++

					continue
				}
				rows = append(rows, []any{
					uuid.NewString(), user, a.at, z.at,
					nil, nil, nil, nil, nil, nil, nil, int64(delta),
				})

				continue
			}
			originCell, _ := geo.CellString(a.lat, a.lon, opts.H3Resolution)
			destCell, _ := geo.CellString(z.lat, z.lon, opts.H3Resolution)
			rows = append(rows, []any{
				uuid.NewString(), user, a.at, z.at,
				a.lat, a.lon, z.lat, z.lon,
				originCell, destCell,
				geo.DistanceMeters(a.lat, a.lon, z.lat, z.lon),
				int64(delta),
			})
		}
	}

	trips, err := table.FromRows(names, rows...)
	if err != nil {
		return nil, nil, fmt.Errorf("inference: assemble trip table: %w", err)
	}

	for _, field := range sortedKeys(in.ValueCorrespondence) {
		mapping := in.ValueCorrespondence[field]
		if len(mapping) == 0 || !trips.HasColumn(field) {
			continue
		}
		next, changed, recodeErr := importing.RecodeColumn(trips, field, mapping)
		if recodeErr != nil {
			return nil, nil, fmt.Errorf("inference: recode %q: %w", field, recodeErr)
		}
		trips = next
		b.Add(report.Issue{
			Level:    report.Info,
			Code:     report.CodeValuesRecoded,
			Message:  fmt.Sprintf("field %q: %d values recoded", field, changed),
			Field:    field,
			RowCount: changed,
		})
	}

	summary := map[string]any{
		"points_in":            traces.Data.NumRows(),
		"trips_out":            trips.NumRows(),
		"users":                len(users),
		"pairs_skipped_gap":    skippedGap,
		"pairs_skipped_coords": skippedInvalid,
		"points_skipped":       droppedPoints,
	}
	rep := &report.InferenceReport{}
	*rep = *b.Build(summary, opts.params())
	if opts.Strict && !rep.Ok {
		return nil, rep, fmt.Errorf("%w: %d error issues", ErrInference, rep.CountByLevel(report.Error))
	}
	if opts.Logger != nil {
		opts.Logger.Info("trips inferred",
			"points", traces.Data.NumRows(), "trips", trips.NumRows(), "users", len(users))
	}

	ds := dataset.NewTripDataset(trips, tripSchema)
	ds.ValueCorrespondence = in.ValueCorrespondence
	ds.Provenance = buildProvenance(traces, in)
	ds = ds.WithEvent(dataset.NewEvent(EventInferTrips, rep.Parameters, rep.Summary))

	return ds, rep, nil
}

// groupPoints parses the trace table into per-user point slices. Points
// without a user or a parseable timestamp are counted and skipped.
func groupPoints(tbl *table.Table, sch *schema.TraceSchema) (map[string][]tracePoint, int, error) {
	users, err := tbl.Column(sch.UserIDField)
	if err != nil {
		return nil, 0, fmt.Errorf("inference: user column: %w", err)
	}
	times, err := tbl.Column(sch.TimeField)
	if err != nil {
		return nil, 0, fmt.Errorf("inference: time column: %w", err)
	}
	lats, errLat := tbl.Column(sch.LatField)
	lons, errLon := tbl.Column(sch.LonField)
	haveCoords := errLat == nil && errLon == nil

	byUser := make(map[string][]tracePoint)
	dropped := 0
	for i := 0; i < tbl.NumRows(); i++ {
		if table.IsNull(users[i]) {
			dropped++

			continue
		}
		t, ok := table.AsTime(times[i])
		if !ok {
			dropped++

			continue
		}
		p := tracePoint{at: t}
		if haveCoords {
			lat, okLat := table.AsFloat(lats[i])
			lon, okLon := table.AsFloat(lons[i])
			if okLat && okLon && geo.ValidLatLon(lat, lon) {
				p.lat, p.lon, p.okLL = lat, lon, true
			}
		}
		user := table.KeyString(users[i])
		byUser[user] = append(byUser[user], p)
	}

	return byUser, dropped, nil
}

// buildProvenance records the trace origin and caller context.
func buildProvenance(traces *dataset.TraceDataset, in Input) map[string]any {
	prov := map[string]any{
		"operation":       "infer_trips_from_traces",
		"source_trace_id": traces.ID,
	}
	for k, v := range in.Context {
		prov[k] = v
	}

	return prov
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
