package cleaning

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/katalvlaran/golondrina/dataset"
	"github.com/katalvlaran/golondrina/geo"
	"github.com/katalvlaran/golondrina/report"
	"github.com/katalvlaran/golondrina/schema"
	"github.com/katalvlaran/golondrina/table"
)

// EventCleanTrips is the metadata event stamped by CleanTrips.
const EventCleanTrips = "clean_trips"

// ErrNilDataset indicates a nil input dataset.
var ErrNilDataset = errors.New("cleaning: dataset is nil")

// DefaultMaxIssues caps the issue list of one cleaning report.
const DefaultMaxIssues = 100

// Cleaning rule names, in execution order.
const (
	RuleNullsRequired    = "nulls_required"
	RuleNullsFields      = "nulls_fields"
	RuleInvalidLatLon    = "invalid_latlon"
	RuleInvalidH3        = "invalid_h3"
	RuleOriginAfterDest  = "origin_after_destination"
	RuleDuplicates       = "duplicates"
	RuleCategoricalValue = "categorical_values"
)

// Options selects which cleaning rules run. The zero value runs nothing;
// construct with DefaultOptions.
type Options struct {
	// DropNullRequired drops rows with a null in any schema-required field.
	DropNullRequired bool

	// NullFields lists extra columns whose null also drops the row.
	NullFields []string

	// DropInvalidLatLon drops rows whose present coordinates are not
	// plausible EPSG:4326 values.
	DropInvalidLatLon bool

	// DropInvalidH3 drops rows whose non-null H3 cells do not parse.
	DropInvalidH3 bool

	// DropOriginAfterDest drops rows whose origin time is after the
	// destination time.
	DropOriginAfterDest bool

	// DropDuplicates drops later copies of exact duplicates over
	// DuplicatesSubset (default key: user_id, origin_time, origin_h3,
	// destination_h3, intersected with the columns present).
	DropDuplicates bool

	// DuplicatesSubset is the duplicate-detection key tuple.
	DuplicatesSubset []string

	// DropOutOfDomain drops rows holding a categorical value outside the
	// field's domain. Off by default; import already standardizes values.
	DropOutOfDomain bool

	// MaxIssues caps the emitted issue list.
	MaxIssues int

	// Logger, when non-nil, receives per-rule diagnostics.
	Logger *slog.Logger
}

// DefaultOptions enables every structural rule and leaves the domain rule
// off.
func DefaultOptions() Options {
	return Options{
		DropNullRequired:    true,
		DropInvalidLatLon:   true,
		DropInvalidH3:       true,
		DropOriginAfterDest: true,
		DropDuplicates:      true,
		MaxIssues:           DefaultMaxIssues,
	}
}

func (o Options) params() map[string]any {
	out := map[string]any{
		"drop_null_required":     o.DropNullRequired,
		"drop_invalid_latlon":    o.DropInvalidLatLon,
		"drop_invalid_h3":        o.DropInvalidH3,
		"drop_origin_after_dest": o.DropOriginAfterDest,
		"drop_duplicates":        o.DropDuplicates,
		"drop_out_of_domain":     o.DropOutOfDomain,
	}
	if len(o.NullFields) > 0 {
		out["null_fields"] = append([]string(nil), o.NullFields...)
	}
	if len(o.DuplicatesSubset) > 0 {
		out["duplicates_subset"] = append([]string(nil), o.DuplicatesSubset...)
	}

	return out
}

// rule is one drop predicate evaluated over the rows still kept.
type rule struct {
	name string
	drop func(row int) bool
}

// CleanTrips applies the enabled rules in order and returns a new dataset
// without the rejected rows. Each dropped row counts toward the first rule
// that rejected it. The returned dataset has its validated flag cleared.
func CleanTrips(ds *dataset.TripDataset, opts Options) (*dataset.TripDataset, *report.OperationReport, error) {
	if ds == nil {
		return nil, nil, ErrNilDataset
	}
	tbl, sch := ds.Data, ds.Schema

	rules := buildRules(tbl, sch, opts)

	keep := make([]bool, tbl.NumRows())
	for i := range keep {
		keep[i] = true
	}
	dropped := make(map[string]int, len(rules))
	order := make([]string, 0, len(rules))
	for _, r := range rules {
		order = append(order, r.name)
		for i := range keep {
			if keep[i] && r.drop(i) {
				keep[i] = false
				dropped[r.name]++
			}
		}
	}

	b := report.NewBuilder(opts.MaxIssues)
	total := 0
	for _, name := range order {
		n := dropped[name]
		if n == 0 {
			continue
		}
		total += n
		b.Add(report.Issue{
			Level:    report.Info,
			Code:     report.CodeRowsDropped,
			Message:  fmt.Sprintf("rule %q dropped %d rows", name, n),
			RowCount: n,
			Details:  map[string]any{"rule": name},
		})
		if opts.Logger != nil {
			opts.Logger.Debug("cleaning rule applied", "rule", name, "dropped", n)
		}
	}

	summary := map[string]any{
		"rows_in":         tbl.NumRows(),
		"rows_out":        tbl.NumRows() - total,
		"rows_dropped":    total,
		"dropped_by_rule": dropped,
		"rules_executed":  order,
	}
	rep := b.Build(summary, opts.params())

	cleaned, err := tbl.FilterMask(keep)
	if err != nil {
		return nil, nil, fmt.Errorf("cleaning: apply mask: %w", err)
	}

	out := ds.WithData(cleaned).
		WithEvent(dataset.NewEvent(EventCleanTrips, rep.Parameters, rep.Summary))

	return out, rep, nil
}

// buildRules assembles the enabled rules in their fixed order, bound to the
// columns present in tbl.
func buildRules(tbl *table.Table, sch *schema.TripSchema, opts Options) []rule {
	var rules []rule

	if opts.DropNullRequired && sch != nil {
		var cols [][]any
		for _, name := range sch.Required {
			if c, err := tbl.Column(name); err == nil {
				cols = append(cols, c)
			}
		}
		rules = append(rules, rule{RuleNullsRequired, func(row int) bool {
			for _, c := range cols {
				if table.IsNull(c[row]) {
					return true
				}
			}

			return false
		}})
	}

	if len(opts.NullFields) > 0 {
		var cols [][]any
		for _, name := range opts.NullFields {
			if c, err := tbl.Column(name); err == nil {
				cols = append(cols, c)
			}
		}
		rules = append(rules, rule{RuleNullsFields, func(row int) bool {
			for _, c := range cols {
				if table.IsNull(c[row]) {
					return true
				}
			}

			return false
		}})
	}

	if opts.DropInvalidLatLon {
		pairs := [][2]string{
			{schema.FieldOriginLat, schema.FieldOriginLon},
			{schema.FieldDestLat, schema.FieldDestLon},
		}
		var latCols, lonCols [][]any
		for _, p := range pairs {
			latC, errLat := tbl.Column(p[0])
			lonC, errLon := tbl.Column(p[1])
			if errLat == nil && errLon == nil {
				latCols = append(latCols, latC)
				lonCols = append(lonCols, lonC)
			}
		}
		rules = append(rules, rule{RuleInvalidLatLon, func(row int) bool {
			for i := range latCols {
				if table.IsNull(latCols[i][row]) || table.IsNull(lonCols[i][row]) {
					continue
				}
				lat, okLat := table.AsFloat(latCols[i][row])
				lon, okLon := table.AsFloat(lonCols[i][row])
				if !okLat || !okLon || !geo.ValidLatLon(lat, lon) {
					return true
				}
			}

			return false
		}})
	}

	if opts.DropInvalidH3 {
		var cols [][]any
		for _, name := range []string{schema.FieldOriginH3, schema.FieldDestH3} {
			if c, err := tbl.Column(name); err == nil {
				cols = append(cols, c)
			}
		}
		rules = append(rules, rule{RuleInvalidH3, func(row int) bool {
			for _, c := range cols {
				if table.IsNull(c[row]) {
					continue
				}
				s, _ := table.AsString(c[row])
				if !geo.ValidCell(s) {
					return true
				}
			}

			return false
		}})
	}

	if opts.DropOriginAfterDest {
		origins, errO := tbl.Column(schema.FieldOriginTime)
		dests, errD := tbl.Column(schema.FieldDestTime)
		if errO == nil && errD == nil {
			rules = append(rules, rule{RuleOriginAfterDest, func(row int) bool {
				ot, okO := table.AsTime(origins[row])
				dt, okD := table.AsTime(dests[row])

				return okO && okD && ot.After(dt)
			}})
		}
	}

	if opts.DropDuplicates {
		candidates := opts.DuplicatesSubset
		if len(candidates) == 0 {
			candidates = []string{
				schema.FieldUserID,
				schema.FieldOriginTime,
				schema.FieldOriginH3,
				schema.FieldDestH3,
			}
		}
		var key []string
		for _, name := range candidates {
			if tbl.HasColumn(name) {
				key = append(key, name)
			}
		}
		if len(key) > 0 {
			if mask, err := tbl.DistinctMask(key); err == nil {
				rules = append(rules, rule{RuleDuplicates, func(row int) bool {
					return !mask[row]
				}})
			}
		}
	}

	if opts.DropOutOfDomain && sch != nil {
		type domCol struct {
			cells []any
			dom   *schema.DomainSpec
		}
		var cols []domCol
		for _, name := range sch.FieldNames() {
			spec := sch.Fields[name]
			if spec.DType != schema.Categorical || spec.Domain == nil {
				continue
			}
			if c, err := tbl.Column(name); err == nil {
				cols = append(cols, domCol{c, spec.Domain})
			}
		}
		rules = append(rules, rule{RuleCategoricalValue, func(row int) bool {
			for _, dc := range cols {
				if table.IsNull(dc.cells[row]) {
					continue
				}
				s, _ := table.AsString(dc.cells[row])
				if !dc.dom.Contains(dc.dom.Canonical(s)) {
					return true
				}
			}

			return false
		}})
	}

	return rules
}
