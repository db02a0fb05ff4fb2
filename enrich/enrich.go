package enrich

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/katalvlaran/golondrina/dataset"
	"github.com/katalvlaran/golondrina/report"
	"github.com/katalvlaran/golondrina/table"
)

// EventEnrichTrips is the metadata event stamped by EnrichTrips.
const EventEnrichTrips = "enrich_trips"

// ErrEnrich indicates error-level issues were present and Options.Strict was
// set.
var ErrEnrich = errors.New("enrich: enrichment failed")

// ErrNilDataset indicates a nil input dataset.
var ErrNilDataset = errors.New("enrich: dataset is nil")

// ErrNilTable indicates a nil enrichment table.
var ErrNilTable = errors.New("enrich: enrichment table is nil")

// ErrNoKeys indicates an empty join key mapping.
var ErrNoKeys = errors.New("enrich: no join keys given")

// How selects the join flavor.
type How string

// Join flavors.
const (
	// LeftJoin keeps every trip; unmatched trips get nulls in the added
	// columns.
	LeftJoin How = "left"

	// InnerJoin keeps only trips with a match in the enrichment table.
	InnerJoin How = "inner"
)

// DefaultMaxIssues caps the issue list of one enrichment report.
const DefaultMaxIssues = 100

// Options controls one enrichment join.
type Options struct {
	// Keys maps trip columns to the enrichment columns they join on. All
	// pairs must match for two rows to join.
	Keys map[string]string

	// AddFields names the enrichment columns to append. Empty selects every
	// non-key enrichment column.
	AddFields []string

	// How selects left or inner join; empty means left.
	How How

	// RequireUniqueKeys makes duplicate enrichment keys an error. When
	// false they are a warning and the first occurrence wins.
	RequireUniqueKeys bool

	// AllowOverwrite lets an added column replace an existing trip column
	// of the same name. When false the collision is skipped with a warning.
	AllowOverwrite bool

	// Strict escalates error-level issues into a returned ErrEnrich.
	Strict bool

	// MaxIssues caps the emitted issue list.
	MaxIssues int

	// Logger, when non-nil, receives join diagnostics.
	Logger *slog.Logger
}

// DefaultOptions returns a left join requiring unique enrichment keys.
func DefaultOptions() Options {
	return Options{
		How:               LeftJoin,
		RequireUniqueKeys: true,
		MaxIssues:         DefaultMaxIssues,
	}
}

func (o Options) params() map[string]any {
	keys := make(map[string]any, len(o.Keys))
	for k, v := range o.Keys {
		keys[k] = v
	}
	out := map[string]any{
		"how":                 string(o.how()),
		"keys":                keys,
		"require_unique_keys": o.RequireUniqueKeys,
		"allow_overwrite":     o.AllowOverwrite,
		"strict":              o.Strict,
	}
	if len(o.AddFields) > 0 {
		out["add_fields"] = append([]string(nil), o.AddFields...)
	}

	return out
}

func (o Options) how() How {
	if o.How == "" {
		return LeftJoin
	}

	return o.How
}

// EnrichTrips joins ext onto the trip table per opts and returns a new
// dataset carrying the added columns. The validated flag of the result is
// always cleared.
func EnrichTrips(ds *dataset.TripDataset, ext *table.Table, opts Options) (*dataset.TripDataset, *report.OperationReport, error) {
	if ds == nil {
		return nil, nil, ErrNilDataset
	}
	if ext == nil {
		return nil, nil, ErrNilTable
	}
	if len(opts.Keys) == 0 {
		return nil, nil, ErrNoKeys
	}
	how := opts.how()
	if how != LeftJoin && how != InnerJoin {
		return nil, nil, fmt.Errorf("enrich: unknown join flavor %q", opts.How)
	}

	b := report.NewBuilder(opts.MaxIssues)
	tripKeys := sortedKeys(opts.Keys)

	tripCols := make([][]any, 0, len(tripKeys))
	extCols := make([][]any, 0, len(tripKeys))
	for _, tk := range tripKeys {
		tc, err := ds.Data.Column(tk)
		if err != nil {
			return nil, nil, fmt.Errorf("enrich: trip key column: %w", err)
		}
		ec, err := ext.Column(opts.Keys[tk])
		if err != nil {
			return nil, nil, fmt.Errorf("enrich: enrichment key column: %w", err)
		}
		tripCols = append(tripCols, tc)
		extCols = append(extCols, ec)
	}

	// index enrichment rows by composite key, first occurrence wins
	index := make(map[string]int, ext.NumRows())
	dupKeys := 0
	for row := 0; row < ext.NumRows(); row++ {
		key := compositeKey(extCols, row)
		if _, seen := index[key]; seen {
			dupKeys++

			continue
		}
		index[key] = row
	}
	if dupKeys > 0 {
		level := report.Warning
		if opts.RequireUniqueKeys {
			level = report.Error
		}
		b.Add(report.Issue{
			Level:    level,
			Code:     report.CodeDuplicateEnrichKeys,
			Message:  fmt.Sprintf("enrichment table has %d duplicate key rows; first occurrence wins", dupKeys),
			RowCount: dupKeys,
		})
	}

	addFields := opts.AddFields
	if len(addFields) == 0 {
		keyCols := make(map[string]struct{}, len(opts.Keys))
		for _, ec := range opts.Keys {
			keyCols[ec] = struct{}{}
		}
		for _, name := range ext.Columns() {
			if _, isKey := keyCols[name]; !isKey {
				addFields = append(addFields, name)
			}
		}
	}

	var kept []string
	for _, name := range addFields {
		if !ext.HasColumn(name) {
			b.Add(report.Issue{
				Level:   report.Warning,
				Code:    report.CodeFieldNotFound,
				Message: fmt.Sprintf("enrichment column %q not found; skipped", name),
				Field:   name,
			})

			continue
		}
		if ds.Data.HasColumn(name) {
			if !opts.AllowOverwrite {
				b.Add(report.Issue{
					Level:   report.Warning,
					Code:    report.CodeColumnOverwritten,
					Message: fmt.Sprintf("trip column %q already exists; enrichment skipped (overwrite disabled)", name),
					Field:   name,
				})

				continue
			}
			b.Add(report.Issue{
				Level:   report.Warning,
				Code:    report.CodeColumnOverwritten,
				Message: fmt.Sprintf("trip column %q overwritten by enrichment", name),
				Field:   name,
			})
		}
		kept = append(kept, name)
	}

	// resolve matches per trip row
	rows := ds.Data.NumRows()
	match := make([]int, rows)
	matched := 0
	for i := 0; i < rows; i++ {
		if extRow, ok := index[compositeKey(tripCols, i)]; ok {
			match[i] = extRow
			matched++
		} else {
			match[i] = -1
		}
	}

	out := ds.Data
	var err error
	if how == InnerJoin {
		mask := make([]bool, rows)
		for i, m := range match {
			mask[i] = m >= 0
		}
		if out, err = out.FilterMask(mask); err != nil {
			return nil, nil, fmt.Errorf("enrich: inner join subset: %w", err)
		}
		compact := match[:0]
		for _, m := range match {
			if m >= 0 {
				compact = append(compact, m)
			}
		}
		match = compact
	}

	for _, name := range kept {
		src, _ := ext.Column(name)
		col := make([]any, len(match))
		for i, m := range match {
			if m >= 0 {
				col[i] = src[m]
			}
		}
		if out, err = out.WithColumn(name, col); err != nil {
			return nil, nil, fmt.Errorf("enrich: add column %q: %w", name, err)
		}
	}

	summary := map[string]any{
		"rows_in":        rows,
		"rows_out":       out.NumRows(),
		"rows_matched":   matched,
		"columns_added":  kept,
		"duplicate_keys": dupKeys,
	}
	rep := b.Build(summary, opts.params())
	if opts.Strict && !rep.Ok {
		return nil, rep, fmt.Errorf("%w: %d error issues", ErrEnrich, rep.CountByLevel(report.Error))
	}
	if opts.Logger != nil {
		opts.Logger.Info("trips enriched",
			"how", string(how), "matched", matched, "columns", len(kept))
	}

	res := ds.WithData(out).
		WithEvent(dataset.NewEvent(EventEnrichTrips, rep.Parameters, rep.Summary))

	return res, rep, nil
}

// compositeKey renders the key tuple of one row; nulls render distinctly so
// they join only with nulls.
func compositeKey(cols [][]any, row int) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = table.KeyString(c[row])
	}

	return strings.Join(parts, "\x1f")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
