package traces

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/katalvlaran/golondrina/dataset"
	"github.com/katalvlaran/golondrina/report"
	"github.com/katalvlaran/golondrina/schema"
	"github.com/katalvlaran/golondrina/table"
)

// EventImportTraces is the metadata event stamped by ImportTraces.
const EventImportTraces = "import_traces"

// ErrImport indicates error-level issues were present and Options.Strict
// was set.
var ErrImport = errors.New("traces: import failed")

// ErrNilTable indicates a nil input table.
var ErrNilTable = errors.New("traces: table is nil")

// ErrNilDataset indicates a nil input dataset.
var ErrNilDataset = errors.New("traces: dataset is nil")

// DefaultMaxIssues caps the issue list of one trace operation report.
const DefaultMaxIssues = 200

// Options controls trace import and validation.
type Options struct {
	// Strict escalates error-level issues into a returned error.
	Strict bool

	// MaxIssues caps the emitted issue list.
	MaxIssues int

	// SampleRowsPerIssue bounds row samples carried in Issue.Details.
	SampleRowsPerIssue int

	// Preprocess, when non-nil, runs on the standardized table before the
	// dataset is assembled (sorting, column derivation, row trimming).
	Preprocess func(*table.Table) (*table.Table, error)

	// Logger, when non-nil, receives operation diagnostics.
	Logger *slog.Logger
}

// DefaultOptions returns the trace defaults: non-strict, issue cap 200.
func DefaultOptions() Options {
	return Options{MaxIssues: DefaultMaxIssues, SampleRowsPerIssue: 5}
}

func (o Options) params() map[string]any {
	return map[string]any{
		"strict":                o.Strict,
		"max_issues":            o.MaxIssues,
		"sample_rows_per_issue": o.SampleRowsPerIssue,
		"preprocess":            o.Preprocess != nil,
	}
}

// Input carries the per-source import context.
type Input struct {
	// SourceName labels the provider in provenance and reports.
	SourceName string

	// FieldCorrespondence maps canonical trace field names to source
	// column names.
	FieldCorrespondence map[string]string

	// Provenance is caller-supplied origin context, kept verbatim.
	Provenance map[string]any

	// AuxTables are side tables carried along for later enrichment or
	// inference context (antenna catalogs, stop registries).
	AuxTables map[string]*table.Table
}

// ImportTraces standardizes a raw point table onto sch and wraps it into a
// TraceDataset. Column renames follow in.FieldCorrespondence; a required
// field that resolves to no column is an error-level issue.
func ImportTraces(tbl *table.Table, sch *schema.TraceSchema, in Input, opts Options) (*dataset.TraceDataset, *report.ImportReport, error) {
	if tbl == nil {
		return nil, nil, ErrNilTable
	}
	if err := sch.Validate(); err != nil {
		return nil, nil, err
	}

	b := report.NewBuilder(opts.MaxIssues)
	applied := make(map[string]string)

	renames := make(map[string]string)
	usedSource := make(map[string]string)
	for _, canonical := range sortedKeys(in.FieldCorrespondence) {
		src := in.FieldCorrespondence[canonical]
		switch {
		case !tbl.HasColumn(src):
			b.Add(report.Issue{
				Level:       report.Warning,
				Code:        report.CodeMissingSourceField,
				Message:     fmt.Sprintf("source column %q not present; mapping to %q skipped", src, canonical),
				Field:       canonical,
				SourceField: src,
			})
		case usedSource[src] != "":
			b.Add(report.Issue{
				Level:       report.Error,
				Code:        report.CodeDuplicateFieldMapping,
				Message:     fmt.Sprintf("source column %q maps to both %q and %q", src, usedSource[src], canonical),
				Field:       canonical,
				SourceField: src,
			})
		case src != canonical && tbl.HasColumn(canonical):
			b.Add(report.Issue{
				Level:       report.Error,
				Code:        report.CodeDuplicateFieldMapping,
				Message:     fmt.Sprintf("cannot rename %q to %q: column already exists", src, canonical),
				Field:       canonical,
				SourceField: src,
			})
		default:
			usedSource[src] = canonical
			applied[canonical] = src
			if src != canonical {
				renames[src] = canonical
			}
		}
	}
	std := tbl
	if len(renames) > 0 {
		var err error
		if std, err = tbl.Rename(renames); err != nil {
			return nil, nil, fmt.Errorf("traces: rename: %w", err)
		}
	}

	for _, name := range sch.RequiredFields() {
		if !std.HasColumn(name) {
			b.Add(report.Issue{
				Level:   report.Error,
				Code:    report.CodeMissingRequiredField,
				Message: fmt.Sprintf("required trace field %q is missing", name),
				Field:   name,
			})
		}
	}

	if opts.Preprocess != nil {
		next, err := opts.Preprocess(std)
		if err != nil {
			return nil, nil, fmt.Errorf("traces: preprocess: %w", err)
		}
		std = next
	}

	summary := map[string]any{
		"rows":          std.NumRows(),
		"columns":       std.NumCols(),
		"fields_mapped": len(applied),
		"aux_tables":    len(in.AuxTables),
	}
	params := opts.params()
	if in.SourceName != "" {
		params["source_name"] = in.SourceName
	}
	rep := &report.ImportReport{
		FieldCorrespondence: applied,
		SchemaVersion:       sch.Version,
	}
	rep.Report = *b.Build(summary, params)
	if opts.Strict && rep.HasError() {
		return nil, rep, fmt.Errorf("%w: %d error issues", ErrImport, rep.CountByLevel(report.Error))
	}

	ds := dataset.NewTraceDataset(std, sch)
	ds.Provenance = buildProvenance(in)
	if len(in.AuxTables) > 0 {
		ds.AuxTables = make(map[string]*table.Table, len(in.AuxTables))
		names := make([]string, 0, len(in.AuxTables))
		for name, aux := range in.AuxTables {
			ds.AuxTables[name] = aux
			names = append(names, name)
		}
		sort.Strings(names)
		ds.Metadata.Extra = map[string]any{"aux_tables": names}
	}
	ds = ds.WithEvent(dataset.NewEvent(EventImportTraces, rep.Parameters, rep.Summary))
	if opts.Logger != nil {
		opts.Logger.Info("traces imported",
			"source", in.SourceName, "rows", std.NumRows(), "fields_mapped", len(applied))
	}

	return ds, rep, nil
}

func buildProvenance(in Input) map[string]any {
	prov := make(map[string]any, len(in.Provenance)+2)
	for k, v := range in.Provenance {
		prov[k] = v
	}
	if in.SourceName != "" {
		prov["source_name"] = in.SourceName
	}
	prov["imported_at"] = time.Now().UTC().Format(time.RFC3339)

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
