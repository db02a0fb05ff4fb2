package importing

import (
	"fmt"

	"github.com/katalvlaran/golondrina/dataset"
	"github.com/katalvlaran/golondrina/geo"
	"github.com/katalvlaran/golondrina/report"
	"github.com/katalvlaran/golondrina/schema"
	"github.com/katalvlaran/golondrina/table"
)

// EventImportTrips is the metadata event name stamped by ImportTrips.
const EventImportTrips = "import_trips"

// ImportTrips converts an external trip table into a canonical TripDataset:
// field correspondence, categorical value standardization, H3 derivation,
// and metadata assembly, in that order.
//
// Non-strict, the call always returns a (possibly imperfect) dataset plus an
// ImportReport whose Ok reflects the absence of error-level issues. With
// Options.Strict set and any error-level issue raised, the dataset is
// withheld and ErrImport returned — the report still carries the identical
// issue set, so strictness changes the escalation, never the findings.
func ImportTrips(tbl *table.Table, sch *schema.TripSchema, in Input, opts Options) (*dataset.TripDataset, *report.ImportReport, error) {
	if tbl == nil {
		return nil, nil, ErrNilTable
	}
	if err := sch.Validate(); err != nil {
		return nil, nil, err
	}
	resolution := in.H3Resolution
	if resolution == 0 {
		resolution = geo.DefaultResolution
	}
	if err := geo.CheckResolution(resolution); err != nil {
		return nil, nil, err
	}

	builder := report.NewBuilder(opts.MaxIssues)

	std, applied, fieldIssues, err := ApplyFieldCorrespondence(tbl, sch, in.FieldCorrespondence, opts)
	if err != nil {
		return nil, nil, err
	}
	builder.AddAll(fieldIssues)

	norm, domainsEffective, appliedValues, valueIssues, err := StandardizeCategoricalValues(std, sch, in.ValueCorrespondence, opts)
	if err != nil {
		return nil, nil, err
	}
	builder.AddAll(valueIssues)

	norm, derived, err := deriveH3Columns(norm, resolution)
	if err != nil {
		return nil, nil, err
	}

	if opts.Logger != nil {
		opts.Logger.Debug("import_trips standardized",
			"source", in.SourceName, "rows", norm.NumRows(), "issues", builder.Len())
	}

	meta := BuildImportMetadata(sch, in.SourceName, applied, appliedValues, domainsEffective)
	meta["h3_resolution"] = resolution
	if len(derived) > 0 {
		meta["h3_derived_fields"] = derived
	}

	summary := map[string]any{
		"rows":             norm.NumRows(),
		"columns":          norm.NumCols(),
		"fields_mapped":    len(applied),
		"domains_extended": extendedCounts(sch, domainsEffective),
	}
	params := opts.params()
	params["h3_resolution"] = resolution
	params["source_name"] = in.SourceName

	rep := &report.ImportReport{
		Report:              *builder.Build(summary, params),
		FieldCorrespondence: applied,
		ValueCorrespondence: appliedValues,
		SchemaVersion:       sch.Version,
	}
	if opts.Strict && builder.HasError() {
		return nil, rep, fmt.Errorf("%w: blocking issues under strict policy", ErrImport)
	}

	ds := dataset.NewTripDataset(norm, sch)
	ds.FieldCorrespondence = applied
	ds.ValueCorrespondence = appliedValues
	ds.DomainsEffective = domainsEffective
	ds.Provenance = buildProvenance(in)
	ds.Metadata.Extra = meta
	ds = ds.WithEvent(dataset.NewEvent(EventImportTrips, params, summary))

	return ds, rep, nil
}

// deriveH3Columns fills origin_h3/destination_h3 from the lat/lon pairs at
// the recorded resolution when the cell column is absent. Rows with null or
// implausible coordinates get a null cell. Returns the names derived.
func deriveH3Columns(tbl *table.Table, resolution int) (*table.Table, []string, error) {
	pairs := []struct{ cell, lat, lon string }{
		{schema.FieldOriginH3, schema.FieldOriginLat, schema.FieldOriginLon},
		{schema.FieldDestH3, schema.FieldDestLat, schema.FieldDestLon},
	}
	out := tbl
	var derived []string
	for _, p := range pairs {
		if out.HasColumn(p.cell) || !out.HasColumn(p.lat) || !out.HasColumn(p.lon) {
			continue
		}
		lats, err := out.Column(p.lat)
		if err != nil {
			return nil, nil, err
		}
		lons, err := out.Column(p.lon)
		if err != nil {
			return nil, nil, err
		}
		cells := make([]any, len(lats))
		for i := range lats {
			lat, okLat := table.AsFloat(lats[i])
			lon, okLon := table.AsFloat(lons[i])
			if !okLat || !okLon || !geo.ValidLatLon(lat, lon) {
				continue
			}
			cell, err := geo.CellString(lat, lon, resolution)
			if err != nil {
				return nil, nil, err
			}
			cells[i] = cell
		}
		out, err = out.WithColumn(p.cell, cells)
		if err != nil {
			return nil, nil, err
		}
		derived = append(derived, p.cell)
	}

	return out, derived, nil
}

// extendedCounts summarizes, per categorical field, how many controlled
// extensions the import registered beyond the base domain.
func extendedCounts(sch *schema.TripSchema, domainsEffective map[string][]string) map[string]int {
	out := make(map[string]int)
	for _, field := range sortedKeys(domainsEffective) {
		spec, ok := sch.Fields[field]
		if !ok || spec.Domain == nil {
			continue
		}
		if extra := len(domainsEffective[field]) - len(spec.Domain.Values); extra > 0 {
			out[field] = extra
		}
	}

	return out
}

func buildProvenance(in Input) map[string]any {
	out := make(map[string]any, len(in.Provenance)+1)
	for k, v := range in.Provenance {
		out[k] = v
	}
	if in.SourceName != "" {
		out["source_name"] = in.SourceName
	}

	return out
}
