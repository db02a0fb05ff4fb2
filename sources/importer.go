package sources

import (
	"fmt"

	"github.com/katalvlaran/golondrina/dataset"
	"github.com/katalvlaran/golondrina/importing"
	"github.com/katalvlaran/golondrina/report"
	"github.com/katalvlaran/golondrina/schema"
	"github.com/katalvlaran/golondrina/table"
)

// ImportTripsFromSource imports tbl through the named profile of reg,
// merging the profile's correspondences with overrides. Precedence is
// caller over profile over builtin default: override entries shadow profile
// entries key by key, and an explicit override schema or resolution wins.
func ImportTripsFromSource(reg *Registry, profileName string, tbl *table.Table, overrides importing.Input, opts importing.Options) (*dataset.TripDataset, *report.ImportReport, error) {
	p, err := reg.Get(profileName)
	if err != nil {
		return nil, nil, err
	}

	sch := p.Schema
	if sch == nil {
		sch = schema.DefaultTripSchema()
	}

	if p.Preprocess != nil {
		next, err := p.Preprocess(tbl)
		if err != nil {
			return nil, nil, fmt.Errorf("sources: preprocess %q: %w", p.Name, err)
		}
		tbl = next
	}

	in := importing.Input{
		SourceName:          overrides.SourceName,
		FieldCorrespondence: mergeFields(p.FieldCorrespondence, overrides.FieldCorrespondence),
		ValueCorrespondence: mergeValues(p.ValueCorrespondence, overrides.ValueCorrespondence),
		Provenance:          overrides.Provenance,
		H3Resolution:        overrides.H3Resolution,
	}
	if in.SourceName == "" {
		in.SourceName = p.Name
	}
	if in.H3Resolution == 0 {
		in.H3Resolution = p.H3Resolution
	}

	return importing.ImportTrips(tbl, sch, in, opts)
}

func mergeFields(base, over map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}

	return out
}

func mergeValues(base, over map[string]map[string]string) map[string]map[string]string {
	out := make(map[string]map[string]string, len(base)+len(over))
	for field, m := range base {
		out[field] = cloneValues(m)
	}
	for field, m := range over {
		dst := out[field]
		if dst == nil {
			dst = make(map[string]string, len(m))
			out[field] = dst
		}
		for k, v := range m {
			dst[k] = v
		}
	}

	return out
}
