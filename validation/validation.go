package validation

import (
	"fmt"

	"github.com/katalvlaran/golondrina/dataset"
	"github.com/katalvlaran/golondrina/geo"
	"github.com/katalvlaran/golondrina/report"
	"github.com/katalvlaran/golondrina/schema"
	"github.com/katalvlaran/golondrina/table"
)

// EventValidateTrips is the metadata event stamped by ValidateTrips.
const EventValidateTrips = "validate_trips"

// Run executes the enabled checks against tbl in their fixed order and
// returns the full report. Run never mutates the table and never stops at
// the first finding.
//
// Strictness changes the returned error only: with Options.Strict and any
// error-level issue, Run returns the complete report together with a
// wrapped ErrValidation. The issue list is identical either way.
func Run(tbl *table.Table, sch *schema.TripSchema, domainsEffective map[string][]string, opts Options) (*report.ValidationReport, error) {
	if tbl == nil {
		return nil, ErrNilTable
	}
	if err := sch.Validate(); err != nil {
		return nil, err
	}
	if opts.Domains == "" {
		opts.Domains = DomainsOff
	}

	b := report.NewBuilder(opts.MaxIssues)
	executed := make([]string, 0, 7)
	run := func(name string, enabled bool, check func() []report.Issue) {
		if !enabled {
			return
		}
		issues := check()
		b.AddAll(issues)
		executed = append(executed, name)
		if opts.Logger != nil {
			opts.Logger.Debug("validation check done",
				"check", name, "issues", len(issues))
		}
	}

	run("required_fields", opts.RequiredFields, func() []report.Issue {
		return CheckRequiredFields(tbl, sch, opts)
	})
	run("types_and_formats", opts.TypesAndFormats, func() []report.Issue {
		return CheckTypesAndFormats(tbl, sch, opts)
	})
	run("constraints", opts.Constraints, func() []report.Issue {
		return CheckConstraints(tbl, sch, opts)
	})
	run("domains", opts.Domains != DomainsOff, func() []report.Issue {
		return CheckDomains(tbl, sch, domainsEffective, opts)
	})
	run("temporal_consistency", opts.TemporalConsistency, func() []report.Issue {
		return CheckTemporalConsistency(tbl, sch, opts)
	})
	run("crossfield_consistency", opts.CrossfieldConsistency, func() []report.Issue {
		return CheckCrossfieldConsistency(tbl, sch, effectiveResolution(opts, nil), opts)
	})
	run("duplicates", opts.Duplicates, func() []report.Issue {
		return CheckDuplicates(tbl, opts)
	})

	rep := b.Build(BuildSummary(tbl, sch, executed), opts.params())
	if opts.Strict && !rep.Ok {
		return rep, fmt.Errorf("%w: %d error issues", ErrValidation, rep.CountByLevel(report.Error))
	}

	return rep, nil
}

// BuildSummary assembles the run-level summary: table shape, which checks
// executed, and which schema fields the table actually carries.
func BuildSummary(tbl *table.Table, sch *schema.TripSchema, executed []string) map[string]any {
	var checked []string
	for _, name := range sch.FieldNames() {
		if tbl.HasColumn(name) {
			checked = append(checked, name)
		}
	}

	return map[string]any{
		"rows":            tbl.NumRows(),
		"columns":         tbl.NumCols(),
		"checks_executed": executed,
		"checked_fields":  checked,
	}
}

// ValidateTrips runs the full validation over a trip dataset and returns a
// new dataset whose validated flag reflects the outcome, with a
// "validate_trips" event appended. The input dataset is not modified.
//
// The H3 resolution for the crossfield check resolves in order: explicit
// Options.H3Resolution, the resolution recorded at import, the package
// default.
func ValidateTrips(ds *dataset.TripDataset, opts Options) (*dataset.TripDataset, *report.ValidationReport, error) {
	if ds == nil {
		return nil, nil, ErrNilDataset
	}
	opts.H3Resolution = effectiveResolution(opts, ds)

	rep, err := Run(ds.Data, ds.Schema, ds.DomainsEffective, opts)
	if err != nil {
		return nil, rep, err
	}

	out := ds.WithValidated(rep.Ok).
		WithEvent(dataset.NewEvent(EventValidateTrips, rep.Parameters, rep.Summary))

	return out, rep, nil
}

// effectiveResolution resolves the crossfield H3 resolution: explicit option
// first, then the resolution recorded in the dataset metadata at import,
// then the package default.
func effectiveResolution(opts Options, ds *dataset.TripDataset) int {
	if opts.H3Resolution != 0 {
		return opts.H3Resolution
	}
	if ds != nil {
		if v, ok := ds.Metadata.Extra["h3_resolution"]; ok {
			switch n := v.(type) {
			case int:
				return n
			case int64:
				return int(n)
			case float64:
				return int(n)
			}
		}
	}

	return geo.DefaultResolution
}
