package importing

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/golondrina/report"
	"github.com/katalvlaran/golondrina/schema"
	"github.com/katalvlaran/golondrina/table"
)

// ApplyFieldCorrespondence renames and selects source columns so the result
// uses canonical Golondrina names.
//
// Resolution per canonical field: an explicit correspondence entry wins;
// otherwise a column already named canonically is used as-is. A required
// field that resolves to nothing is an error-level MISSING_REQUIRED_FIELD
// issue. Two source columns feeding one canonical name (an explicit mapping
// colliding with a same-named source column, or one source column mapped to
// two canonical fields) is DUPLICATE_FIELD_MAPPING at error level regardless
// of strictness, because it is ambiguous rather than incomplete; the
// ambiguous rename is skipped.
//
// Returns the aligned table, the correspondence actually applied
// (canonical → source, identity entries included), and the issue list.
func ApplyFieldCorrespondence(
	tbl *table.Table,
	sch *schema.TripSchema,
	corr map[string]string,
	opts Options,
) (*table.Table, map[string]string, []report.Issue, error) {
	if tbl == nil {
		return nil, nil, nil, ErrNilTable
	}
	if err := sch.Validate(); err != nil {
		return nil, nil, nil, err
	}

	var issues []report.Issue
	applied := make(map[string]string)
	renames := make(map[string]string)
	usedSources := make(map[string]string) // source column → canonical field

	for _, name := range sch.FieldNames() {
		spec := sch.Fields[name]
		src, mapped := corr[name]
		switch {
		case mapped && !tbl.HasColumn(src):
			if spec.Required {
				issues = append(issues, report.Issue{
					Level:       report.Error,
					Code:        report.CodeMissingRequiredField,
					Message:     fmt.Sprintf("required field %q maps to source column %q, which is absent", name, src),
					Field:       name,
					SourceField: src,
				})
			} else {
				issues = append(issues, report.Issue{
					Level:       report.Warning,
					Code:        report.CodeMissingSourceField,
					Message:     fmt.Sprintf("field %q maps to source column %q, which is absent; field dropped", name, src),
					Field:       name,
					SourceField: src,
				})
			}
		case mapped:
			if prior, dup := usedSources[src]; dup {
				issues = append(issues, report.Issue{
					Level:       report.Error,
					Code:        report.CodeDuplicateFieldMapping,
					Message:     fmt.Sprintf("source column %q is mapped to both %q and %q", src, prior, name),
					Field:       name,
					SourceField: src,
				})

				continue
			}
			if src != name && tbl.HasColumn(name) {
				issues = append(issues, report.Issue{
					Level:       report.Error,
					Code:        report.CodeDuplicateFieldMapping,
					Message:     fmt.Sprintf("canonical field %q resolves from both source column %q and an existing column %q", name, src, name),
					Field:       name,
					SourceField: src,
				})

				continue
			}
			usedSources[src] = name
			applied[name] = src
			if src != name {
				renames[src] = name
			}
		case tbl.HasColumn(name):
			// Already canonically named.
			usedSources[name] = name
			applied[name] = name
		case spec.Required:
			issues = append(issues, report.Issue{
				Level:   report.Error,
				Code:    report.CodeMissingRequiredField,
				Message: fmt.Sprintf("required field %q has no correspondence entry and no canonical column", name),
				Field:   name,
			})
		default:
			// Non-required and unresolved: dropped silently.
		}
	}

	// Correspondence entries naming fields outside the schema catalog.
	extraKeys := make([]string, 0)
	for name := range corr {
		if _, known := sch.Fields[name]; !known {
			extraKeys = append(extraKeys, name)
		}
	}
	sort.Strings(extraKeys)
	for _, name := range extraKeys {
		issues = append(issues, report.Issue{
			Level:       report.Warning,
			Code:        report.CodeFieldNotFound,
			Message:     fmt.Sprintf("correspondence names field %q, which is not in the schema catalog; ignored", name),
			Field:       name,
			SourceField: corr[name],
		})
	}

	out, err := tbl.Rename(renames)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("importing: applying field correspondence: %w", err)
	}
	out, err = selectColumns(out, sch, opts)
	if err != nil {
		return nil, nil, nil, err
	}

	return out, applied, issues, nil
}

// selectColumns keeps the canonical fields the policy asks for, plus extras
// when KeepExtraFields is set.
func selectColumns(tbl *table.Table, sch *schema.TripSchema, opts Options) (*table.Table, error) {
	selected := map[string]bool{}
	if opts.SelectedFields != nil {
		for _, name := range sch.Required {
			selected[name] = true
		}
		for _, name := range opts.SelectedFields {
			selected[name] = true
		}
	}

	var keep []string
	for _, col := range tbl.Columns() {
		_, canonical := sch.Fields[col]
		switch {
		case canonical && opts.SelectedFields != nil && !selected[col]:
			// Deselected optional canonical field.
		case canonical:
			keep = append(keep, col)
		case opts.KeepExtraFields:
			keep = append(keep, col)
		}
	}
	out, err := tbl.Select(keep)
	if err != nil {
		return nil, fmt.Errorf("importing: selecting columns: %w", err)
	}

	return out, nil
}
