package flows

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/katalvlaran/golondrina/dataset"
	"github.com/katalvlaran/golondrina/filtering"
	"github.com/katalvlaran/golondrina/report"
	"github.com/katalvlaran/golondrina/table"
)

// EventFilterFlows is the metadata event stamped by FilterFlows.
const EventFilterFlows = "filter_flows"

// ErrNilFlows indicates a nil input flow dataset.
var ErrNilFlows = errors.New("flows: flow dataset is nil")

// FilterOptions bundles the predicates of one flow filter call.
type FilterOptions struct {
	// Conditions are per-column predicates over the flow table, all of
	// which must match (count thresholds, segment values, time buckets).
	Conditions []filtering.Condition

	// Cells, when non-empty, keeps flows whose targeted cell is in the set.
	Cells []string

	// CellTarget selects which flow end Cells applies to; defaults to
	// either end.
	CellTarget filtering.Target

	// DropLinkage discards the flow-to-trips table instead of trimming it.
	DropLinkage bool

	// Strict escalates predicate problems into a returned ErrFlows.
	Strict bool

	// MaxIssues caps the emitted issue list.
	MaxIssues int

	// Logger, when non-nil, receives filter diagnostics.
	Logger *slog.Logger
}

// DefaultFilterOptions returns an empty, non-strict pass-through filter.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{MaxIssues: DefaultMaxIssues}
}

func (o FilterOptions) params() map[string]any {
	out := map[string]any{
		"conditions":   len(o.Conditions),
		"strict":       o.Strict,
		"drop_linkage": o.DropLinkage,
	}
	if len(o.Cells) > 0 {
		out["cells"] = len(o.Cells)
		out["cell_target"] = string(o.cellTarget())
	}

	return out
}

func (o FilterOptions) cellTarget() filtering.Target {
	if o.CellTarget == "" {
		return filtering.TargetEither
	}

	return o.CellTarget
}

// FilterFlows returns a new flow dataset holding the flows that satisfy
// every predicate of opts, with the flow-to-trips linkage trimmed to the
// surviving flows unless DropLinkage is set.
func FilterFlows(fd *dataset.FlowDataset, opts FilterOptions) (*dataset.FlowDataset, *report.OperationReport, error) {
	if fd == nil || fd.Flows == nil {
		return nil, nil, ErrNilFlows
	}

	b := report.NewBuilder(opts.MaxIssues)

	mask, issues, err := filtering.Mask(fd.Flows, filtering.Options{
		Conditions: opts.Conditions,
		Strict:     opts.Strict,
	})
	if err != nil {
		return nil, nil, err
	}
	b.AddAll(issues)

	if len(opts.Cells) > 0 {
		cellIssues := applyCellFilter(fd.Flows, mask, opts)
		b.AddAll(cellIssues)
	}

	kept := 0
	for _, keep := range mask {
		if keep {
			kept++
		}
	}

	summary := map[string]any{
		"flows_in":      fd.Flows.NumRows(),
		"flows_out":     kept,
		"flows_dropped": fd.Flows.NumRows() - kept,
	}
	rep := b.Build(summary, opts.params())
	if opts.Strict && !rep.Ok {
		return nil, rep, fmt.Errorf("%w: %d error issues", ErrFlows, rep.CountByLevel(report.Error))
	}

	filtered, err := fd.Flows.FilterMask(mask)
	if err != nil {
		return nil, nil, fmt.Errorf("flows: apply mask: %w", err)
	}

	out := fd.Clone()
	out.ID = uuid.NewString()
	out.Flows = filtered
	out.FlowToTrips = nil
	if !opts.DropLinkage && fd.FlowToTrips != nil {
		trimmed, trimErr := trimLinkage(fd.FlowToTrips, filtered)
		if trimErr != nil {
			return nil, nil, trimErr
		}
		out.FlowToTrips = trimmed
	}
	out.Metadata = out.Metadata.WithEvent(dataset.NewEvent(EventFilterFlows, rep.Parameters, rep.Summary))
	if opts.Logger != nil {
		opts.Logger.Info("flows filtered", "flows_in", fd.Flows.NumRows(), "flows_out", kept)
	}

	return out, rep, nil
}

// applyCellFilter ANDs H3 cell membership of the targeted flow end into
// mask, in place.
func applyCellFilter(flowsTbl *table.Table, mask []bool, opts FilterOptions) []report.Issue {
	origins, errO := flowsTbl.Column(ColOriginCell)
	dests, errD := flowsTbl.Column(ColDestCell)
	if errO != nil || errD != nil {
		level := report.Warning
		if opts.Strict {
			level = report.Error
		}

		return []report.Issue{{
			Level:   level,
			Code:    report.CodeFieldNotFound,
			Message: "cell filter skipped: flow cell columns missing",
		}}
	}

	set := make(map[string]struct{}, len(opts.Cells))
	for _, c := range opts.Cells {
		set[strings.ToLower(c)] = struct{}{}
	}
	in := func(cells []any, row int) bool {
		if table.IsNull(cells[row]) {
			return false
		}
		s, _ := table.AsString(cells[row])
		_, ok := set[strings.ToLower(s)]

		return ok
	}

	target := opts.cellTarget()
	for row := range mask {
		if !mask[row] {
			continue
		}
		var keep bool
		switch target {
		case filtering.TargetOrigin:
			keep = in(origins, row)
		case filtering.TargetDestination:
			keep = in(dests, row)
		case filtering.TargetBoth:
			keep = in(origins, row) && in(dests, row)
		default:
			keep = in(origins, row) || in(dests, row)
		}
		if !keep {
			mask[row] = false
		}
	}

	return nil
}

// trimLinkage keeps the linkage rows whose flow ID survived the filter.
func trimLinkage(linkage, flowsTbl *table.Table) (*table.Table, error) {
	flowIDs, err := flowsTbl.Column(ColFlowID)
	if err != nil {
		return nil, fmt.Errorf("flows: trim linkage: %w", err)
	}
	alive := make(map[string]struct{}, len(flowIDs))
	for _, v := range flowIDs {
		s, _ := table.AsString(v)
		alive[s] = struct{}{}
	}

	linkIDs, err := linkage.Column(ColFlowID)
	if err != nil {
		return nil, fmt.Errorf("flows: trim linkage: %w", err)
	}
	mask := make([]bool, len(linkIDs))
	for i, v := range linkIDs {
		s, _ := table.AsString(v)
		_, mask[i] = alive[s]
	}

	trimmed, err := linkage.FilterMask(mask)
	if err != nil {
		return nil, fmt.Errorf("flows: trim linkage: %w", err)
	}

	return trimmed, nil
}
