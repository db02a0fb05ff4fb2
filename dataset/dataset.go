package dataset

import (
	"github.com/google/uuid"

	"github.com/katalvlaran/golondrina/schema"
	"github.com/katalvlaran/golondrina/table"
)

// TripDataset is a set of trips in the canonical Golondrina format.
//
// It owns the canonical table, the schema it was built against, the
// correspondence actually applied during import, the effective categorical
// domains (base ∪ controlled extensions observed), provenance, and the
// metadata event log. Mutated only through pure functions returning a new
// instance.
type TripDataset struct {
	// ID identifies this dataset instance for provenance linking.
	ID string

	// Data is the canonical trip table.
	Data *table.Table

	// Schema is the contract the dataset was built against; referenced,
	// never mutated.
	Schema *schema.TripSchema

	// SchemaVersion duplicates Schema.Version for cheap sidecar persistence.
	SchemaVersion string

	// Provenance is free-form JSON-safe source metadata.
	Provenance map[string]any

	// FieldCorrespondence is the canonical → source column map applied at import.
	FieldCorrespondence map[string]string

	// ValueCorrespondence is the per-field raw → canonical value maps applied.
	ValueCorrespondence map[string]map[string]string

	// DomainsEffective is, per categorical field, the base domain plus the
	// controlled extensions actually observed in this dataset.
	DomainsEffective map[string][]string

	// Metadata carries the event log and the validated flag.
	Metadata Metadata
}

// NewTripDataset wraps a canonical table and its schema into an unvalidated
// dataset with a fresh id.
func NewTripDataset(data *table.Table, sch *schema.TripSchema) *TripDataset {
	version := ""
	if sch != nil {
		version = sch.Version
	}

	return &TripDataset{
		ID:            uuid.NewString(),
		Data:          data,
		Schema:        sch,
		SchemaVersion: version,
	}
}

// IsValidated reports whether the dataset's current table passed validation.
func (d *TripDataset) IsValidated() bool { return d.Metadata.Flags.Validated }

// Clone returns a copy sharing the (immutable) table and schema but owning
// fresh correspondence maps, provenance and metadata.
func (d *TripDataset) Clone() *TripDataset {
	out := &TripDataset{
		ID:            d.ID,
		Data:          d.Data,
		Schema:        d.Schema,
		SchemaVersion: d.SchemaVersion,
		Metadata:      d.Metadata.Clone(),
	}
	out.Provenance = cloneAnyMap(d.Provenance)
	out.FieldCorrespondence = cloneStringMap(d.FieldCorrespondence)
	if d.ValueCorrespondence != nil {
		out.ValueCorrespondence = make(map[string]map[string]string, len(d.ValueCorrespondence))
		for field, m := range d.ValueCorrespondence {
			out.ValueCorrespondence[field] = cloneStringMap(m)
		}
	}
	if d.DomainsEffective != nil {
		out.DomainsEffective = make(map[string][]string, len(d.DomainsEffective))
		for field, values := range d.DomainsEffective {
			out.DomainsEffective[field] = append([]string(nil), values...)
		}
	}

	return out
}

// WithData returns a copy holding t as its table. Structural change
// invalidates prior validation, so the validated flag is reset.
func (d *TripDataset) WithData(t *table.Table) *TripDataset {
	out := d.Clone()
	out.Data = t
	out.Metadata.Flags.Validated = false

	return out
}

// WithEvent returns a copy with e appended to the metadata event log.
func (d *TripDataset) WithEvent(e Event) *TripDataset {
	out := d.Clone()
	out.Metadata = out.Metadata.WithEvent(e)

	return out
}

// WithValidated returns a copy with the validated flag set.
func (d *TripDataset) WithValidated(v bool) *TripDataset {
	out := d.Clone()
	out.Metadata.Flags.Validated = v

	return out
}

// FlowDataset is an aggregated OD flow table built from a TripDataset.
//
// Invariant: every row of Flows is reproducible deterministically from
// SourceTrips and AggregationSpec.
type FlowDataset struct {
	ID string

	// Flows holds one row per OD flow (cells, optional segmentation, count).
	Flows *table.Table

	// FlowToTrips is the optional flow → member-trip linkage table.
	FlowToTrips *table.Table

	// AggregationSpec records the parameters the flows were built with.
	AggregationSpec map[string]any

	// SourceTrips is an optional in-memory back-reference; not persisted.
	SourceTrips *TripDataset

	Provenance map[string]any
	Metadata   Metadata
}

// Clone returns a copy sharing tables and source reference but owning fresh
// spec, provenance and metadata maps.
func (d *FlowDataset) Clone() *FlowDataset {
	return &FlowDataset{
		ID:              d.ID,
		Flows:           d.Flows,
		FlowToTrips:     d.FlowToTrips,
		AggregationSpec: cloneAnyMap(d.AggregationSpec),
		SourceTrips:     d.SourceTrips,
		Provenance:      cloneAnyMap(d.Provenance),
		Metadata:        d.Metadata.Clone(),
	}
}

// TraceDataset is a set of location points (GPS, XDR, check-ins) with the
// TraceSchema used to interpret them.
type TraceDataset struct {
	ID         string
	Data       *table.Table
	Schema     *schema.TraceSchema
	Provenance map[string]any

	// AuxTables are side tables carried next to the points (antenna
	// catalogs, stop registries). They live outside Metadata so the
	// metadata sidecar stays JSON-safe.
	AuxTables map[string]*table.Table

	Metadata Metadata
}

// NewTraceDataset wraps a point table and its schema into a trace dataset.
func NewTraceDataset(data *table.Table, sch *schema.TraceSchema) *TraceDataset {
	return &TraceDataset{ID: uuid.NewString(), Data: data, Schema: sch}
}

// IsValidated reports whether the trace table passed consistency validation.
func (d *TraceDataset) IsValidated() bool { return d.Metadata.Flags.Validated }

// Clone returns a copy sharing table and schema with fresh metadata maps.
func (d *TraceDataset) Clone() *TraceDataset {
	return &TraceDataset{
		ID:         d.ID,
		Data:       d.Data,
		Schema:     d.Schema,
		Provenance: cloneAnyMap(d.Provenance),
		AuxTables:  cloneTableMap(d.AuxTables),
		Metadata:   d.Metadata.Clone(),
	}
}

// WithEvent returns a copy with e appended to the metadata event log.
func (d *TraceDataset) WithEvent(e Event) *TraceDataset {
	out := d.Clone()
	out.Metadata = out.Metadata.WithEvent(e)

	return out
}

// WithValidated returns a copy with the validated flag set.
func (d *TraceDataset) WithValidated(v bool) *TraceDataset {
	out := d.Clone()
	out.Metadata.Flags.Validated = v

	return out
}

func cloneAnyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}

	return out
}

func cloneTableMap(src map[string]*table.Table) map[string]*table.Table {
	if src == nil {
		return nil
	}
	out := make(map[string]*table.Table, len(src))
	for k, v := range src {
		out[k] = v
	}

	return out
}

func cloneStringMap(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}

	return out
}
