package dataset

import (
	"time"

	"github.com/google/uuid"
)

// Event is one entry of a dataset's operation log: which operation ran,
// when, with which effective parameters, and its summary. JSON-safe.
type Event struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	At         time.Time      `json:"at"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Summary    map[string]any `json:"summary,omitempty"`
}

// NewEvent stamps an operation event with a fresh id and a UTC timestamp.
func NewEvent(name string, parameters, summary map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Name:       name,
		At:         time.Now().UTC(),
		Parameters: parameters,
		Summary:    summary,
	}
}

// Flags holds per-dataset boolean state.
type Flags struct {
	// Validated records whether the dataset's current table passed
	// validation without unresolved errors.
	Validated bool `json:"validated"`
}

// Metadata is the dataset-level traceability block: the ordered event log,
// flags, and free-form JSON-safe extras (source name, import parameters).
type Metadata struct {
	Events []Event        `json:"events"`
	Flags  Flags          `json:"flags"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// Clone deep-copies the metadata (events and extras copied; values shared).
func (m Metadata) Clone() Metadata {
	out := Metadata{Flags: m.Flags}
	out.Events = append([]Event(nil), m.Events...)
	if m.Extra != nil {
		out.Extra = make(map[string]any, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = v
		}
	}

	return out
}

// WithEvent returns a copy with e appended to the event log.
func (m Metadata) WithEvent(e Event) Metadata {
	out := m.Clone()
	out.Events = append(out.Events, e)

	return out
}

// WithValidated returns a copy with the validated flag set to v.
func (m Metadata) WithValidated(v bool) Metadata {
	out := m.Clone()
	out.Flags.Validated = v

	return out
}

// WithExtra returns a copy with key set in Extra.
func (m Metadata) WithExtra(key string, value any) Metadata {
	out := m.Clone()
	if out.Extra == nil {
		out.Extra = make(map[string]any, 1)
	}
	out.Extra[key] = value

	return out
}

// EventsSummary renders a compact JSON-safe digest of the event log, used
// when a derived dataset records the provenance of its source.
func (m Metadata) EventsSummary() []map[string]any {
	out := make([]map[string]any, 0, len(m.Events))
	for _, e := range m.Events {
		out = append(out, map[string]any{
			"id":   e.ID,
			"name": e.Name,
			"at":   e.At.Format(time.RFC3339),
		})
	}

	return out
}
