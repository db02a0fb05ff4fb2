package sources

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/katalvlaran/golondrina/schema"
	"github.com/katalvlaran/golondrina/table"
)

// ErrUnknownProfile indicates a Get for a name never registered.
var ErrUnknownProfile = errors.New("sources: unknown profile")

// ErrEmptyName indicates a Register with an empty profile name.
var ErrEmptyName = errors.New("sources: profile name is empty")

// Profile is one provider's import recipe.
type Profile struct {
	// Name is the registry key, conventionally lower_snake.
	Name string

	// Description is a one-line human label.
	Description string

	// Schema is the trip schema imports validate against; nil selects the
	// builtin schema.
	Schema *schema.TripSchema

	// FieldCorrespondence maps canonical field names to the provider's
	// column names.
	FieldCorrespondence map[string]string

	// ValueCorrespondence maps, per canonical field, the provider's raw
	// values to canonical ones.
	ValueCorrespondence map[string]map[string]string

	// H3Resolution is the resolution H3 columns are derived at; 0 keeps
	// the import default.
	H3Resolution int

	// Preprocess, when non-nil, runs on the raw provider table before the
	// correspondences are applied (column splitting, row trimming, unit
	// conversion).
	Preprocess func(*table.Table) (*table.Table, error)
}

// Registry is a concurrency-safe name → Profile store. Registration is
// last-write-wins so callers can shadow builtin profiles.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[string]Profile)}
}

// DefaultRegistry returns a fresh registry preloaded with the builtin
// profiles.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, p := range builtinProfiles() {
		// builtin names are non-empty, Register cannot fail here
		_ = r.Register(p)
	}

	return r
}

// Register stores p under p.Name, replacing any previous profile.
func (r *Registry) Register(p Profile) error {
	if p.Name == "" {
		return ErrEmptyName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.Name] = p

	return nil
}

// Get returns the profile registered under name.
func (r *Registry) Get(name string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}

	return p, nil
}

// Names returns the registered profile names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
