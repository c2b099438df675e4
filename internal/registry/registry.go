package registry

import (
	"fmt"
	"slices"

	"github.com/vk/simunit/internal/errs"
	"github.com/vk/simunit/internal/unit"
)

// Module is the interface that all units' providers must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds every unit of a single application instance, in the
// order they were added.
type Registry struct {
	units map[string]*unit.Unit
	order []string
	// orders caches each kind's execution order once Validate passes.
	// Adding a unit drops it.
	orders map[unit.Kind][]string
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{units: make(map[string]*unit.Unit)}
}

// Add stores u and gives it access to its siblings.
func (r *Registry) Add(u *unit.Unit) error {
	if _, exists := r.units[u.Name()]; exists {
		return fmt.Errorf("%w: unit %s already registered", errs.ErrDuplicateParameter, u.Name())
	}
	r.units[u.Name()] = u
	r.order = append(r.order, u.Name())
	r.orders = nil
	u.SetUnits(r.Get)
	return nil
}

// MustAdd is like Add but panics on a duplicate unit. It is meant for
// Module.Register implementations.
func (r *Registry) MustAdd(u *unit.Unit) {
	if err := r.Add(u); err != nil {
		panic(err)
	}
}

// Get returns the unit called name.
func (r *Registry) Get(name string) (*unit.Unit, bool) {
	u, ok := r.units[name]
	return u, ok
}

// Names returns the unit names in registration order.
func (r *Registry) Names() []string { return slices.Clone(r.order) }

// Units returns the units in registration order.
func (r *Registry) Units() []*unit.Unit {
	out := make([]*unit.Unit, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.units[name])
	}
	return out
}

// Len returns the number of units.
func (r *Registry) Len() int { return len(r.order) }
