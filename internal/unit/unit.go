package unit

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/simunit/internal/binding"
	"github.com/vk/simunit/internal/errs"
	"github.com/vk/simunit/internal/packagestore"
	"github.com/vk/simunit/internal/params"
	"github.com/vk/simunit/internal/runconfig"
)

// Hook is a lifecycle callback.
type Hook func(ctx context.Context, u *Unit, s *Step) error

// Registration wraps a Hook with its ordering constraints.
type Registration struct {
	Hook Hook
	// DependsOn names units whose callback of the same kind runs first.
	DependsOn []string
	// RequiredBy names units whose callback of the same kind runs after.
	RequiredBy []string
}

// Table is a dispatch table owned by a unit. Tables are sealed after every
// unit's setup callback has run.
type Table interface {
	Name() string
	Seal() error
	Sealed() bool
}

// Lookup resolves another unit by name.
type Lookup func(name string) (*Unit, bool)

// Unit is a named simulation component.
type Unit struct {
	name   string
	hooks  map[Kind]Registration
	data   *binding.Collection
	tables []Table

	registry *params.Registry
	config   *runconfig.Config
	store    packagestore.Store
	units    Lookup
}

// New creates a unit without callbacks.
func New(name string) *Unit {
	if name == "" {
		panic("unit: empty name")
	}
	return &Unit{name: name, hooks: make(map[Kind]Registration), data: binding.NewCollection()}
}

// Name returns the unit name.
func (u *Unit) Name() string { return u.name }

// Register installs reg for kind. Each kind takes one registration.
func (u *Unit) Register(kind Kind, reg Registration) error {
	if reg.Hook == nil {
		return fmt.Errorf("unit %s: nil %s hook", u.name, kind)
	}
	if _, exists := u.hooks[kind]; exists {
		return fmt.Errorf("%w: unit %s already has a %s callback", errs.ErrDuplicateParameter, u.name, kind)
	}
	reg.DependsOn = slices.Clone(reg.DependsOn)
	reg.RequiredBy = slices.Clone(reg.RequiredBy)
	u.hooks[kind] = reg
	return nil
}

// On installs hook for kind without ordering constraints.
func (u *Unit) On(kind Kind, hook Hook) error {
	return u.Register(kind, Registration{Hook: hook})
}

// MustRegister is like Register but panics on error. Module constructors
// use it; a bad registration is a programming error.
func (u *Unit) MustRegister(kind Kind, reg Registration) *Unit {
	if err := u.Register(kind, reg); err != nil {
		panic(err)
	}
	return u
}

// Registration returns the callback registered for kind.
func (u *Unit) Registration(kind Kind) (Registration, bool) {
	reg, ok := u.hooks[kind]
	return reg, ok
}

// IsRegistered reports whether the unit has a callback for kind.
func (u *Unit) IsRegistered(kind Kind) bool {
	_, ok := u.hooks[kind]
	return ok
}

// Call invokes the callback for kind, if any.
func (u *Unit) Call(ctx context.Context, kind Kind, s *Step) error {
	reg, ok := u.hooks[kind]
	if !ok {
		return nil
	}
	if err := reg.Hook(ctx, u, s); err != nil {
		return fmt.Errorf("unit %s %s: %w", u.name, kind, err)
	}
	return nil
}

// Block returns the parameter block called name, creating it on first use.
// Blocks created after InitResources are bound immediately.
func (u *Unit) Block(name string) (*binding.Block, error) {
	return u.data.Block(name)
}

// Data returns every parameter block of the unit.
func (u *Unit) Data() *binding.Collection { return u.data }

// InitResources attaches the shared parameter registry and run
// configuration, and binds the blocks declared so far.
func (u *Unit) InitResources(registry *params.Registry, config *runconfig.Config) error {
	if err := u.data.Setup(registry, config); err != nil {
		return fmt.Errorf("unit %s: %w", u.name, err)
	}
	u.registry = registry
	u.config = config
	return nil
}

// InitializePackage pushes every block's values into store.
func (u *Unit) InitializePackage(ctx context.Context, store packagestore.Store) error {
	if u.registry == nil {
		return fmt.Errorf("%w: unit %s has no resources", errs.ErrNotInitialized, u.name)
	}
	if err := u.data.Initialize(ctx, store); err != nil {
		return fmt.Errorf("unit %s: %w", u.name, err)
	}
	u.store = store
	return nil
}

// Params returns the shared parameter registry, nil before InitResources.
func (u *Unit) Params() *params.Registry { return u.registry }

// Config returns the shared run configuration, nil before InitResources.
func (u *Unit) Config() *runconfig.Config { return u.config }

// Store returns the package store, nil before InitializePackage.
func (u *Unit) Store() packagestore.Store { return u.store }

// SetUnits gives the unit access to its siblings.
func (u *Unit) SetUnits(lookup Lookup) { u.units = lookup }

// Unit returns the sibling called name.
func (u *Unit) Unit(name string) (*Unit, error) {
	if u.units == nil {
		return nil, fmt.Errorf("%w: unit %s is not part of a collection", errs.ErrNotInitialized, u.name)
	}
	other, ok := u.units(name)
	if !ok {
		return nil, fmt.Errorf("%w: unit %s", errs.ErrUnknownParameter, name)
	}
	return other, nil
}

// AddTable hands a dispatch table to the unit for sealing.
func (u *Unit) AddTable(t Table) { u.tables = append(u.tables, t) }

// Tables returns the unit's dispatch tables.
func (u *Unit) Tables() []Table { return slices.Clone(u.tables) }
