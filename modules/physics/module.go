package physics

import (
	"context"

	"github.com/vk/simunit/internal/binding"
	"github.com/vk/simunit/internal/options"
	"github.com/vk/simunit/internal/registry"
	"github.com/vk/simunit/internal/unit"
)

// Fluid selects the thermodynamic model of the fluid.
type Fluid int

const (
	// Fluid1T carries a single temperature.
	Fluid1T Fluid = iota
	// Fluid3T carries separate ion, electron and radiation temperatures.
	Fluid3T
)

// FluidAxis is the option axis for Fluid.
var FluidAxis = options.NewEnum[Fluid]("Fluid", "1t", "3t")

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register adds the physics unit.
func (m *Module) Register(r *registry.Registry) {
	r.MustAdd(NewUnit())
}

// NewUnit returns the physics unit. Other units read the fluid model from
// the run configuration.
func NewUnit() *unit.Unit {
	u := unit.New("physics")
	u.MustRegister(unit.Setup, unit.Registration{Hook: setup})
	return u
}

func setup(_ context.Context, u *unit.Unit, _ *unit.Step) error {
	b, err := u.Block("physics")
	if err != nil {
		return err
	}
	return binding.AddOption(b, "fluid", "1t", "Fluid model: 1t for single temperature, 3t for ion, electron and radiation temperatures", FluidAxis.Mapping())
}
