// Package eos provides the equation of state unit. Pressure is resolved
// through a dispatch table over the EOS model and the fluid model.
package eos

import (
	"context"
	"fmt"

	"github.com/vk/simunit/internal/binding"
	"github.com/vk/simunit/internal/dispatch"
	"github.com/vk/simunit/internal/options"
	"github.com/vk/simunit/internal/packagestore"
	"github.com/vk/simunit/internal/params"
	"github.com/vk/simunit/internal/registry"
	"github.com/vk/simunit/internal/runconfig"
	"github.com/vk/simunit/internal/unit"
	"github.com/vk/simunit/modules/physics"
)

// Model selects the equation of state.
type Model int

const (
	Single Model = iota
	Multitype
)

// ModelAxis is the option axis for Model.
var ModelAxis = options.NewEnum[Model]("EosModel", "single", "multitype")

// State is the thermodynamic input of a pressure evaluation.
type State struct {
	Density float64
	// Energy is the specific internal energy. For three temperature fluids
	// it is split evenly between ions and electrons.
	Energy float64
	Gamma  float64
	Abar   float64
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register adds the eos unit.
func (m *Module) Register(r *registry.Registry) {
	r.MustAdd(New().Unit())
}

// EOS is the equation of state unit together with its pressure table.
type EOS struct {
	unit     *unit.Unit
	pressure *dispatch.Table[State, float64]
}

// New builds the unit and its unsealed pressure table.
func New() *EOS {
	e := &EOS{unit: unit.New("eos"), pressure: newPressureTable()}
	e.unit.AddTable(e.pressure)
	e.unit.MustRegister(unit.Setup, unit.Registration{Hook: setup, DependsOn: []string{"physics"}})
	e.unit.MustRegister(unit.PreparePrimitive, unit.Registration{Hook: e.preparePrimitive})
	return e
}

// Unit returns the registrable unit.
func (e *EOS) Unit() *unit.Unit { return e.unit }

// Pressure evaluates the equation of state for the models selected in cfg.
func (e *EOS) Pressure(cfg *runconfig.Config, s State) (float64, error) {
	return e.pressure.ExecuteConfig("eos.Pressure", cfg, s)
}

func setup(_ context.Context, u *unit.Unit, _ *unit.Step) error {
	b, err := u.Block("eos")
	if err != nil {
		return err
	}
	if err := binding.AddOption(b, "type", "single", "Equation of state model", ModelAxis.Mapping()); err != nil {
		return err
	}
	if err := binding.AddParm(b, "gamma", 1.4, "Adiabatic index of the ideal gas", packagestore.Immutable, params.Range(1.0, 3.0)); err != nil {
		return err
	}
	return binding.AddParm(b, "Abar", 1.0, "Mean atomic mass", packagestore.Mutable, params.Range(0.0, 300.0))
}

// preparePrimitive evaluates the pressure of a unit density, unit energy
// reference state and records it on the step.
func (e *EOS) preparePrimitive(ctx context.Context, u *unit.Unit, s *unit.Step) error {
	gamma, err := packagestore.Get[float64](ctx, u.Store(), packagestore.Key("eos", "gamma"))
	if err != nil {
		return err
	}
	abar, err := packagestore.Get[float64](ctx, u.Store(), packagestore.Key("eos", "Abar"))
	if err != nil {
		return err
	}
	p, err := e.Pressure(u.Config(), State{Density: 1, Energy: 1, Gamma: gamma, Abar: abar})
	if err != nil {
		return err
	}
	s.Set("eos/pressure", p)
	return nil
}

func newPressureTable() *dispatch.Table[State, float64] {
	t := dispatch.New[State, float64]("eos.pressure", dispatch.On(ModelAxis.Axis), dispatch.On(physics.FluidAxis.Axis))

	// Ideal gas: p = (gamma - 1) rho e.
	ideal := func(_ dispatch.Combination, s State) (float64, error) {
		return (s.Gamma - 1) * s.Density * s.Energy, nil
	}
	// Two species sharing the energy, electrons counted once per ion.
	split := func(_ dispatch.Combination, s State) (float64, error) {
		half := s.Energy / 2
		return 2 * (s.Gamma - 1) * s.Density * half, nil
	}
	// Multitype scales the number density by the mean atomic mass.
	multitype := func(_ dispatch.Combination, s State) (float64, error) {
		if s.Abar <= 0 {
			return 0, fmt.Errorf("eos: Abar must be positive, got %g", s.Abar)
		}
		return (s.Gamma - 1) * s.Density * s.Energy / s.Abar, nil
	}

	t.MustRegister(ideal, ModelAxis.Of(Single), physics.FluidAxis.Of(physics.Fluid1T))
	t.MustRegister(split, ModelAxis.Of(Single), physics.FluidAxis.Of(physics.Fluid3T))
	if err := t.Fallback(multitype); err != nil {
		panic(err)
	}
	return t
}
