// Package hydro provides the hydrodynamics unit. The flux kernel for a
// cycle is chosen by a dispatch table over the reconstruction, Riemann
// solver and slope limiter options.
package hydro

import (
	"context"
	"fmt"
	"math"

	"github.com/vk/simunit/internal/binding"
	"github.com/vk/simunit/internal/ctxlog"
	"github.com/vk/simunit/internal/dispatch"
	"github.com/vk/simunit/internal/options"
	"github.com/vk/simunit/internal/packagestore"
	"github.com/vk/simunit/internal/params"
	"github.com/vk/simunit/internal/registry"
	"github.com/vk/simunit/internal/unit"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register adds the hydro unit.
func (m *Module) Register(r *registry.Registry) {
	r.MustAdd(New().Unit())
}

// Hydro is the hydrodynamics unit together with its flux table.
type Hydro struct {
	unit *unit.Unit
	flux *dispatch.Table[FluxArgs, Kernel]
}

// New builds the unit and its unsealed flux table.
func New() *Hydro {
	h := &Hydro{unit: unit.New("hydro"), flux: newFluxTable()}
	h.unit.AddTable(h.flux)
	h.unit.MustRegister(unit.Setup, unit.Registration{Hook: setup})
	h.unit.MustRegister(unit.Initialize, unit.Registration{Hook: h.initialize, DependsOn: []string{"eos"}})
	h.unit.MustRegister(unit.PrepareConserved, unit.Registration{Hook: prepareConserved})
	h.unit.MustRegister(unit.AddFluxTasks, unit.Registration{Hook: h.addFluxTasks})
	h.unit.MustRegister(unit.EstimateTimestep, unit.Registration{Hook: estimateTimestep, DependsOn: []string{"eos"}})
	return h
}

// Unit returns the registrable unit.
func (h *Hydro) Unit() *unit.Unit { return h.unit }

// Kernel resolves the flux kernel for the options active in the unit's
// run configuration.
func (h *Hydro) Kernel(stage int) (Kernel, error) {
	return h.flux.ExecuteConfig("hydro.Kernel", h.unit.Config(), FluxArgs{Stage: stage})
}

func setup(_ context.Context, u *unit.Unit, _ *unit.Step) error {
	b, err := u.Block("hydro")
	if err != nil {
		return err
	}
	for _, o := range []struct {
		key, def, doc string
		mapping       map[string]options.Value
	}{
		{"reconstruction", "fog", "reconstruction method used to get Riemann States", ReconstructionAxis.Mapping()},
		{"slope_limiter", "minmod", "Slope limiter used in reconstruction.", SlopeLimiterAxis.Mapping()},
		{"riemann", "hll", "Riemann solver used for high order upwinded fluxes.", RiemannAxis.Mapping()},
	} {
		if err := binding.AddOption(b, o.key, o.def, o.doc, o.mapping); err != nil {
			return err
		}
	}
	if err := binding.AddParm(b, "cfl", 0.8, "CFL stability number use in hydro", packagestore.Mutable, params.Range(0.0, 1.0)); err != nil {
		return err
	}
	return binding.AddParm(b, "dx", 0.01, "Uniform cell width used by the timestep estimate", packagestore.Immutable, params.Range(1e-12, 1e12))
}

// initialize checks the run configuration selects an available kernel, so
// a restricted-out scheme fails before the first cycle.
func (h *Hydro) initialize(ctx context.Context, u *unit.Unit, _ *unit.Step) error {
	if _, err := u.Unit("eos"); err != nil {
		return fmt.Errorf("hydro needs an equation of state: %w", err)
	}
	k, err := h.Kernel(0)
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Hydro flux kernel selected.", "kernel", k.Name, "stencil", k.Traits.Stencil, "waves", k.Traits.Waves)
	return nil
}

func prepareConserved(_ context.Context, _ *unit.Unit, s *unit.Step) error {
	s.AddTask("hydro/prim_to_cons")
	return nil
}

func (h *Hydro) addFluxTasks(_ context.Context, _ *unit.Unit, s *unit.Step) error {
	k, err := h.Kernel(s.Stage)
	if err != nil {
		return err
	}
	s.AddTask("hydro/flux:" + k.Name)
	return nil
}

// estimateTimestep proposes cfl * dx / c with the sound speed of a unit
// density, unit pressure reference state.
func estimateTimestep(ctx context.Context, u *unit.Unit, s *unit.Step) error {
	cfl, err := packagestore.Get[float64](ctx, u.Store(), packagestore.Key("hydro", "cfl"))
	if err != nil {
		return err
	}
	dx, err := packagestore.Get[float64](ctx, u.Store(), packagestore.Key("hydro", "dx"))
	if err != nil {
		return err
	}
	gamma, err := packagestore.Get[float64](ctx, u.Store(), packagestore.Key("eos", "gamma"))
	if err != nil {
		return err
	}
	s.Propose(cfl * dx / math.Sqrt(gamma))
	return nil
}

func label(c dispatch.Combination, axis *options.Axis) string {
	return c.Value(axis).Label()
}
