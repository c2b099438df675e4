// Package driver provides the driver unit and the evolution loop that
// runs the per-cycle callbacks of every registered unit.
package driver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/vk/simunit/internal/binding"
	"github.com/vk/simunit/internal/ctxlog"
	"github.com/vk/simunit/internal/options"
	"github.com/vk/simunit/internal/packagestore"
	"github.com/vk/simunit/internal/params"
	"github.com/vk/simunit/internal/registry"
	"github.com/vk/simunit/internal/runconfig"
	"github.com/vk/simunit/internal/unit"
)

// Integrator selects the multi-stage Runge-Kutta method.
type Integrator int

const (
	RK1 Integrator = iota
	RK2
	RK3
)

// Stages returns the number of stages of the method.
func (i Integrator) Stages() int { return int(i) + 1 }

// IntegratorAxis is the option axis for Integrator.
var IntegratorAxis = options.NewEnum[Integrator]("Integrator", "rk1", "rk2", "rk3")

// Name is the unit and block name of the driver.
const Name = "driver"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register adds the driver unit.
func (m *Module) Register(r *registry.Registry) {
	r.MustAdd(NewUnit())
}

// NewUnit returns the driver unit.
func NewUnit() *unit.Unit {
	u := unit.New(Name)
	u.MustRegister(unit.Setup, unit.Registration{Hook: setup})
	return u
}

func setup(_ context.Context, u *unit.Unit, _ *unit.Step) error {
	b, err := u.Block(Name)
	if err != nil {
		return err
	}
	if err := binding.AddOption(b, "integrator", "rk2", "Which multi-stage Runge-Kutta method to use", IntegratorAxis.Mapping()); err != nil {
		return err
	}
	if err := binding.AddParm(b, "tlim", 1.0, "Stop criterion on simulation time.", packagestore.Mutable); err != nil {
		return err
	}
	if err := binding.AddParm(b, "nlim", -1, "Stop criterion on total number of steps taken. Ignored if < 0.", packagestore.Mutable); err != nil {
		return err
	}
	return binding.AddParm(b, "ncycle_out", 1, "Number of cycles between short diagnostic output.", packagestore.Mutable, params.Range(0, math.MaxInt32))
}

// Summary reports how an evolution ended.
type Summary struct {
	Cycles int
	Time   float64
	Tasks  int
	// Last is the state of the final cycle, nil when no cycle ran.
	Last *unit.Step
}

// ErrNoTimestep is returned when no unit proposes a timestep.
var ErrNoTimestep = errors.New("no unit proposed a finite timestep")

// Evolve advances the simulation until tlim or nlim is reached. Each cycle
// runs prepare_conserved, then add_flux_tasks and prepare_primitive once
// per integrator stage, then estimate_timestep.
func Evolve(ctx context.Context, r *registry.Registry, cfg *runconfig.Config) (Summary, error) {
	logger := ctxlog.FromContext(ctx)
	u, ok := r.Get(Name)
	if !ok {
		return Summary{}, fmt.Errorf("driver unit is not registered")
	}
	b, ok := u.Data().Lookup(Name)
	if !ok {
		return Summary{}, fmt.Errorf("driver parameters are not set up")
	}
	tlim, err := binding.Get[float64](b, "tlim")
	if err != nil {
		return Summary{}, err
	}
	nlim, err := binding.Get[int](b, "nlim")
	if err != nil {
		return Summary{}, err
	}
	every, err := binding.Get[int](b, "ncycle_out")
	if err != nil {
		return Summary{}, err
	}
	integrator, err := runconfig.Lookup(cfg, IntegratorAxis)
	if err != nil {
		return Summary{}, err
	}
	if nlim < 0 && math.IsInf(tlim, 1) {
		return Summary{}, fmt.Errorf("driver: either nlim or a finite tlim is required")
	}

	logger.Info("Evolution starting.", "integrator", IntegratorAxis.Of(integrator).Label(), "tlim", tlim, "nlim", nlim)
	var sum Summary
	t := 0.0
	for cycle := 0; (nlim < 0 || cycle < nlim) && t < tlim; cycle++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		s := unit.NewStep(cycle, t)
		if err := r.Run(ctx, unit.PrepareConserved, s); err != nil {
			return sum, err
		}
		for stage := range integrator.Stages() {
			s.Stage = stage
			if err := r.Run(ctx, unit.AddFluxTasks, s); err != nil {
				return sum, err
			}
			if err := r.Run(ctx, unit.PreparePrimitive, s); err != nil {
				return sum, err
			}
		}
		if err := r.Run(ctx, unit.EstimateTimestep, s); err != nil {
			return sum, err
		}
		if math.IsInf(s.Dt, 1) || s.Dt <= 0 {
			return sum, fmt.Errorf("cycle %d: %w", cycle, ErrNoTimestep)
		}
		dt := s.Dt
		if tlim-t <= dt {
			dt, t = tlim-t, tlim
		} else {
			t += dt
		}

		sum.Cycles = cycle + 1
		sum.Time = t
		sum.Tasks += len(s.Tasks)
		sum.Last = s
		if every > 0 && cycle%every == 0 {
			logger.Info("Cycle finished.", "cycle", cycle, "time", t, "dt", dt, "tasks", len(s.Tasks))
		}
	}
	logger.Info("Evolution finished.", "cycles", sum.Cycles, "time", sum.Time)
	return sum, nil
}
