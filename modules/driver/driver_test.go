package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/simunit/internal/inmemorystore"
	"github.com/vk/simunit/internal/inputdeck"
	"github.com/vk/simunit/internal/params"
	"github.com/vk/simunit/internal/registry"
	"github.com/vk/simunit/internal/runconfig"
	"github.com/vk/simunit/internal/unit"
)

// clock is a unit that proposes a fixed timestep and records its stages.
func clock(dt float64) *unit.Unit {
	u := unit.New("clock")
	u.MustRegister(unit.AddFluxTasks, unit.Registration{Hook: func(_ context.Context, _ *unit.Unit, s *unit.Step) error {
		s.AddTask("flux")
		return nil
	}})
	u.MustRegister(unit.EstimateTimestep, unit.Registration{Hook: func(_ context.Context, _ *unit.Unit, s *unit.Step) error {
		s.Propose(dt)
		return nil
	}})
	return u
}

func newDriverRegistry(t *testing.T, deck *inputdeck.Deck, units ...*unit.Unit) (*registry.Registry, *runconfig.Config) {
	t.Helper()
	ctx := context.Background()
	r := registry.New()
	(&Module{}).Register(r)
	for _, u := range units {
		r.MustAdd(u)
	}
	cfg := runconfig.New()
	require.NoError(t, r.SetupParams(ctx, params.New(deck), cfg))
	require.NoError(t, r.SealTables(ctx))
	require.NoError(t, r.InitializePackages(ctx, inmemorystore.New()))
	return r, cfg
}

func TestEvolve_TimeLimit(t *testing.T) {
	deck := inputdeck.New()
	require.NoError(t, deck.SetNative(Name, "tlim", 1))
	r, cfg := newDriverRegistry(t, deck, clock(0.3))

	sum, err := Evolve(context.Background(), r, cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Cycles)
	assert.Equal(t, 1.0, sum.Time)
	assert.Equal(t, 8, sum.Tasks, "rk2 runs two flux stages per cycle")
	require.NotNil(t, sum.Last)
	assert.Equal(t, 3, sum.Last.Cycle)
}

func TestEvolve_CycleLimit(t *testing.T) {
	deck := inputdeck.New()
	require.NoError(t, deck.SetNative(Name, "nlim", 2))
	require.NoError(t, deck.SetNative(Name, "integrator", "rk3"))
	r, cfg := newDriverRegistry(t, deck, clock(0.01))

	sum, err := Evolve(context.Background(), r, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Cycles)
	assert.InDelta(t, 0.02, sum.Time, 1e-12)
	assert.Equal(t, 6, sum.Tasks)
}

func TestEvolve_NoTimestep(t *testing.T) {
	r, cfg := newDriverRegistry(t, inputdeck.New())
	_, err := Evolve(context.Background(), r, cfg)
	assert.ErrorIs(t, err, ErrNoTimestep)
}

func TestEvolve_Cancelled(t *testing.T) {
	r, cfg := newDriverRegistry(t, inputdeck.New(), clock(0.1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Evolve(ctx, r, cfg)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvolve_NeedsDriver(t *testing.T) {
	_, err := Evolve(context.Background(), registry.New(), runconfig.New())
	assert.Error(t, err)
}

func TestIntegrator_Stages(t *testing.T) {
	assert.Equal(t, 1, RK1.Stages())
	assert.Equal(t, 3, RK3.Stages())
}
