package system

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/simunit/internal/app"
	"github.com/vk/simunit/internal/binding"
	"github.com/vk/simunit/internal/errs"
	"github.com/vk/simunit/internal/packagestore"
	"github.com/vk/simunit/internal/params"
	"github.com/vk/simunit/internal/unit"
	"github.com/vk/simunit/modules/driver"
)

func noop(context.Context, *unit.Unit, *unit.Step) error { return nil }

// Test for: callbacks run in dependency order, not registration order
func TestUnits_CallbacksFollowDeclaredDependencies(t *testing.T) {
	// --- Arrange ---
	// output is registered first but requires mesh and source to run before it.
	mod := &recorderModule{units: []recorderUnit{
		{name: "output", kinds: map[unit.Kind]unit.Registration{
			unit.PrepareConserved: {Hook: noop, DependsOn: []string{"source"}},
		}},
		{name: "source", kinds: map[unit.Kind]unit.Registration{
			unit.PrepareConserved: {Hook: noop},
		}},
		{name: "mesh", kinds: map[unit.Kind]unit.Registration{
			unit.PrepareConserved: {Hook: noop, RequiredBy: []string{"source"}},
		}},
		clockUnit(0.25),
	}}
	testApp, _ := app.SetupAppTest(t, &app.Config{}, &driver.Module{}, mod)

	// --- Act ---
	sum, err := testApp.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Cycles, "default tlim of 1.0 in steps of 0.25")
	assert.Equal(t, 1.0, sum.Time)
	assert.Equal(t, []string{
		"mesh:prepare_conserved",
		"source:prepare_conserved",
		"output:prepare_conserved",
		"clock:estimate_timestep",
	}, sum.Last.Tasks)
}

// Test for: a dependency cycle stops setup before any callback runs
func TestUnits_CyclicDependencyFailsSetup(t *testing.T) {
	mod := &recorderModule{units: []recorderUnit{
		{name: "a", kinds: map[unit.Kind]unit.Registration{unit.AddFluxTasks: {Hook: noop, DependsOn: []string{"b"}}}},
		{name: "b", kinds: map[unit.Kind]unit.Registration{unit.AddFluxTasks: {Hook: noop, DependsOn: []string{"a"}}}},
	}}
	testApp, logs := app.SetupAppTest(t, &app.Config{}, mod)

	err := testApp.Setup(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry validation failed")
	assert.Contains(t, err.Error(), "cyclic dependency detected")
	assert.ErrorIs(t, err, errs.ErrCyclicDependency)
	assert.NotContains(t, logs.String(), "Setup complete.")
}

// Test for: runtime parameter updates between cycles
func TestUnits_RuntimeParameterUpdates(t *testing.T) {
	// --- Arrange ---
	var updateErrs []error
	source := recorderUnit{
		name: "source",
		declare: func(b *binding.Block) error {
			if err := binding.AddParm(b, "strength", 1.0, "Source strength", packagestore.Mutable, params.Range(0.0, 10.0)); err != nil {
				return err
			}
			return binding.AddParm(b, "species", 2, "Number of species", packagestore.Immutable)
		},
		kinds: map[unit.Kind]unit.Registration{
			unit.EstimateTimestep: {Hook: func(ctx context.Context, u *unit.Unit, s *unit.Step) error {
				if s.Cycle != 0 {
					return nil
				}
				b, _ := u.Data().Lookup("source")
				updateErrs = append(updateErrs,
					b.UpdateParm(ctx, "strength", 5.0),
					b.UpdateParm(ctx, "strength", 50.0),
					b.UpdateParm(ctx, "species", 3),
				)
				return nil
			}},
		},
	}
	dir := writeFiles(t, map[string]string{"deck.hcl": "driver {\n  nlim = 2\n}\nsource {\n  strength = 2.5\n}\n"})
	mod := &recorderModule{units: []recorderUnit{source, clockUnit(0.1)}}
	testApp, _ := app.SetupAppTest(t, &app.Config{DeckPaths: []string{dir}}, &driver.Module{}, mod)

	// --- Act ---
	_, err := testApp.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, updateErrs, 3)
	assert.NoError(t, updateErrs[0])
	assert.True(t, errors.Is(updateErrs[1], errs.ErrRuleViolation))
	assert.True(t, errors.Is(updateErrs[2], errs.ErrImmutableParameterUpdate))

	strength, err := packagestore.Get[float64](context.Background(), testApp.Store(), packagestore.Key("source", "strength"))
	require.NoError(t, err)
	assert.Equal(t, 5.0, strength)

	resolved, err := testApp.ResolvedParameters()
	require.NoError(t, err)
	assert.Equal(t, 5.0, resolved["source"]["strength"])
	assert.Equal(t, 2, resolved["source"]["species"])
}

// Test for: dependencies on units left out of the build only warn
func TestUnits_UnknownDependencyWarns(t *testing.T) {
	mod := &recorderModule{units: []recorderUnit{
		{name: "source", kinds: map[unit.Kind]unit.Registration{unit.PreparePrimitive: {Hook: noop, DependsOn: []string{"radiation"}}}},
	}}
	testApp, logs := app.SetupAppTest(t, &app.Config{}, mod)

	require.NoError(t, testApp.Setup(context.Background()))
	assert.Contains(t, logs.String(), "Callback dependency names an unregistered unit")

	orders, err := testApp.ExecutionOrders()
	require.NoError(t, err)
	idx := slices.IndexFunc(orders, func(o app.KindOrder) bool { return o.Kind == unit.PreparePrimitive })
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, []string{"source"}, orders[idx].Units)
}
