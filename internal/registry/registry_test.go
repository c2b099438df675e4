package registry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/simunit/internal/binding"
	"github.com/vk/simunit/internal/dag"
	"github.com/vk/simunit/internal/errs"
	"github.com/vk/simunit/internal/inmemorystore"
	"github.com/vk/simunit/internal/inputdeck"
	"github.com/vk/simunit/internal/packagestore"
	"github.com/vk/simunit/internal/params"
	"github.com/vk/simunit/internal/runconfig"
	"github.com/vk/simunit/internal/unit"
)

// recorder appends the unit name of every callback it runs.
type recorder struct {
	calls []string
}

func (r *recorder) hook(_ context.Context, u *unit.Unit, _ *unit.Step) error {
	r.calls = append(r.calls, u.Name())
	return nil
}

func (r *recorder) reg(dependsOn, requiredBy []string) unit.Registration {
	return unit.Registration{Hook: r.hook, DependsOn: dependsOn, RequiredBy: requiredBy}
}

func newCollection(t *testing.T, rec *recorder) *Registry {
	t.Helper()
	one, two, three := unit.New("one"), unit.New("two"), unit.New("three")

	// add_flux_tasks: three -> one -> two
	one.MustRegister(unit.AddFluxTasks, rec.reg(nil, []string{"two"}))
	two.MustRegister(unit.AddFluxTasks, rec.reg([]string{"one"}, nil))
	three.MustRegister(unit.AddFluxTasks, rec.reg(nil, []string{"one"}))

	// prepare_primitive: two -> one -> three
	one.MustRegister(unit.PreparePrimitive, rec.reg(nil, []string{"three"}))
	two.MustRegister(unit.PreparePrimitive, rec.reg(nil, []string{"one"}))
	three.MustRegister(unit.PreparePrimitive, rec.reg([]string{"one"}, nil))

	r := New()
	for _, u := range []*unit.Unit{one, two, three} {
		require.NoError(t, r.Add(u))
	}
	return r
}

func TestRegistry_Run(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	r := newCollection(t, rec)

	require.NoError(t, r.Run(ctx, unit.AddFluxTasks, unit.NewStep(0, 0)))
	assert.Equal(t, []string{"three", "one", "two"}, rec.calls)

	rec.calls = nil
	require.NoError(t, r.Run(ctx, unit.PreparePrimitive, unit.NewStep(0, 0)))
	assert.Equal(t, []string{"two", "one", "three"}, rec.calls)

	rec.calls = nil
	require.NoError(t, r.Run(ctx, unit.EstimateTimestep, unit.NewStep(0, 0)))
	assert.Empty(t, rec.calls)
}

func TestRegistry_Add(t *testing.T) {
	r := New()
	require.NoError(t, r.Add(unit.New("eos")))
	assert.ErrorIs(t, r.Add(unit.New("eos")), errs.ErrDuplicateParameter)
	assert.Panics(t, func() { r.MustAdd(unit.New("eos")) })

	r.MustAdd(unit.New("hydro"))
	assert.Equal(t, []string{"eos", "hydro"}, r.Names())
	assert.Equal(t, 2, r.Len())

	hydro, ok := r.Get("hydro")
	require.True(t, ok)
	eos, err := hydro.Unit("eos")
	require.NoError(t, err)
	assert.Equal(t, "eos", eos.Name())
}

func TestRegistry_ExecutionOrderSkipsUnregistered(t *testing.T) {
	rec := &recorder{}
	a, b, c := unit.New("a"), unit.New("b"), unit.New("c")
	// b has no initialize callback, so a's dependency on it is dropped.
	a.MustRegister(unit.Initialize, rec.reg([]string{"b", "missing"}, nil))
	c.MustRegister(unit.Initialize, rec.reg(nil, []string{"a"}))

	r := New()
	r.MustAdd(a)
	r.MustAdd(b)
	r.MustAdd(c)

	order, err := r.ExecutionOrder(unit.Initialize)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, order)
}

func TestRegistry_Cycle(t *testing.T) {
	rec := &recorder{}
	a, b := unit.New("a"), unit.New("b")
	a.MustRegister(unit.Setup, rec.reg([]string{"b"}, nil))
	b.MustRegister(unit.Setup, rec.reg([]string{"a"}, nil))
	r := New()
	r.MustAdd(a)
	r.MustAdd(b)

	_, err := r.ExecutionOrder(unit.Setup)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrCyclicDependency)
	assert.Contains(t, err.Error(), "building execution order for setup callbacks")

	err = r.Run(context.Background(), unit.Setup, nil)
	assert.ErrorIs(t, err, errs.ErrCyclicDependency)
	assert.Empty(t, rec.calls)

	err = r.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "registry validation failed:\n- "))
	assert.ErrorIs(t, err, errs.ErrCyclicDependency)
	var cycle *dag.CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"a", "b", "a"}, cycle.Cycle)
	assert.Nil(t, r.orders, "a failed validation caches nothing")
}

func TestRegistry_ValidateCachesOrder(t *testing.T) {
	rec := &recorder{}
	r := newCollection(t, rec)
	require.NoError(t, r.Validate(context.Background()))
	require.Len(t, r.orders, len(unit.Kinds()))
	assert.Equal(t, []string{"three", "one", "two"}, r.orders[unit.AddFluxTasks])

	// Callers get a copy of the cached order.
	order, err := r.ExecutionOrder(unit.AddFluxTasks)
	require.NoError(t, err)
	order[0] = "changed"
	require.NoError(t, r.Run(context.Background(), unit.AddFluxTasks, unit.NewStep(0, 0)))
	assert.Equal(t, []string{"three", "one", "two"}, rec.calls)

	// A late unit drops the cache and still takes part.
	late := unit.New("late")
	late.MustRegister(unit.AddFluxTasks, rec.reg([]string{"two"}, nil))
	r.MustAdd(late)
	assert.Nil(t, r.orders)
	rec.calls = nil
	require.NoError(t, r.Run(context.Background(), unit.AddFluxTasks, unit.NewStep(0, 0)))
	assert.Equal(t, []string{"three", "one", "two", "late"}, rec.calls)
}

func TestRegistry_Validate(t *testing.T) {
	rec := &recorder{}
	a := unit.New("a")
	a.MustRegister(unit.Setup, rec.reg([]string{"optional"}, nil))
	r := New()
	r.MustAdd(a)
	require.NoError(t, r.Validate(context.Background()), "unknown units only warn")

	self := unit.New("self")
	self.MustRegister(unit.Initialize, rec.reg(nil, []string{"self"}))
	r.MustAdd(self)
	err := r.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unit 'self': initialize callback lists itself as a dependency")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 2, "the self edge is also a cycle")
}

func TestRegistry_WriteCallbackGraph(t *testing.T) {
	rec := &recorder{}
	r := newCollection(t, rec)

	var buf bytes.Buffer
	require.NoError(t, r.WriteCallbackGraph(&buf, unit.AddFluxTasks))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "// Callback execution order for: add_flux_tasks\ndigraph {"))
	assert.Contains(t, out, `"one" -> "two"`)
	assert.Contains(t, out, `"three" -> "one"`)
}

func TestRegistry_Lifecycle(t *testing.T) {
	ctx := context.Background()
	fluid := unit.New("physics")
	var seen []string
	fluid.MustRegister(unit.Setup, unit.Registration{Hook: func(_ context.Context, u *unit.Unit, _ *unit.Step) error {
		seen = append(seen, "setup")
		b, err := u.Block("physics")
		if err != nil {
			return err
		}
		return binding.AddParm(b, "gamma", 1.4, "adiabatic index", packagestore.Immutable)
	}})
	fluid.MustRegister(unit.Initialize, unit.Registration{Hook: func(ctx context.Context, u *unit.Unit, _ *unit.Step) error {
		seen = append(seen, "initialize")
		gamma, err := packagestore.Get[float64](ctx, u.Store(), packagestore.Key("physics", "gamma"))
		if err != nil {
			return err
		}
		assert.Equal(t, 5.0/3.0, gamma)
		return nil
	}})

	r := New()
	r.MustAdd(fluid)

	deck := inputdeck.New()
	require.NoError(t, deck.SetNative("physics", "gamma", 5.0/3.0))
	reg := params.New(deck)
	require.NoError(t, r.SetupParams(ctx, reg, runconfig.New()))
	assert.True(t, reg.Has("physics", "gamma"))

	require.NoError(t, r.InitializePackages(ctx, inmemorystore.New()))
	assert.Equal(t, []string{"setup", "initialize"}, seen)
}

type stubTable struct {
	name   string
	err    error
	sealed bool
}

func (s *stubTable) Name() string { return s.name }
func (s *stubTable) Sealed() bool { return s.sealed }
func (s *stubTable) Seal() error {
	if s.err != nil {
		return s.err
	}
	s.sealed = true
	return nil
}

func TestRegistry_SealTables(t *testing.T) {
	ok1, ok2 := &stubTable{name: "ok1"}, &stubTable{name: "ok2"}
	a, b := unit.New("a"), unit.New("b")
	a.AddTable(ok1)
	b.AddTable(ok2)
	r := New()
	r.MustAdd(a)
	r.MustAdd(b)

	require.NoError(t, r.SealTables(context.Background()))
	assert.True(t, ok1.sealed)
	assert.True(t, ok2.sealed)
	require.NoError(t, r.SealTables(context.Background()), "sealed tables are skipped")

	bad := &stubTable{name: "bad", err: errs.ErrUnregisteredCombination}
	c := unit.New("c")
	c.AddTable(bad)
	r.MustAdd(c)
	err := r.SealTables(context.Background())
	require.ErrorIs(t, err, errs.ErrUnregisteredCombination)
	assert.Contains(t, err.Error(), "unit c")
}
