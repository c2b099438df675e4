package eos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/simunit/internal/errs"
	"github.com/vk/simunit/internal/inmemorystore"
	"github.com/vk/simunit/internal/inputdeck"
	"github.com/vk/simunit/internal/params"
	"github.com/vk/simunit/internal/registry"
	"github.com/vk/simunit/internal/runconfig"
	"github.com/vk/simunit/internal/unit"
	"github.com/vk/simunit/modules/physics"
)

type harness struct {
	eos *EOS
	reg *registry.Registry
	cfg *runconfig.Config
}

func newHarness(t *testing.T, deck *inputdeck.Deck) *harness {
	t.Helper()
	ctx := context.Background()
	h := &harness{eos: New(), reg: registry.New(), cfg: runconfig.New()}
	(&physics.Module{}).Register(h.reg)
	h.reg.MustAdd(h.eos.Unit())

	require.NoError(t, h.reg.Validate(ctx))
	require.NoError(t, h.reg.SetupParams(ctx, params.New(deck), h.cfg))
	require.NoError(t, h.reg.SealTables(ctx))
	require.NoError(t, h.reg.InitializePackages(ctx, inmemorystore.New()))
	return h
}

func TestEOS_Pressure(t *testing.T) {
	testCases := []struct {
		name  string
		model string
		fluid string
		want  float64
	}{
		{"ideal", "single", "1t", 0.4},
		{"split", "single", "3t", 0.4},
		{"multitype 1t", "multitype", "1t", 0.2},
		{"multitype 3t", "multitype", "3t", 0.2},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			deck := inputdeck.New()
			require.NoError(t, deck.SetNative("eos", "type", tc.model))
			require.NoError(t, deck.SetNative("eos", "Abar", 2.0))
			require.NoError(t, deck.SetNative("physics", "fluid", tc.fluid))
			h := newHarness(t, deck)

			got, err := h.eos.Pressure(h.cfg, State{Density: 1, Energy: 1, Gamma: 1.4, Abar: 2})
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-12)
		})
	}
}

func TestEOS_PreparePrimitive(t *testing.T) {
	h := newHarness(t, inputdeck.New())
	s := unit.NewStep(0, 0)
	require.NoError(t, h.reg.Run(context.Background(), unit.PreparePrimitive, s))
	assert.InDelta(t, 0.4, s.Values["eos/pressure"], 1e-12)
}

func TestEOS_UpdateAbar(t *testing.T) {
	deck := inputdeck.New()
	require.NoError(t, deck.SetNative("eos", "type", "multitype"))
	h := newHarness(t, deck)

	b, ok := h.eos.Unit().Data().Lookup("eos")
	require.True(t, ok)
	require.NoError(t, b.UpdateParm(context.Background(), "Abar", 4.0))
	assert.ErrorIs(t, b.UpdateParm(context.Background(), "gamma", 1.6), errs.ErrImmutableParameterUpdate)

	s := unit.NewStep(0, 0)
	require.NoError(t, h.reg.Run(context.Background(), unit.PreparePrimitive, s))
	assert.InDelta(t, 0.1, s.Values["eos/pressure"], 1e-12)
}

func TestEOS_SetupOrder(t *testing.T) {
	h := newHarness(t, inputdeck.New())
	order, err := h.reg.ExecutionOrder(unit.Setup)
	require.NoError(t, err)
	assert.Equal(t, []string{"physics", "eos"}, order)
}
