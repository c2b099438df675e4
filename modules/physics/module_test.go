package physics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/simunit/internal/inputdeck"
	"github.com/vk/simunit/internal/params"
	"github.com/vk/simunit/internal/registry"
	"github.com/vk/simunit/internal/runconfig"
)

func TestPhysics_Setup(t *testing.T) {
	testCases := []struct {
		deck string
		want Fluid
	}{
		{"", Fluid1T},
		{"3T", Fluid3T},
	}
	for _, tc := range testCases {
		t.Run("fluid="+tc.deck, func(t *testing.T) {
			deck := inputdeck.New()
			if tc.deck != "" {
				require.NoError(t, deck.SetNative("physics", "fluid", tc.deck))
			}
			r := registry.New()
			(&Module{}).Register(r)
			cfg := runconfig.New()
			require.NoError(t, r.SetupParams(context.Background(), params.New(deck), cfg))

			got, err := runconfig.Lookup(cfg, FluidAxis)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPhysics_RejectsUnknownFluid(t *testing.T) {
	deck := inputdeck.New()
	require.NoError(t, deck.SetNative("physics", "fluid", "2t"))
	r := registry.New()
	(&Module{}).Register(r)
	err := r.SetupParams(context.Background(), params.New(deck), runconfig.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "physics")
}
