package system

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/simunit/internal/binding"
	"github.com/vk/simunit/internal/packagestore"
	"github.com/vk/simunit/internal/params"
	"github.com/vk/simunit/internal/registry"
	"github.com/vk/simunit/internal/unit"
)

// writeFiles writes name -> content pairs into a fresh directory and
// returns its path.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600), "failed to write %s", name)
	}
	return dir
}

// recorderModule is a self-contained module whose units record every
// callback they run as a task on the step.
type recorderModule struct {
	units []recorderUnit
}

type recorderUnit struct {
	name  string
	kinds map[unit.Kind]unit.Registration
	// declare adds parameters in the setup callback.
	declare func(b *binding.Block) error
}

// Register adds one unit per recorderUnit.
func (m *recorderModule) Register(r *registry.Registry) {
	for _, ru := range m.units {
		u := unit.New(ru.name)
		if ru.declare != nil {
			declare := ru.declare
			u.MustRegister(unit.Setup, unit.Registration{Hook: func(_ context.Context, u *unit.Unit, _ *unit.Step) error {
				b, err := u.Block(u.Name())
				if err != nil {
					return err
				}
				return declare(b)
			}})
		}
		for kind, reg := range ru.kinds {
			hook := reg.Hook
			reg.Hook = func(ctx context.Context, u *unit.Unit, s *unit.Step) error {
				if s != nil {
					s.AddTask(u.Name() + ":" + kind.String())
				}
				if hook != nil {
					return hook(ctx, u, s)
				}
				return nil
			}
			u.MustRegister(kind, reg)
		}
		r.MustAdd(u)
	}
}

// clockUnit proposes a fixed timestep so the driver can evolve with only
// recorder units present.
func clockUnit(dt float64) recorderUnit {
	return recorderUnit{
		name: "clock",
		declare: func(b *binding.Block) error {
			return binding.AddParm(b, "dt", dt, "Fixed timestep", packagestore.Mutable, params.Range(0.0, 1.0))
		},
		kinds: map[unit.Kind]unit.Registration{
			unit.EstimateTimestep: {Hook: func(_ context.Context, u *unit.Unit, s *unit.Step) error {
				b, _ := u.Data().Lookup("clock")
				dt, err := binding.Get[float64](b, "dt")
				if err != nil {
					return err
				}
				s.Propose(dt)
				return nil
			}},
		},
	}
}
