package hydro

import (
	"fmt"

	"github.com/vk/simunit/internal/dispatch"
)

// Kernel is the flux kernel chosen for a cycle.
type Kernel struct {
	Name    string
	Traits  Traits
	Limiter string
}

// FluxArgs are the per-call inputs of the flux table.
type FluxArgs struct {
	Stage int
}

// newFluxTable maps every scheme onto its kernel. First order
// reconstruction has no slopes, so its kernels ignore the limiter.
func newFluxTable() *dispatch.Table[FluxArgs, Kernel] {
	t := dispatch.New[FluxArgs, Kernel]("hydro.flux", Factory, dispatch.On(SlopeLimiterAxis.Axis))

	err := t.Fallback(func(c dispatch.Combination, a FluxArgs) (Kernel, error) {
		tr := dispatch.Derived(c, Factory)
		lim := c.Value(SlopeLimiterAxis.Axis).Label()
		return Kernel{
			Name:    fmt.Sprintf("%s+%s/%s@%d", label(c, ReconstructionAxis.Axis), lim, label(c, RiemannAxis.Axis), a.Stage),
			Traits:  tr,
			Limiter: lim,
		}, nil
	})
	if err != nil {
		panic(err)
	}

	fog := ReconstructionAxis.Of(FOG)
	for _, riemann := range RiemannAxis.Labels() {
		for _, lim := range SlopeLimiterAxis.Labels() {
			t.MustRegister(func(c dispatch.Combination, a FluxArgs) (Kernel, error) {
				return Kernel{
					Name:   fmt.Sprintf("fog/%s@%d", label(c, RiemannAxis.Axis), a.Stage),
					Traits: dispatch.Derived(c, Factory),
				}, nil
			}, fog, RiemannAxis.MustValue(riemann), SlopeLimiterAxis.MustValue(lim))
		}
	}
	return t
}
