package hydro

import (
	"github.com/vk/simunit/internal/dispatch"
	"github.com/vk/simunit/internal/options"
)

// Reconstruction selects how face states are rebuilt from cell averages.
type Reconstruction int

const (
	FOG Reconstruction = iota
	PLM
	PPM
	WENOZ
)

// SlopeLimiter selects the limiter used by PLM style reconstructions.
type SlopeLimiter int

const (
	Minmod SlopeLimiter = iota
	VanLeer
	MC
)

// RiemannSolver selects the approximate Riemann solver.
type RiemannSolver int

const (
	HLL RiemannSolver = iota
	HLLC
	HLLD
)

var (
	ReconstructionAxis = options.NewEnum[Reconstruction]("Reconstruction", "fog", "plm", "ppm", "wenoz")
	SlopeLimiterAxis   = options.NewEnum[SlopeLimiter]("SlopeLimiter", "minmod", "van_leer", "mc")
	RiemannAxis        = options.NewEnum[RiemannSolver]("RiemannSolver", "hll", "hllc", "hlld")
)

// Traits describes the scheme picked by a reconstruction and Riemann
// solver pair.
type Traits struct {
	Reconstruction Reconstruction
	Riemann        RiemannSolver
	// Stencil is the number of ghost cells the reconstruction reads.
	Stencil int
	// Waves is the number of waves the Riemann solver resolves.
	Waves int
}

var stencils = map[Reconstruction]int{FOG: 1, PLM: 2, PPM: 3, WENOZ: 3}

var waves = map[RiemannSolver]int{HLL: 2, HLLC: 3, HLLD: 5}

// Factory composes Traits from the Reconstruction and RiemannSolver axes.
var Factory = dispatch.NewComposite("HydroFactory", func(v ...options.Value) Traits {
	recon, _ := ReconstructionAxis.From(v[0])
	riemann, _ := RiemannAxis.From(v[1])
	return Traits{Reconstruction: recon, Riemann: riemann, Stencil: stencils[recon], Waves: waves[riemann]}
}, ReconstructionAxis.Axis, RiemannAxis.Axis)
