package unit

// Kind names one lifecycle callback slot.
type Kind string

const (
	// Setup declares options and runtime parameters.
	Setup Kind = "setup"
	// Initialize runs after every unit's parameters are in the package
	// store.
	Initialize Kind = "initialize"
	// PrepareConserved makes the conserved state ready before an update.
	PrepareConserved Kind = "prepare_conserved"
	// PreparePrimitive refreshes the primitive state after an update.
	PreparePrimitive Kind = "prepare_primitive"
	// AddFluxTasks appends the flux tasks of one cycle.
	AddFluxTasks Kind = "add_flux_tasks"
	// EstimateTimestep proposes a timestep limit for the next cycle.
	EstimateTimestep Kind = "estimate_timestep"
)

// Kinds lists every callback kind in lifecycle order.
func Kinds() []Kind {
	return []Kind{Setup, Initialize, PrepareConserved, PreparePrimitive, AddFluxTasks, EstimateTimestep}
}

// ParseKind maps a kind name onto its Kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

func (k Kind) String() string { return string(k) }
