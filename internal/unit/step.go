package unit

import "math"

// Step carries the state shared by the per-cycle callbacks of one cycle.
// Setup and Initialize callbacks receive a nil Step.
type Step struct {
	Cycle int
	// Stage is the index of the current multi-stage integrator stage.
	Stage int
	Time  float64
	// Dt starts at +Inf each cycle and only ever decreases.
	Dt     float64
	Tasks  []string
	Values map[string]float64
}

// NewStep returns the state for cycle at time t.
func NewStep(cycle int, t float64) *Step {
	return &Step{Cycle: cycle, Time: t, Dt: math.Inf(1), Values: make(map[string]float64)}
}

// Propose lowers the cycle's timestep to dt if it is smaller.
func (s *Step) Propose(dt float64) {
	if dt < s.Dt {
		s.Dt = dt
	}
}

// AddTask records a task scheduled for this cycle.
func (s *Step) AddTask(name string) {
	s.Tasks = append(s.Tasks, name)
}

// Set records a named diagnostic for this cycle.
func (s *Step) Set(name string, v float64) {
	s.Values[name] = v
}
