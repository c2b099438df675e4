package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/simunit/internal/ctxlog"
	"github.com/vk/simunit/internal/unit"
)

// ValidationError lists every problem Validate found. It unwraps to each
// of them, so errors.Is sees a *dag.CycleError behind a cyclic ordering.
type ValidationError struct {
	Problems []error
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = p.Error()
	}
	return "registry validation failed:\n- " + strings.Join(lines, "\n- ")
}

func (e *ValidationError) Unwrap() []error { return e.Problems }

// Validate checks the callback declarations of every unit. Self
// dependencies and cyclic orderings are errors; dependencies on units that
// were never registered only warn, since optional units may be left out of
// a build. On success the execution order of every kind is kept for Run.
func (r *Registry) Validate(ctx context.Context) error {
	var problems []error
	logger := ctxlog.FromContext(ctx)

	for _, u := range r.Units() {
		for _, kind := range unit.Kinds() {
			reg, ok := u.Registration(kind)
			if !ok {
				continue
			}
			for _, name := range append(append([]string{}, reg.DependsOn...), reg.RequiredBy...) {
				if name == u.Name() {
					problems = append(problems, fmt.Errorf("unit '%s': %s callback lists itself as a dependency", u.Name(), kind))
					continue
				}
				if _, known := r.units[name]; !known {
					logger.Warn("Callback dependency names an unregistered unit; it imposes no ordering.", "unit", u.Name(), "kind", kind, "dependency", name)
				}
			}
		}
	}

	orders := make(map[unit.Kind][]string, len(unit.Kinds()))
	for _, kind := range unit.Kinds() {
		order, err := r.buildOrder(kind)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		orders[kind] = order
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	r.orders = orders
	return nil
}
