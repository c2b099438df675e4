package registry

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/vk/simunit/internal/ctxlog"
	"github.com/vk/simunit/internal/dag"
	"github.com/vk/simunit/internal/unit"
)

// ExecutionOrder returns the names of the units that registered kind,
// ordered so every unit runs after the units it depends on. Dependencies
// on units without a kind callback impose no ordering. After a successful
// Validate the order is read from the cache.
func (r *Registry) ExecutionOrder(kind unit.Kind) ([]string, error) {
	if order, ok := r.orders[kind]; ok {
		return slices.Clone(order), nil
	}
	return r.buildOrder(kind)
}

func (r *Registry) buildOrder(kind unit.Kind) ([]string, error) {
	g := dag.New()
	for _, u := range r.Units() {
		if u.IsRegistered(kind) {
			if err := g.AddNode(u.Name()); err != nil {
				return nil, err
			}
		}
	}
	for _, u := range r.Units() {
		reg, ok := u.Registration(kind)
		if !ok {
			continue
		}
		for _, dep := range reg.DependsOn {
			if r.registered(dep, kind) {
				if err := g.AddEdge(dep, u.Name()); err != nil {
					return nil, err
				}
			}
		}
		for _, req := range reg.RequiredBy {
			if r.registered(req, kind) {
				if err := g.AddEdge(u.Name(), req); err != nil {
					return nil, err
				}
			}
		}
	}

	order, err := g.TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("building execution order for %s callbacks: %w", kind, err)
	}
	return order, nil
}

func (r *Registry) registered(name string, kind unit.Kind) bool {
	u, ok := r.units[name]
	return ok && u.IsRegistered(kind)
}

// Run invokes every kind callback in execution order. s is handed to each
// callback and may be nil for the setup phases.
func (r *Registry) Run(ctx context.Context, kind unit.Kind, s *unit.Step) error {
	logger := ctxlog.FromContext(ctx)
	order, ok := r.orders[kind]
	if !ok {
		var err error
		if order, err = r.buildOrder(kind); err != nil {
			return err
		}
	}
	logger.Debug("Running callbacks.", "kind", kind, "order", order)
	for _, name := range order {
		if err := r.units[name].Call(ctx, kind, s); err != nil {
			return err
		}
	}
	return nil
}

// WriteCallbackGraph writes the declared kind dependencies as a DOT graph.
// Unlike ExecutionOrder it keeps edges to units that have no kind
// callback, so missing participants stay visible.
func (r *Registry) WriteCallbackGraph(w io.Writer, kind unit.Kind) error {
	g := dag.New()
	for _, u := range r.Units() {
		reg, ok := u.Registration(kind)
		if !ok {
			continue
		}
		if err := g.AddNode(u.Name()); err != nil {
			return err
		}
		for _, dep := range reg.DependsOn {
			if err := g.AddEdge(dep, u.Name()); err != nil {
				return err
			}
		}
		for _, req := range reg.RequiredBy {
			if err := g.AddEdge(u.Name(), req); err != nil {
				return err
			}
		}
	}
	if _, err := fmt.Fprintf(w, "// Callback execution order for: %s\n", kind); err != nil {
		return err
	}
	return g.Render(w)
}
