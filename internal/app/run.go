package app

import (
	"context"
	"fmt"
	"io"

	"github.com/vk/simunit/internal/docs"
	"github.com/vk/simunit/internal/unit"
	"github.com/vk/simunit/modules/driver"
)

// Run sets the application up when needed and evolves the simulation.
func (a *App) Run(ctx context.Context) (driver.Summary, error) {
	a.logger.Debug("App.Run method started.")
	if a.params == nil {
		if err := a.Setup(ctx); err != nil {
			return driver.Summary{}, err
		}
	}

	a.logger.Info("🚀 Starting evolution...")
	sum, err := driver.Evolve(a.Context(ctx), a.registry, a.options)
	if err != nil {
		return sum, fmt.Errorf("evolution failed: %w", err)
	}
	a.logger.Info("🏁 Evolution finished.", "cycles", sum.Cycles, "time", sum.Time)
	return sum, nil
}

// KindOrder is the callback execution order of one kind.
type KindOrder struct {
	Kind  unit.Kind
	Units []string
}

// ExecutionOrders returns the execution order of every callback kind.
func (a *App) ExecutionOrders() ([]KindOrder, error) {
	var out []KindOrder
	for _, kind := range unit.Kinds() {
		order, err := a.registry.ExecutionOrder(kind)
		if err != nil {
			return nil, err
		}
		out = append(out, KindOrder{Kind: kind, Units: order})
	}
	return out, nil
}

// WriteCallbackGraph writes the DOT graph of kind's callback dependencies.
func (a *App) WriteCallbackGraph(w io.Writer, kind unit.Kind) error {
	return a.registry.WriteCallbackGraph(w, kind)
}

// ParameterDocs returns the markdown reference of the runtime parameters,
// optionally limited to one unit. It needs Setup.
func (a *App) ParameterDocs(unitName string) (string, error) {
	if a.params == nil {
		return "", fmt.Errorf("parameter docs need a set up application")
	}
	infos := a.params.Parameters()
	if unitName != "" {
		u, ok := a.registry.Get(unitName)
		if !ok {
			return "", fmt.Errorf("unknown unit %q, registered units are %v", unitName, a.registry.Names())
		}
		infos = docs.ForUnit(u, infos)
	}
	return docs.Markdown(infos), nil
}

// ResolvedParameters returns every parameter value by block and key.
func (a *App) ResolvedParameters() (map[string]map[string]any, error) {
	if a.params == nil {
		return nil, fmt.Errorf("resolved parameters need a set up application")
	}
	out := make(map[string]map[string]any)
	for _, info := range a.params.Parameters() {
		v, err := a.params.Value(info.Block, info.Key)
		if err != nil {
			return nil, err
		}
		if out[info.Block] == nil {
			out[info.Block] = make(map[string]any)
		}
		out[info.Block][info.Key] = v
	}
	return out, nil
}
