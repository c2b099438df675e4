package dispatch

import (
	"fmt"

	"github.com/vk/simunit/internal/options"
)

// Dimension is one entry of a table's declared axis list.
type Dimension interface {
	// Name returns a human readable name for diagnostics.
	Name() string
	// Axes returns the constituent axes, in matching order.
	Axes() []*options.Axis
	// derive builds the object a handler sees for this dimension. Plain
	// axes derive nothing.
	derive(values []options.Value) any
}

type plain struct {
	axis *options.Axis
}

// On declares a plain axis dimension.
func On(axis *options.Axis) Dimension {
	return plain{axis: axis}
}

func (p plain) Name() string               { return p.axis.Name() }
func (p plain) Axes() []*options.Axis      { return []*options.Axis{p.axis} }
func (p plain) derive([]options.Value) any { return nil }

// Composite is a dimension synthesized from several axes. Its factory is
// called once per combination of the constituent axes' active values when
// the table is sealed; handlers read the result with Derived.
type Composite[C any] struct {
	name    string
	axes    []*options.Axis
	factory func(values ...options.Value) C
}

// NewComposite declares a composite over two or more axes.
func NewComposite[C any](name string, factory func(values ...options.Value) C, axes ...*options.Axis) *Composite[C] {
	if len(axes) < 2 {
		panic(fmt.Sprintf("dispatch: composite %s needs at least two axes", name))
	}
	if factory == nil {
		panic(fmt.Sprintf("dispatch: composite %s declared without a factory", name))
	}
	return &Composite[C]{name: name, axes: axes, factory: factory}
}

// Name implements Dimension.
func (c *Composite[C]) Name() string { return c.name }

// Axes implements Dimension.
func (c *Composite[C]) Axes() []*options.Axis { return c.axes }

func (c *Composite[C]) derive(values []options.Value) any {
	return c.factory(values...)
}
