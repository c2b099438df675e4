package dispatch

import (
	"strings"

	"github.com/vk/simunit/internal/options"
)

// Combination is one point of a table's option space, handed to the
// handler selected for it.
type Combination struct {
	values  []options.Value
	derived map[Dimension]any
}

// Values returns the option values in the table's flattened axis order.
func (c Combination) Values() []options.Value {
	out := make([]options.Value, len(c.values))
	copy(out, c.values)
	return out
}

// Value returns the value selected for axis, or the zero Value if the axis
// is not part of the table.
func (c Combination) Value(axis *options.Axis) options.Value {
	for _, v := range c.values {
		if v.Axis() == axis {
			return v
		}
	}
	return options.Value{}
}

// Is reports whether the combination selects v.
func (c Combination) Is(v options.Value) bool {
	return c.Value(v.Axis()) == v
}

func (c Combination) String() string {
	labels := make([]string, len(c.values))
	for i, v := range c.values {
		labels[i] = v.String()
	}
	return strings.Join(labels, ", ")
}

// Derived returns the object built by comp's factory for this combination.
func Derived[C any](c Combination, comp *Composite[C]) C {
	v, _ := c.derived[comp].(C)
	return v
}
