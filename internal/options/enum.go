package options

import "fmt"

// Enum ties an Axis to a Go integer type whose constants are the label
// indices, so call sites can switch on typed constants:
//
//	type Reconstruction int
//
//	const (
//		FOG Reconstruction = iota
//		PLM
//		PPM
//	)
//
//	var ReconstructionAxis = options.NewEnum[Reconstruction]("Reconstruction", "fog", "plm", "ppm")
type Enum[T ~int] struct {
	*Axis
}

// NewEnum declares an axis whose i-th label corresponds to T(i).
func NewEnum[T ~int](name string, labels ...string) *Enum[T] {
	return &Enum[T]{Axis: NewAxis(name, labels...)}
}

// Of returns the Value of a typed constant.
func (e *Enum[T]) Of(v T) Value {
	return e.At(int(v))
}

// From converts a Value of this axis back to its typed constant.
func (e *Enum[T]) From(v Value) (T, error) {
	if v.axis != e.Axis {
		return 0, fmt.Errorf("value %s does not belong to axis %s", v, e.Name())
	}
	return T(v.index), nil
}

// Parse maps a label onto its typed constant.
func (e *Enum[T]) Parse(label string) (T, error) {
	v, err := e.Value(label)
	if err != nil {
		return 0, err
	}
	return T(v.index), nil
}
