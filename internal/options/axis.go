// Package options declares option axes: enumerated types with a fixed,
// ordered set of named variants.
//
// An Axis is a runtime descriptor rather than generated code. Its canonical
// label set never changes; an active subset can be narrowed once at
// configuration time (see Restrict and Restrictions) and is what dispatch
// tables resolve against.
package options

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vk/simunit/internal/errs"
)

// Axis is an enumerated option type.
type Axis struct {
	name   string
	labels []string
	active []int
}

// NewAxis declares an axis with the given canonical labels. Labels are
// lower-cased. It panics on an empty or duplicated label set, which is a
// programming error.
func NewAxis(name string, labels ...string) *Axis {
	if name == "" {
		panic("options: axis name must not be empty")
	}
	if len(labels) == 0 {
		panic(fmt.Sprintf("options: axis %s declared without labels", name))
	}
	a := &Axis{name: name, labels: make([]string, 0, len(labels))}
	for i, l := range labels {
		l = strings.ToLower(l)
		if slices.Contains(a.labels, l) {
			panic(fmt.Sprintf("options: axis %s declares label %q twice", name, l))
		}
		a.labels = append(a.labels, l)
		a.active = append(a.active, i)
	}
	return a
}

// Name returns the axis' registered name.
func (a *Axis) Name() string { return a.name }

// Len returns the number of canonical labels.
func (a *Axis) Len() int { return len(a.labels) }

// Labels returns the canonical labels in declaration order.
func (a *Axis) Labels() []string { return slices.Clone(a.labels) }

// Mapping returns every canonical label mapped onto its value, the form
// option parameters are declared with.
func (a *Axis) Mapping() map[string]Value {
	m := make(map[string]Value, len(a.labels))
	for i, l := range a.labels {
		m[l] = Value{axis: a, index: i}
	}
	return m
}

// ActiveLabels returns the labels of the active subset in declaration order.
func (a *Axis) ActiveLabels() []string {
	out := make([]string, 0, len(a.active))
	for _, i := range a.active {
		out = append(out, a.labels[i])
	}
	return out
}

// Active returns the values of the active subset in declaration order.
func (a *Axis) Active() []Value {
	out := make([]Value, 0, len(a.active))
	for _, i := range a.active {
		out = append(out, Value{axis: a, index: i})
	}
	return out
}

// Restricted reports whether the active subset is narrower than the
// canonical label set.
func (a *Axis) Restricted() bool { return len(a.active) != len(a.labels) }

// IsActive reports whether v belongs to this axis and its active subset.
func (a *Axis) IsActive(v Value) bool {
	return v.axis == a && slices.Contains(a.active, v.index)
}

// Restrict narrows the active subset to labels, kept in declaration order.
// It must be called before any dispatch table over this axis is sealed.
func (a *Axis) Restrict(labels ...string) error {
	if len(labels) == 0 {
		return fmt.Errorf("axis %s: restriction must keep at least one label", a.name)
	}
	keep := make([]int, 0, len(labels))
	for _, l := range labels {
		i, err := a.index(l)
		if err != nil {
			return err
		}
		keep = append(keep, i)
	}
	slices.Sort(keep)
	a.active = slices.Compact(keep)
	return nil
}

// Unrestrict makes every label active again.
func (a *Axis) Unrestrict() {
	active := make([]int, len(a.labels))
	for i := range active {
		active[i] = i
	}
	a.active = active
}

// At returns the value with canonical index i.
func (a *Axis) At(i int) Value {
	if i < 0 || i >= len(a.labels) {
		panic(fmt.Sprintf("options: index %d out of range for axis %s", i, a.name))
	}
	return Value{axis: a, index: i}
}

// Value maps a label onto its value, case-insensitively. Unknown labels
// fail with a *LabelError listing the canonical labels.
func (a *Axis) Value(label string) (Value, error) {
	i, err := a.index(label)
	if err != nil {
		return Value{}, err
	}
	return Value{axis: a, index: i}, nil
}

// MustValue is like Value but panics on unknown labels.
func (a *Axis) MustValue(label string) Value {
	v, err := a.Value(label)
	if err != nil {
		panic(err)
	}
	return v
}

func (a *Axis) index(label string) (int, error) {
	i := slices.Index(a.labels, strings.ToLower(strings.TrimSpace(label)))
	if i < 0 {
		return 0, &LabelError{Axis: a.name, Label: label, Valid: a.Labels()}
	}
	return i, nil
}

func (a *Axis) String() string { return a.name }

// Value is one variant of an Axis. The zero Value belongs to no axis.
type Value struct {
	axis  *Axis
	index int
}

// Axis returns the axis the value belongs to.
func (v Value) Axis() *Axis { return v.axis }

// Index returns the canonical index of the value.
func (v Value) Index() int { return v.index }

// IsZero reports whether v is the zero Value.
func (v Value) IsZero() bool { return v.axis == nil }

// Label returns the canonical label of the value.
func (v Value) Label() string {
	if v.axis == nil {
		return ""
	}
	return v.axis.labels[v.index]
}

func (v Value) String() string {
	if v.axis == nil {
		return "<none>"
	}
	return v.axis.name + "." + v.Label()
}

// LabelError reports a label that is not part of an axis.
type LabelError struct {
	Axis  string
	Label string
	Valid []string
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("string mapping for [%s] to %s not handled, recognized values are: %s",
		e.Label, e.Axis, strings.Join(e.Valid, " "))
}

// Unwrap lets callers match the error with errors.Is(err, errs.ErrUnknownParameter).
func (e *LabelError) Unwrap() error {
	return errs.ErrUnknownParameter
}
