package dispatch

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/vk/simunit/internal/errs"
	"github.com/vk/simunit/internal/options"
	"github.com/vk/simunit/internal/runconfig"
)

// Handler implements one combination of a table's option space.
type Handler[A, R any] func(c Combination, args A) (R, error)

// Table maps every combination of its dimensions' active option values to
// exactly one handler.
type Table[A, R any] struct {
	name string
	dims []Dimension
	axes []*options.Axis
	// owner[i] is the index into dims that contributed axes[i].
	owner []int

	mu       sync.Mutex
	handlers map[string]Handler[A, R]
	fallback Handler[A, R]

	sealed  atomic.Bool
	active  [][]int
	labels  [][]string
	strides []int
	slots   []slot[A, R]
}

type slot[A, R any] struct {
	handler Handler[A, R]
	combo   Combination
}

// New declares a table over dims. The same axis may not appear twice,
// whether directly or through a composite.
func New[A, R any](name string, dims ...Dimension) *Table[A, R] {
	if len(dims) == 0 {
		panic(fmt.Sprintf("dispatch: table %s declared without dimensions", name))
	}
	t := &Table[A, R]{name: name, dims: dims, handlers: make(map[string]Handler[A, R])}
	for di, d := range dims {
		for _, a := range d.Axes() {
			if slices.Contains(t.axes, a) {
				panic(fmt.Sprintf("dispatch: axis %s appears twice in table %s", a.Name(), name))
			}
			t.axes = append(t.axes, a)
			t.owner = append(t.owner, di)
		}
	}
	return t
}

// Name returns the table name used in diagnostics.
func (t *Table[A, R]) Name() string { return t.name }

// Axes returns the flattened axis list values must be given in.
func (t *Table[A, R]) Axes() []*options.Axis { return slices.Clone(t.axes) }

// Sealed reports whether Seal has succeeded.
func (t *Table[A, R]) Sealed() bool { return t.sealed.Load() }

// Register installs h for the combination given by values, one per
// flattened axis. Handlers for values outside an axis' active subset are
// accepted and never called.
func (t *Table[A, R]) Register(h Handler[A, R], values ...options.Value) error {
	if h == nil {
		return fmt.Errorf("dispatch %s: nil handler", t.name)
	}
	if t.sealed.Load() {
		return fmt.Errorf("%w: dispatch %s does not accept new handlers", errs.ErrSealed, t.name)
	}
	if len(values) != len(t.axes) {
		return fmt.Errorf("dispatch %s: handler needs %d option values, got %d", t.name, len(t.axes), len(values))
	}
	idx := make([]int, len(values))
	for i, v := range values {
		if v.Axis() != t.axes[i] {
			return fmt.Errorf("%w: dispatch %s position %d expects an option of %s, got %s",
				errs.ErrTypeMismatch, t.name, i, t.axes[i].Name(), v)
		}
		idx[i] = v.Index()
	}
	key := comboKey(idx)

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.handlers[key]; exists {
		return fmt.Errorf("%w: dispatch %s already has a handler for {%s}",
			errs.ErrDuplicateParameter, t.name, joinValues(values))
	}
	t.handlers[key] = h
	return nil
}

// MustRegister is like Register but panics on error. It suits package
// level table construction.
func (t *Table[A, R]) MustRegister(h Handler[A, R], values ...options.Value) *Table[A, R] {
	if err := t.Register(h, values...); err != nil {
		panic(err)
	}
	return t
}

// Fallback installs the handler used for every combination that has no
// handler of its own.
func (t *Table[A, R]) Fallback(h Handler[A, R]) error {
	if t.sealed.Load() {
		return fmt.Errorf("%w: dispatch %s does not accept new handlers", errs.ErrSealed, t.name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fallback != nil {
		return fmt.Errorf("%w: dispatch %s already has a fallback", errs.ErrDuplicateParameter, t.name)
	}
	t.fallback = h
	return nil
}

// Seal snapshots the active subset of every axis, checks the active option
// space is covered and builds composite objects. On failure the table stays
// open so missing handlers can still be added.
func (t *Table[A, R]) Seal() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sealed.Load() {
		return fmt.Errorf("%w: dispatch %s sealed twice", errs.ErrSealed, t.name)
	}

	n := len(t.axes)
	active := make([][]int, n)
	labels := make([][]string, n)
	strides := make([]int, n)
	size := 1
	for i := n - 1; i >= 0; i-- {
		for _, v := range t.axes[i].Active() {
			active[i] = append(active[i], v.Index())
		}
		labels[i] = t.axes[i].ActiveLabels()
		strides[i] = size
		size *= len(active[i])
	}

	slots := make([]slot[A, R], size)
	built := make(map[string]any)
	var missing []string
	pos := make([]int, n)
	idx := make([]int, n)
	for off := 0; off < size; off++ {
		rem := off
		for i := range n {
			pos[i] = rem / strides[i]
			rem %= strides[i]
			idx[i] = active[i][pos[i]]
		}
		values := make([]options.Value, n)
		for i := range n {
			values[i] = t.axes[i].At(idx[i])
		}
		h, ok := t.handlers[comboKey(idx)]
		if !ok {
			h = t.fallback
		}
		if h == nil {
			missing = append(missing, joinValues(values))
			continue
		}
		slots[off] = slot[A, R]{handler: h, combo: t.combination(values, built)}
	}
	if len(missing) > 0 {
		return &IncompleteError{Table: t.name, Missing: missing}
	}

	t.active, t.labels, t.strides, t.slots = active, labels, strides, slots
	t.sealed.Store(true)
	return nil
}

// combination builds the handler view of values. Composite objects are
// shared between combinations that agree on the composite's axes.
func (t *Table[A, R]) combination(values []options.Value, built map[string]any) Combination {
	c := Combination{values: values}
	for di, d := range t.dims {
		var part []options.Value
		key := strconv.Itoa(di) + ":"
		for i, owner := range t.owner {
			if owner == di {
				part = append(part, values[i])
				key += strconv.Itoa(values[i].Index()) + "/"
			}
		}
		obj, ok := built[key]
		if !ok {
			obj = d.derive(part)
			built[key] = obj
		}
		if obj != nil {
			if c.derived == nil {
				c.derived = make(map[Dimension]any)
			}
			c.derived[d] = obj
		}
	}
	return c
}

// Execute calls the handler for values, one per flattened axis, with args.
// tag identifies the caller in error messages. Each axis is matched with a
// linear scan over its active subset, left to right.
func (t *Table[A, R]) Execute(tag string, values []options.Value, args A) (R, error) {
	var zero R
	if !t.sealed.Load() {
		return zero, fmt.Errorf("%w: dispatch %s is not sealed", errs.ErrNotInitialized, t.name)
	}
	if len(values) != len(t.axes) {
		return zero, fmt.Errorf("dispatch %s: expected %d option values, got %d (from: %s)",
			t.name, len(t.axes), len(values), tag)
	}
	off := 0
	for i, v := range values {
		p := -1
		if v.Axis() == t.axes[i] {
			p = slices.Index(t.active[i], v.Index())
		}
		if p < 0 {
			requested := v.Label()
			if v.Axis() != t.axes[i] {
				requested = v.String()
			}
			return zero, &UnregisteredError{
				Table:     t.name,
				Tag:       tag,
				Axis:      t.axes[i].Name(),
				Requested: requested,
				Valid:     t.labels[i],
			}
		}
		off += p * t.strides[i]
	}
	s := t.slots[off]
	return s.handler(s.combo, args)
}

// ExecuteConfig reads the current value of every axis from cfg and
// executes the matching handler.
func (t *Table[A, R]) ExecuteConfig(tag string, cfg *runconfig.Config, args A) (R, error) {
	values := make([]options.Value, len(t.axes))
	for i, a := range t.axes {
		v, err := cfg.Get(a)
		if err != nil {
			var zero R
			return zero, fmt.Errorf("dispatch %s (from: %s): %w", t.name, tag, err)
		}
		values[i] = v
	}
	return t.Execute(tag, values, args)
}

// Combinations lists the sealed option space in dispatch order.
func (t *Table[A, R]) Combinations() []Combination {
	if !t.sealed.Load() {
		return nil
	}
	out := make([]Combination, len(t.slots))
	for i, s := range t.slots {
		out[i] = s.combo
	}
	return out
}

func comboKey(idx []int) string {
	var b strings.Builder
	for i, x := range idx {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(strconv.Itoa(x))
	}
	return b.String()
}

func joinValues(values []options.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
