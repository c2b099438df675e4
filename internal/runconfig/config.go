// Package runconfig holds the global option configuration of one run:
// at most one active value per option axis.
//
// A Config is created per run and passed explicitly through setup into
// every compute entry point; there is no process-wide instance.
package runconfig

import (
	"fmt"
	"slices"

	"github.com/vk/simunit/internal/errs"
	"github.com/vk/simunit/internal/options"
	"github.com/vk/simunit/internal/packagestore"
)

// Config stores the active value of each option axis, keyed by the axis'
// registered name.
//
// Get performs no locking so hot-path readers stay cheap. Add and Update are
// not safe to race with Get or with each other: entries are added during the
// single-threaded setup phase and updates must happen at synchronization
// points when no compute task is reading.
type Config struct {
	entries map[string]*entry
	order   []string
}

type entry struct {
	axis  *options.Axis
	value options.Value
	mut   packagestore.Mutability
}

// Entry is a read-only view of one config slot.
type Entry struct {
	Axis       string
	Label      string
	Mutability packagestore.Mutability
}

// New creates an empty Config.
func New() *Config {
	return &Config{entries: make(map[string]*entry)}
}

// Add stores v as the active value of its axis, fixed until restart. Adding
// a second value for the same axis fails with errs.ErrDuplicateParameter.
func (c *Config) Add(v options.Value) error {
	return c.add(v, packagestore.Restart)
}

// AddMutable is like Add but tags the entry as updatable during a run.
func (c *Config) AddMutable(v options.Value) error {
	return c.add(v, packagestore.Mutable)
}

func (c *Config) add(v options.Value, mut packagestore.Mutability) error {
	if v.IsZero() {
		return fmt.Errorf("config: cannot add a value without an axis")
	}
	name := v.Axis().Name()
	if prev, ok := c.entries[name]; ok {
		if prev.axis != v.Axis() {
			return fmt.Errorf("%w: another option axis is already registered as %s", errs.ErrDuplicateParameter, name)
		}
		return fmt.Errorf("%w: option %s already configured as %s", errs.ErrDuplicateParameter, name, prev.value.Label())
	}
	c.entries[name] = &entry{axis: v.Axis(), value: v, mut: mut}
	c.order = append(c.order, name)
	return nil
}

// Update overwrites the active value of v's axis. The axis must have been
// added before, otherwise errs.ErrUnknownParameter is returned.
func (c *Config) Update(v options.Value) error {
	if v.IsZero() {
		return fmt.Errorf("config: cannot update a value without an axis")
	}
	e, err := c.lookup(v.Axis())
	if err != nil {
		return err
	}
	e.value = v
	return nil
}

// Get returns the active value of axis.
func (c *Config) Get(axis *options.Axis) (options.Value, error) {
	e, err := c.lookup(axis)
	if err != nil {
		return options.Value{}, err
	}
	return e.value, nil
}

// Has reports whether axis has an entry.
func (c *Config) Has(axis *options.Axis) bool {
	_, err := c.lookup(axis)
	return err == nil
}

func (c *Config) lookup(axis *options.Axis) (*entry, error) {
	e, ok := c.entries[axis.Name()]
	if !ok || e.axis != axis {
		return nil, fmt.Errorf("%w: option %s is not configured", errs.ErrUnknownParameter, axis.Name())
	}
	return e, nil
}

// Entries lists every slot in the order it was added.
func (c *Config) Entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, name := range c.order {
		e := c.entries[name]
		out = append(out, Entry{Axis: name, Label: e.value.Label(), Mutability: e.mut})
	}
	return out
}

// Axes returns the configured axes in the order they were added.
func (c *Config) Axes() []*options.Axis {
	out := make([]*options.Axis, 0, len(c.order))
	for _, name := range slices.Clone(c.order) {
		out = append(out, c.entries[name].axis)
	}
	return out
}

// Lookup returns the active value of a typed axis as its constant.
func Lookup[T ~int](c *Config, e *options.Enum[T]) (T, error) {
	v, err := c.Get(e.Axis)
	if err != nil {
		return 0, err
	}
	return e.From(v)
}
