package inputdeck

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/zclconf/go-cty/cty"
)

// Deck holds user supplied values keyed by block and key. All operations on
// the deck are concurrency-safe.
type Deck struct {
	mu     sync.RWMutex
	blocks map[string]*section
	order  []string
}

type section struct {
	keys   []string
	values map[string]cty.Value
}

// New creates an empty Deck.
func New() *Deck {
	return &Deck{blocks: make(map[string]*section)}
}

// Lookup returns the value stored under block/key.
func (d *Deck) Lookup(block, key string) (cty.Value, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s, ok := d.blocks[block]
	if !ok {
		return cty.NilVal, false
	}
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether block/key is present.
func (d *Deck) Has(block, key string) bool {
	_, ok := d.Lookup(block, key)
	return ok
}

// Set stores v under block/key, creating the block if needed.
func (d *Deck) Set(block, key string, v cty.Value) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setLocked(block, key, v)
}

func (d *Deck) setLocked(block, key string, v cty.Value) {
	s, ok := d.blocks[block]
	if !ok {
		s = &section{values: make(map[string]cty.Value)}
		d.blocks[block] = s
		d.order = append(d.order, block)
	}
	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.values[key] = v
}

// SetNative converts a Go value with ToCty and stores it under block/key.
func (d *Deck) SetNative(block, key string, v any) error {
	cv, err := ToCty(v)
	if err != nil {
		return fmt.Errorf("%s/%s: %w", block, key, err)
	}
	d.Set(block, key, cv)
	return nil
}

// Blocks returns block names in the order they were first seen.
func (d *Deck) Blocks() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.order)
}

// Keys returns the keys of a block in the order they were first seen.
func (d *Deck) Keys(block string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s, ok := d.blocks[block]
	if !ok {
		return nil
	}
	return slices.Clone(s.keys)
}

// Len returns the total number of key/value pairs.
func (d *Deck) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := 0
	for _, s := range d.blocks {
		n += len(s.values)
	}
	return n
}

// Merge copies every value of src into d, overriding existing keys.
func (d *Deck) Merge(src *Deck) {
	if src == nil || src == d {
		return
	}
	src.mu.RLock()
	defer src.mu.RUnlock()
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, block := range src.order {
		s := src.blocks[block]
		for _, key := range s.keys {
			d.setLocked(block, key, s.values[key])
		}
	}
}

// fromTable builds a deck out of a decoded block -> key -> value table.
// Blocks and keys are inserted in lexical order since Go maps carry none.
func fromTable(table map[string]any) (*Deck, error) {
	d := New()
	blocks := make([]string, 0, len(table))
	for name := range table {
		blocks = append(blocks, name)
	}
	sort.Strings(blocks)

	for _, name := range blocks {
		body, ok := table[name].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("top-level key %q must be a block of key/value pairs, got %T", name, table[name])
		}
		keys := make([]string, 0, len(body))
		for k := range body {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := d.SetNative(name, k, body[k]); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}
