// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the packagestore.Store interface.
//
// # Concurrency Model
//
// Values are held in a sync.Map. The key space is fixed once setup
// completes while values of Mutable parameters change at synchronization
// points and are read by many unit callbacks, which is the access pattern
// sync.Map is built for. Each entry is replaced as a whole on update, so a
// reader sees either the old or the new value, never a mix.
package inmemorystore

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/vk/simunit/internal/errs"
	"github.com/vk/simunit/internal/packagestore"
)

// Store is an in-memory implementation of packagestore.Store.
type Store struct {
	// params maps a "block/key" string to an *entry.
	params sync.Map
	// updateMu makes UpdateParam's load, check and store one step.
	updateMu sync.Mutex
}

type entry struct {
	value any
	mut   packagestore.Mutability
}

var _ packagestore.Store = (*Store)(nil)

// New creates a new, empty in-memory package store.
func New() *Store {
	return &Store{}
}

// AddParam records a new value under key.
func (s *Store) AddParam(ctx context.Context, key string, value any, mut packagestore.Mutability) error {
	if _, loaded := s.params.LoadOrStore(key, &entry{value: value, mut: mut}); loaded {
		return fmt.Errorf("%w: package param %s already exists", errs.ErrDuplicateParameter, key)
	}
	return nil
}

// UpdateParam replaces the value stored under key.
func (s *Store) UpdateParam(ctx context.Context, key string, value any) error {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	raw, ok := s.params.Load(key)
	if !ok {
		return fmt.Errorf("%w: package param %s doesn't exist", errs.ErrUnknownParameter, key)
	}
	cur := raw.(*entry)
	if cur.mut == packagestore.Immutable {
		return fmt.Errorf("%w: package param %s", errs.ErrImmutableParameterUpdate, key)
	}
	if reflect.TypeOf(cur.value) != reflect.TypeOf(value) {
		return fmt.Errorf("%w: package param %s holds %T, got %T", errs.ErrTypeMismatch, key, cur.value, value)
	}
	s.params.Store(key, &entry{value: value, mut: cur.mut})
	return nil
}

// Param returns the value stored under key.
func (s *Store) Param(ctx context.Context, key string) (any, error) {
	raw, ok := s.params.Load(key)
	if !ok {
		return nil, fmt.Errorf("%w: package param %s doesn't exist", errs.ErrUnknownParameter, key)
	}
	return raw.(*entry).value, nil
}

// Mutability returns the mutability key was added with.
func (s *Store) Mutability(ctx context.Context, key string) (packagestore.Mutability, error) {
	raw, ok := s.params.Load(key)
	if !ok {
		return 0, fmt.Errorf("%w: package param %s doesn't exist", errs.ErrUnknownParameter, key)
	}
	return raw.(*entry).mut, nil
}

// Keys returns every stored key in lexical order.
func (s *Store) Keys(ctx context.Context) []string {
	var keys []string
	s.params.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	slices.Sort(keys)
	return keys
}

// Snapshot returns a copy of every stored value keyed by store key.
func (s *Store) Snapshot(ctx context.Context) map[string]any {
	out := make(map[string]any)
	s.params.Range(func(k, v any) bool {
		out[k.(string)] = v.(*entry).value
		return true
	})
	return out
}
