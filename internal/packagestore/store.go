// Package packagestore defines the contract of the persisted "package"
// store: the opaque key/value map that resolved parameter values are pushed
// into once setup completes, and that downstream unit code reads from.
//
// Keys are "block/key" strings (see Key). The core only writes and reads
// through this interface; internal/inmemorystore provides the
// implementation used by the application.
package packagestore

import (
	"context"
	"fmt"

	"github.com/vk/simunit/internal/errs"
)

// Mutability controls whether a stored value may change after it is added.
type Mutability int

const (
	// Immutable values are fixed once added.
	Immutable Mutability = iota
	// Mutable values may be updated during a run.
	Mutable
	// Restart values are fixed for a run but may differ on restart.
	Restart
)

func (m Mutability) String() string {
	switch m {
	case Immutable:
		return "immutable"
	case Mutable:
		return "mutable"
	case Restart:
		return "restart"
	}
	return fmt.Sprintf("Mutability(%d)", int(m))
}

// Store is the package store contract.
type Store interface {
	// AddParam records a new value under key.
	//
	// Adding a key twice is a programming error and fails with an error
	// wrapping errs.ErrDuplicateParameter; the first value is kept.
	//
	// Thread-safety: Must be safe to call concurrently for different keys.
	AddParam(ctx context.Context, key string, value any, mut Mutability) error

	// UpdateParam replaces the value stored under key.
	//
	// Fails with errs.ErrUnknownParameter if the key was never added and with
	// errs.ErrImmutableParameterUpdate if it was added as Immutable. The new
	// value must have the same dynamic type as the stored one, otherwise the
	// update fails with errs.ErrTypeMismatch.
	//
	// Thread-safety: Must be safe to call concurrently with Param.
	UpdateParam(ctx context.Context, key string, value any) error

	// Param returns the value stored under key.
	//
	// Fails with errs.ErrUnknownParameter if the key was never added.
	//
	// Thread-safety: Must be safe to call concurrently with UpdateParam.
	Param(ctx context.Context, key string) (any, error)

	// Mutability returns the mutability the key was added with.
	Mutability(ctx context.Context, key string) (Mutability, error)

	// Keys returns every stored key in lexical order.
	Keys(ctx context.Context) []string
}

// Key joins a block and a key into a store key.
func Key(block, key string) string {
	return block + "/" + key
}

// Get returns the value stored under key as a T.
func Get[T any](ctx context.Context, s Store, key string) (T, error) {
	var zero T
	v, err := s.Param(ctx, key)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: package param %s holds %T, not %T", errs.ErrTypeMismatch, key, v, zero)
	}
	return out, nil
}
